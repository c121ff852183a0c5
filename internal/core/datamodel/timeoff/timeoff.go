package timeoff

import "time"

type Vacation struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"column:user_id;not null;index"`
	StartDate time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate   *time.Time `gorm:"column:end_date;type:date"`
	Status    string     `gorm:"column:status;not null;default:pending"`
	Reason    string     `gorm:"column:reason"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Vacation) TableName() string {
	return "vacations"
}

type LeaveOfAbsence struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"column:user_id;not null;index"`
	StartDate time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate   *time.Time `gorm:"column:end_date;type:date"`
	Status    string     `gorm:"column:status;not null;default:pending"`
	Reason    string     `gorm:"column:reason"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveOfAbsence) TableName() string {
	return "leaves_of_absence"
}

type PublicHoliday struct {
	ID   int64     `gorm:"primaryKey"`
	Date time.Time `gorm:"column:date;type:date;not null;uniqueIndex"`
	Name string    `gorm:"column:name"`
}

func (PublicHoliday) TableName() string {
	return "public_holidays"
}

type ClosingDay struct {
	ID        int64     `gorm:"primaryKey"`
	StartDate time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate   time.Time `gorm:"column:end_date;type:date;not null"`
	Name      string    `gorm:"column:name"`
}

func (ClosingDay) TableName() string {
	return "closing_days"
}

type Schedule struct {
	ID   int64         `gorm:"primaryKey"`
	Name string        `gorm:"column:name;not null"`
	Days []ScheduleDay `gorm:"foreignKey:ScheduleID"`
}

func (Schedule) TableName() string {
	return "schedules"
}

type ScheduleDay struct {
	ID               int64 `gorm:"primaryKey"`
	ScheduleID       int64 `gorm:"column:schedule_id;not null;index"`
	DayOfWeek        int   `gorm:"column:day_of_week;not null"`
	LabouringMinutes int   `gorm:"column:labouring_minutes;not null;default:0"`
	BreakMinutes     int   `gorm:"column:break_minutes;not null;default:0"`
}

func (ScheduleDay) TableName() string {
	return "schedule_days"
}

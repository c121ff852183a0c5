package timesheet

import "time"

type Timesheet struct {
	ID              int64            `gorm:"primaryKey"`
	UserID          int64            `gorm:"column:user_id;not null;uniqueIndex:idx_timesheets_user_date"`
	Date            time.Time        `gorm:"column:date;type:date;not null;uniqueIndex:idx_timesheets_user_date"`
	StartAt         *time.Time       `gorm:"column:start_at"`
	EndAt           *time.Time       `gorm:"column:end_at"`
	TotalMinutes    int              `gorm:"column:total_minutes;not null;default:0"`
	RegularMinutes  int              `gorm:"column:regular_minutes;not null;default:0"`
	OvertimeMinutes int              `gorm:"column:overtime_minutes;not null;default:0"`
	BreakMinutes    int              `gorm:"column:break_minutes;not null;default:0"`
	Status          string           `gorm:"column:status;not null;default:pending"`
	ReviewNote      string           `gorm:"column:review_note"`
	ReviewedBy      *int64           `gorm:"column:reviewed_by"`
	ReviewedAt      *time.Time       `gorm:"column:reviewed_at"`
	Breaks          []TimesheetBreak `gorm:"foreignKey:TimesheetID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Timesheet) TableName() string {
	return "timesheets"
}

type TimesheetBreak struct {
	ID          int64     `gorm:"primaryKey"`
	TimesheetID int64     `gorm:"column:timesheet_id;not null;index"`
	StartAt     time.Time `gorm:"column:start_at;not null"`
	EndAt       time.Time `gorm:"column:end_at;not null"`
}

func (TimesheetBreak) TableName() string {
	return "timesheet_breaks"
}

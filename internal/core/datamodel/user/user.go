package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Department   string    `gorm:"column:department"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	ScheduleID   *int64    `gorm:"column:schedule_id"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type UserRole struct {
	ID     int64  `gorm:"primaryKey"`
	UserID int64  `gorm:"column:user_id;not null;uniqueIndex:idx_user_roles_user_role"`
	RoleID string `gorm:"column:role_id;not null;uniqueIndex:idx_user_roles_user_role"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// UserGrant is a permission granted to one user on top of their roles.
type UserGrant struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null;uniqueIndex:idx_user_grants_user_permission"`
	PermissionID string    `gorm:"column:permission_id;not null;uniqueIndex:idx_user_grants_user_permission"`
	Actions      string    `gorm:"column:actions;not null"`
	GrantedBy    *int64    `gorm:"column:granted_by"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserGrant) TableName() string {
	return "user_grants"
}

type EmploymentEvent struct {
	ID            int64     `gorm:"primaryKey"`
	UserID        int64     `gorm:"column:user_id;not null;index"`
	Status        string    `gorm:"column:status;not null"`
	EffectiveDate time.Time `gorm:"column:effective_date;type:date;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (EmploymentEvent) TableName() string {
	return "employment_events"
}

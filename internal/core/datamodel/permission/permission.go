package permission

import "time"

// Actions columns hold a comma separated list of action labels.

type PermissionDefinition struct {
	ID        string    `gorm:"primaryKey;column:id" db:"id"`
	ModuleID  string    `gorm:"column:module_id;not null" db:"module_id"`
	SectionID string    `gorm:"column:section_id;not null" db:"section_id"`
	Actions   string    `gorm:"column:actions;not null" db:"actions"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" db:"created_at"`
}

func (PermissionDefinition) TableName() string {
	return "permission_definitions"
}

type Role struct {
	ID        string    `gorm:"primaryKey;column:id" db:"id"`
	Name      string    `gorm:"column:name;not null" db:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" db:"created_at"`
}

func (Role) TableName() string {
	return "roles"
}

type RoleGrant struct {
	ID           int64  `gorm:"primaryKey" db:"id"`
	RoleID       string `gorm:"column:role_id;not null;uniqueIndex:idx_role_grants_role_permission" db:"role_id"`
	PermissionID string `gorm:"column:permission_id;not null;uniqueIndex:idx_role_grants_role_permission" db:"permission_id"`
	Actions      string `gorm:"column:actions;not null" db:"actions"`
}

func (RoleGrant) TableName() string {
	return "role_grants"
}

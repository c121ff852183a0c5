package user

import (
	"time"

	"github.com/frahmantamala/workforce-attendance/internal/employment"
)

type PermissionsResponse struct {
	UserID    int64               `json:"user_id"`
	SuperUser bool                `json:"super_user"`
	Grants    map[string][]string `json:"grants"`
	Modules   []string            `json:"modules"`
	Sections  []string            `json:"sections"`
}

type EmploymentResponse struct {
	UserID   int64             `json:"user_id"`
	Date     string            `json:"date"`
	Status   employment.Status `json:"status"`
	Employed bool              `json:"employed"`
}

type Summary struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	IsActive   bool      `json:"is_active"`
	RoleIDs    []string  `json:"role_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) ToSummary() Summary {
	return Summary{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Department: u.Department,
		IsActive:   u.IsActive,
		RoleIDs:    u.RoleIDs,
		CreatedAt:  u.CreatedAt,
	}
}

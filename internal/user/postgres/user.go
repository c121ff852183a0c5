package postgres

import (
	"context"
	"errors"

	userDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/workforce-attendance/internal/user"
	"gorm.io/gorm"
)

// UserRepository loads the user aggregate: the users row plus role
// assignments, individual grants and employment events.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return r.load(ctx, &row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return r.load(ctx, &row)
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	var rows []*userDatamodel.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*user.User{}, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var roles []userDatamodel.UserRole
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	var grants []userDatamodel.UserGrant
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Order("id ASC").Find(&grants).Error; err != nil {
		return nil, err
	}
	var events []userDatamodel.EmploymentEvent
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Order("effective_date ASC, id ASC").Find(&events).Error; err != nil {
		return nil, err
	}

	rolesByUser := map[int64][]userDatamodel.UserRole{}
	for _, ro := range roles {
		rolesByUser[ro.UserID] = append(rolesByUser[ro.UserID], ro)
	}
	grantsByUser := map[int64][]userDatamodel.UserGrant{}
	for _, g := range grants {
		grantsByUser[g.UserID] = append(grantsByUser[g.UserID], g)
	}
	eventsByUser := map[int64][]userDatamodel.EmploymentEvent{}
	for _, e := range events {
		eventsByUser[e.UserID] = append(eventsByUser[e.UserID], e)
	}

	out := make([]*user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, user.FromDataModelWithRelations(row, rolesByUser[row.ID], grantsByUser[row.ID], eventsByUser[row.ID]))
	}
	return out, nil
}

func (r *UserRepository) load(ctx context.Context, row *userDatamodel.User) (*user.User, error) {
	var roles []userDatamodel.UserRole
	if err := r.db.WithContext(ctx).Where("user_id = ?", row.ID).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}

	var grants []userDatamodel.UserGrant
	if err := r.db.WithContext(ctx).Where("user_id = ?", row.ID).Order("id ASC").Find(&grants).Error; err != nil {
		return nil, err
	}

	// id breaks ties so same-day events keep their recording order
	var events []userDatamodel.EmploymentEvent
	if err := r.db.WithContext(ctx).Where("user_id = ?", row.ID).Order("effective_date ASC, id ASC").Find(&events).Error; err != nil {
		return nil, err
	}

	return user.FromDataModelWithRelations(row, roles, grants, events), nil
}

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	"github.com/frahmantamala/workforce-attendance/internal/employment"
	"github.com/frahmantamala/workforce-attendance/internal/permission"
)

// PermissionDirectory gates reading other users' records.
const PermissionDirectory = "users.directory"

type Service struct {
	repo     Repository
	resolver *permission.Resolver
	loc      *time.Location
	logger   *slog.Logger
}

func NewService(repo Repository, resolver *permission.Resolver, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:     repo,
		resolver: resolver,
		loc:      loc,
		logger:   logger,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if len(u.EmploymentHistory) == 0 {
		s.logger.Warn("user has no employment history, treating as pending start", "user_id", userID)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]Summary, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]Summary, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToSummary())
	}
	return out, nil
}

// Permissions describes the effective permission set of u.
func (s *Service) Permissions(u *User) PermissionsResponse {
	grants := s.resolver.EffectiveGrants(u)

	modules := map[string]bool{}
	sections := map[string]bool{}
	for _, def := range s.resolver.Catalog().Definitions() {
		if def.ModuleID != "" && !modules[def.ModuleID] && s.resolver.HasModuleAccess(u, def.ModuleID) {
			modules[def.ModuleID] = true
		}
		if def.SectionID != "" && !sections[def.SectionID] && s.resolver.HasSectionAccess(u, def.SectionID) {
			sections[def.SectionID] = true
		}
	}

	return PermissionsResponse{
		UserID:    u.ID,
		SuperUser: s.resolver.IsSuperUser(u),
		Grants:    grants.Flatten(),
		Modules:   sortedKeys(modules),
		Sections:  sortedKeys(sections),
	}
}

func (s *Service) EmploymentOn(ctx context.Context, userID int64, date time.Time) (*EmploymentResponse, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := u.EmploymentStatusOn(date, s.loc)
	return &EmploymentResponse{
		UserID:   u.ID,
		Date:     dates.Day(date, s.loc).Format(dates.Layout),
		Status:   status,
		Employed: employment.IsEmployed(status),
	}, nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

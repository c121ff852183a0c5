package user_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/workforce-attendance/internal/employment"
	"github.com/frahmantamala/workforce-attendance/internal/permission"
	"github.com/frahmantamala/workforce-attendance/internal/user"
)

type mockUserRepository struct {
	users   map[int64]*user.User
	listErr error
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepository) List(ctx context.Context) ([]*user.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []*user.User{}
	for _, id := range []int64{1, 2, 3} {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	Expect(err).NotTo(HaveOccurred())
	return t
}

func testCatalog() *permission.Catalog {
	return permission.NewCatalog(
		[]permission.Definition{
			{ID: "timesheets.owns", ModuleID: "attendance", SectionID: "timesheets", Actions: []permission.Action{permission.ActionRead, permission.ActionCreate, permission.ActionUpdate}},
			{ID: "timesheets.others", ModuleID: "attendance", SectionID: "team", Actions: []permission.Action{permission.ActionRead, permission.ActionApprove}},
			{ID: "users.directory", ModuleID: "people", SectionID: "directory", Actions: []permission.Action{permission.ActionRead}},
		},
		[]permission.Role{
			{ID: "employee", Name: "Employee", Grants: permission.Grants{
				"timesheets.owns": permission.NewActionSet(permission.ActionRead, permission.ActionCreate),
			}},
		},
	)
}

var _ = Describe("Service", func() {
	var (
		repo    *mockUserRepository
		service *user.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = &mockUserRepository{users: map[int64]*user.User{
			1: {
				ID:      1,
				Email:   "ana@example.com",
				Name:    "Ana",
				RoleIDs: []string{"employee"},
				Grants: permission.Grants{
					"users.directory": permission.NewActionSet(permission.ActionRead),
				},
				EmploymentHistory: employment.History{
					{Status: employment.StatusActive, EffectiveDate: day("2023-01-01")},
					{Status: employment.StatusProbation, EffectiveDate: day("2024-01-10")},
					{Status: employment.StatusActive, EffectiveDate: day("2025-05-30")},
				},
			},
			2: {
				ID:     2,
				Email:  "root@example.com",
				Name:   "Root",
				Grants: permission.Grants{permission.SuperUserPermission: permission.NewActionSet(permission.Unconditional)},
			},
		}}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = user.NewService(repo, permission.NewResolver(testCatalog()), time.UTC, logger)
	})

	Describe("GetByID", func() {
		It("should return the user", func() {
			u, err := service.GetByID(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Name).To(Equal("Ana"))
		})

		It("should pass ErrNotFound through", func() {
			_, err := service.GetByID(ctx, 42)
			Expect(errors.Is(err, user.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("should return summaries", func() {
			users, err := service.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
			Expect(users[0].Email).To(Equal("ana@example.com"))
		})

		It("should wrap repository failures", func() {
			repo.listErr = errors.New("connection reset")
			_, err := service.List(ctx)
			Expect(err).To(MatchError(ContainSubstring("connection reset")))
		})
	})

	Describe("Permissions", func() {
		It("should merge role and individual grants and list reachable modules", func() {
			resp := service.Permissions(repo.users[1])
			Expect(resp.SuperUser).To(BeFalse())
			Expect(resp.Grants).To(HaveKeyWithValue("timesheets.owns", ConsistOf("read", "create")))
			Expect(resp.Grants).To(HaveKeyWithValue("users.directory", ConsistOf("read")))
			Expect(resp.Modules).To(Equal([]string{"attendance", "people"}))
			Expect(resp.Sections).To(Equal([]string{"directory", "timesheets"}))
		})

		It("should report a super-user with access to every module", func() {
			resp := service.Permissions(repo.users[2])
			Expect(resp.SuperUser).To(BeTrue())
			Expect(resp.Modules).To(Equal([]string{"attendance", "people"}))
			Expect(resp.Sections).To(Equal([]string{"directory", "team", "timesheets"}))
		})
	})

	Describe("EmploymentOn", func() {
		DescribeTable("should resolve the status in force on the date",
			func(date string, expected employment.Status, employed bool) {
				resp, err := service.EmploymentOn(ctx, 1, day(date))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.Status).To(Equal(expected))
				Expect(resp.Employed).To(Equal(employed))
				Expect(resp.Date).To(Equal(date))
			},
			Entry("before any event", "2022-01-01", employment.StatusPendingStart, false),
			Entry("first active period", "2023-06-01", employment.StatusActive, true),
			Entry("probation", "2024-02-01", employment.StatusProbation, true),
			Entry("active again", "2025-06-01", employment.StatusActive, true),
		)

		It("should treat a user without history as pending start", func() {
			resp, err := service.EmploymentOn(ctx, 2, day("2024-01-01"))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Status).To(Equal(employment.StatusPendingStart))
			Expect(resp.Employed).To(BeFalse())
		})
	})
})

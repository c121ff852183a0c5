package seed_test

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	permissionDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/permission"
	timeoffDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/timeoff"
	timesheetDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/timesheet"
	userDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/workforce-attendance/internal/employment"
	"github.com/frahmantamala/workforce-attendance/internal/permission"
	permissionPostgres "github.com/frahmantamala/workforce-attendance/internal/permission/postgres"
	"github.com/frahmantamala/workforce-attendance/internal/seed"
	userPostgres "github.com/frahmantamala/workforce-attendance/internal/user/postgres"
)

func plainHash(p string) (string, error) {
	return "hashed:" + p, nil
}

var _ = Describe("Apply", func() {
	var (
		db  *gorm.DB
		fx  *seed.Fixtures
		ctx context.Context
	)

	count := func(model any) int64 {
		var n int64
		Expect(db.Model(model).Count(&n).Error).To(Succeed())
		return n
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(
			&permissionDatamodel.PermissionDefinition{},
			&permissionDatamodel.Role{},
			&permissionDatamodel.RoleGrant{},
			&timeoffDatamodel.Schedule{},
			&timeoffDatamodel.ScheduleDay{},
			&timeoffDatamodel.Vacation{},
			&timeoffDatamodel.LeaveOfAbsence{},
			&timeoffDatamodel.PublicHoliday{},
			&timeoffDatamodel.ClosingDay{},
			&userDatamodel.User{},
			&userDatamodel.UserRole{},
			&userDatamodel.UserGrant{},
			&userDatamodel.EmploymentEvent{},
			&timesheetDatamodel.Timesheet{},
			&timesheetDatamodel.TimesheetBreak{},
		)).To(Succeed())

		fx, err = seed.LoadFile("../../fixtures/fixtures.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("writes a catalog that loads without issues", func() {
		Expect(seed.Apply(ctx, db, fx, plainHash, false)).To(Succeed())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		catalog, issues, err := permissionPostgres.NewCatalogRepository(sqlx.NewDb(sqlDB, "sqlite3")).LoadCatalog(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(issues).To(BeEmpty())

		role, ok := catalog.Role("manager")
		Expect(ok).To(BeTrue())
		Expect(role.Grants.Actions("timesheets.others").Has(permission.ActionApprove)).To(BeTrue())

		admin, ok := catalog.Role("admin")
		Expect(ok).To(BeTrue())
		Expect(admin.Grants.Actions(permission.SuperUserPermission).IsUnconditional()).To(BeTrue())
	})

	It("writes users with roles, schedule and employment history", func() {
		Expect(seed.Apply(ctx, db, fx, plainHash, false)).To(Succeed())

		users := userPostgres.NewUserRepository(db)
		u, err := users.GetByEmail(ctx, "employee@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(u.PasswordHash).To(Equal("hashed:password"))
		Expect(u.IsActive).To(BeTrue())
		Expect(u.RoleIDs).To(ConsistOf("employee"))
		Expect(u.ScheduleID).NotTo(BeNil())
		Expect(u.EmploymentHistory).To(HaveLen(2))

		former, err := users.GetByEmail(ctx, "former@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(former.IsActive).To(BeFalse())
		Expect(former.EmploymentHistory[len(former.EmploymentHistory)-1].Status).To(Equal(employment.StatusTerminated))

		parttime, err := users.GetByEmail(ctx, "parttime@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(parttime.Grants.Actions("users.directory").Has(permission.ActionRead)).To(BeTrue())
	})

	It("can be re-run without duplicating rows", func() {
		Expect(seed.Apply(ctx, db, fx, plainHash, false)).To(Succeed())
		Expect(seed.Apply(ctx, db, fx, plainHash, false)).To(Succeed())

		Expect(count(&userDatamodel.User{})).To(Equal(int64(5)))
		Expect(count(&userDatamodel.UserRole{})).To(Equal(int64(5)))
		Expect(count(&timeoffDatamodel.ScheduleDay{})).To(Equal(int64(7)))
		Expect(count(&timeoffDatamodel.PublicHoliday{})).To(Equal(int64(4)))
		Expect(count(&timeoffDatamodel.ClosingDay{})).To(Equal(int64(1)))
		Expect(count(&timeoffDatamodel.Vacation{})).To(Equal(int64(2)))
		Expect(count(&timeoffDatamodel.LeaveOfAbsence{})).To(Equal(int64(1)))
	})

	It("clears existing rows first when asked", func() {
		Expect(db.Create(&timeoffDatamodel.PublicHoliday{Date: mustDay("2030-01-01"), Name: "Stale"}).Error).To(Succeed())

		Expect(seed.Apply(ctx, db, fx, plainHash, true)).To(Succeed())

		var names []string
		Expect(db.Model(&timeoffDatamodel.PublicHoliday{}).Pluck("name", &names).Error).To(Succeed())
		Expect(names).NotTo(ContainElement("Stale"))
		Expect(names).To(HaveLen(4))
	})
})

var _ = Describe("Parse", func() {
	It("reports every broken reference", func() {
		_, err := seed.Parse([]byte(`
roles:
  - id: employee
schedules:
  - name: Week
    days:
      - { weekday: funday, labouring_minutes: 60 }
users:
  - email: a@example.com
    password: x
    schedule: Month
    roles: [employee, ghost]
    employment:
      - { status: retired, effective: "2024-13-01" }
    vacations:
      - { start: "2024-01-01", status: maybe }
`))
		Expect(err).To(HaveOccurred())
		for _, want := range []string{`"funday"`, `"Month"`, `"ghost"`, `"retired"`, `"maybe"`, "month out of range"} {
			Expect(err.Error()).To(ContainSubstring(want))
		}
	})

	It("rejects malformed YAML", func() {
		_, err := seed.Parse([]byte("users: ["))
		Expect(err).To(MatchError(ContainSubstring("parse fixtures")))
	})
})

func mustDay(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

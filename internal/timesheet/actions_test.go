package timesheet_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/workforce-attendance/internal/permission"
	"github.com/frahmantamala/workforce-attendance/internal/timesheet"
	"github.com/frahmantamala/workforce-attendance/internal/user"
)

var allActions = []permission.Action{
	permission.ActionRead, permission.ActionCreate, permission.ActionUpdate, permission.ActionUpdateApproved,
	permission.ActionDelete, permission.ActionDeleteApproved, permission.ActionApprove, permission.ActionRequestChanges,
}

func newResolver() *permission.Resolver {
	return permission.NewResolver(permission.NewCatalog([]permission.Definition{
		{ID: timesheet.PermissionOwns, ModuleID: "attendance", SectionID: "timesheets", Actions: allActions},
		{ID: timesheet.PermissionOthers, ModuleID: "attendance", SectionID: "team", Actions: allActions},
	}, nil))
}

func grants(pid string, a ...permission.Action) permission.Grants {
	return permission.Grants{pid: permission.NewActionSet(a...)}
}

var _ = Describe("ActionsFor", func() {
	var resolver *permission.Resolver

	BeforeEach(func() {
		resolver = newResolver()
	})

	Context("when the acting user owns a pending timesheet", func() {
		It("should allow editing but not approving or requesting changes", func() {
			me := &user.User{ID: 1, Grants: grants(timesheet.PermissionOwns,
				permission.ActionCreate, permission.ActionRead, permission.ActionUpdate)}
			ts := &timesheet.Timesheet{ID: 10, UserID: 1, Status: timesheet.StatusPending}

			a := timesheet.ActionsFor(resolver, ts, me, me, true)
			Expect(a.CanApprove).To(BeFalse())
			Expect(a.CanEdit).To(BeTrue())
			Expect(a.CanRequestChanges).To(BeFalse())
			Expect(a.CanRead).To(BeTrue())
			Expect(a.CanCreate).To(BeTrue())
			Expect(a.CanDelete).To(BeFalse())
			Expect(a.CanRequestFromOthers).To(BeFalse())
		})
	})

	Context("when the timesheet is approved", func() {
		It("should require update_approved to edit", func() {
			me := &user.User{ID: 1, Grants: grants(timesheet.PermissionOwns, permission.ActionRead, permission.ActionUpdate)}
			ts := &timesheet.Timesheet{ID: 10, UserID: 1, Status: timesheet.StatusApproved}

			a := timesheet.ActionsFor(resolver, ts, me, me, true)
			Expect(a.CanRead).To(BeTrue())
			Expect(a.CanEdit).To(BeFalse())

			me.Grants = grants(timesheet.PermissionOwns, permission.ActionRead, permission.ActionUpdateApproved)
			Expect(timesheet.ActionsFor(resolver, ts, me, me, true).CanEdit).To(BeTrue())
		})

		It("should require delete_approved to delete", func() {
			me := &user.User{ID: 1, Grants: grants(timesheet.PermissionOwns, permission.ActionDelete)}
			ts := &timesheet.Timesheet{ID: 10, UserID: 1, Status: timesheet.StatusApproved}
			Expect(timesheet.ActionsFor(resolver, ts, me, me, true).CanDelete).To(BeFalse())

			ts.Status = timesheet.StatusPending
			Expect(timesheet.ActionsFor(resolver, ts, me, me, true).CanDelete).To(BeTrue())
		})

		It("should not allow approving again", func() {
			manager := &user.User{ID: 2, Grants: grants(timesheet.PermissionOthers, permission.ActionApprove)}
			target := &user.User{ID: 1}
			ts := &timesheet.Timesheet{ID: 10, UserID: 1, Status: timesheet.StatusApproved}
			Expect(timesheet.ActionsFor(resolver, ts, target, manager, true).CanApprove).To(BeFalse())
		})
	})

	Context("when a manager reviews someone else's timesheet", func() {
		var (
			manager *user.User
			target  *user.User
		)

		BeforeEach(func() {
			manager = &user.User{ID: 2, Grants: grants(timesheet.PermissionOthers,
				permission.ActionRead, permission.ActionApprove, permission.ActionRequestChanges)}
			target = &user.User{ID: 1}
		})

		It("should use the others namespace", func() {
			ts := &timesheet.Timesheet{ID: 10, UserID: 1, Status: timesheet.StatusPending}
			a := timesheet.ActionsFor(resolver, ts, target, manager, true)
			Expect(a.CanRead).To(BeTrue())
			Expect(a.CanApprove).To(BeTrue())
			Expect(a.CanRequestChanges).To(BeTrue())
			Expect(a.CanResubmit).To(BeFalse())
		})

		It("should not re-request changes on a flagged timesheet but still allow approval", func() {
			ts := &timesheet.Timesheet{ID: 10, UserID: 1, Status: timesheet.StatusRequiresModification}
			a := timesheet.ActionsFor(resolver, ts, target, manager, true)
			Expect(a.CanRequestChanges).To(BeFalse())
			Expect(a.CanApprove).To(BeTrue())
		})

		It("should block every mutation when the target is not employed", func() {
			ts := &timesheet.Timesheet{ID: 10, UserID: 1, Status: timesheet.StatusPending}
			a := timesheet.ActionsFor(resolver, ts, target, manager, false)
			Expect(a.CanRead).To(BeTrue())
			Expect(a.CanApprove).To(BeFalse())
			Expect(a.CanRequestChanges).To(BeFalse())
			Expect(a.CanEdit).To(BeFalse())
			Expect(a.CanDelete).To(BeFalse())
			Expect(a.CanCreate).To(BeFalse())
		})

		It("should not let an owns-only grant reach others", func() {
			employee := &user.User{ID: 3, Grants: grants(timesheet.PermissionOwns, allActions...)}
			ts := &timesheet.Timesheet{ID: 10, UserID: 1, Status: timesheet.StatusPending}
			Expect(timesheet.ActionsFor(resolver, ts, target, employee, true)).To(Equal(timesheet.Actions{}))
		})
	})

	Context("when no timesheet exists yet", func() {
		It("should only answer read, create and request-from-others", func() {
			manager := &user.User{ID: 2, Grants: grants(timesheet.PermissionOthers, allActions...)}
			target := &user.User{ID: 1}

			a := timesheet.ActionsFor(resolver, nil, target, manager, true)
			Expect(a).To(Equal(timesheet.Actions{CanRead: true, CanCreate: true, CanRequestFromOthers: true}))
		})

		It("should use the owns namespace for the acting user's own day", func() {
			me := &user.User{ID: 1, Grants: grants(timesheet.PermissionOwns, permission.ActionCreate)}
			a := timesheet.ActionsFor(resolver, nil, me, me, true)
			Expect(a.CanCreate).To(BeTrue())
			Expect(a.CanRequestFromOthers).To(BeFalse())
		})
	})

	Context("when changes were requested", func() {
		It("should let the owner resubmit", func() {
			me := &user.User{ID: 1, Grants: grants(timesheet.PermissionOwns, permission.ActionRead, permission.ActionUpdate)}
			ts := &timesheet.Timesheet{ID: 10, UserID: 1, Status: timesheet.StatusRequiresModification}
			Expect(timesheet.ActionsFor(resolver, ts, me, me, true).CanResubmit).To(BeTrue())
			Expect(timesheet.ActionsFor(resolver, ts, me, me, false).CanResubmit).To(BeFalse())
		})
	})

	It("should grant everything to a super-user", func() {
		root := &user.User{ID: 9, Grants: grants(permission.SuperUserPermission, permission.Unconditional)}
		target := &user.User{ID: 1}
		ts := &timesheet.Timesheet{ID: 10, UserID: 1, Status: timesheet.StatusPending}
		a := timesheet.ActionsFor(resolver, ts, target, root, true)
		Expect(a.CanApprove).To(BeTrue())
		Expect(a.CanEdit).To(BeTrue())
		Expect(a.CanDelete).To(BeTrue())
		Expect(a.CanRequestChanges).To(BeTrue())
	})
})

var _ = Describe("Status", func() {
	It("should map every status to a display", func() {
		for _, s := range []timesheet.Status{
			timesheet.StatusPending, timesheet.StatusApproved,
			timesheet.StatusRequiresModification, timesheet.StatusRejected,
		} {
			d, ok := s.Display()
			Expect(ok).To(BeTrue(), string(s))
			Expect(d.Label).NotTo(BeEmpty())
		}
	})

	It("should flag unknown statuses explicitly", func() {
		d, ok := timesheet.Status("draft").Display()
		Expect(ok).To(BeFalse())
		Expect(d.Label).To(Equal("Unknown"))
	})
})

package permission_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/workforce-attendance/internal/permission"
)

type holder struct {
	id     int64
	roles  []string
	grants permission.Grants
}

func (h *holder) AssignedRoleIDs() []string            { return h.roles }
func (h *holder) IndividualGrants() permission.Grants { return h.grants }
func (h *holder) ActorID() int64                      { return h.id }

func actions(a ...permission.Action) permission.ActionSet {
	return permission.NewActionSet(a...)
}

func newCatalog() *permission.Catalog {
	return permission.NewCatalog(
		[]permission.Definition{
			{ID: "timesheets.owns", ModuleID: "attendance", SectionID: "timesheets", Actions: []permission.Action{
				permission.ActionRead, permission.ActionCreate, permission.ActionUpdate, permission.ActionDelete,
			}},
			{ID: "timesheets.others", ModuleID: "attendance", SectionID: "team", Actions: []permission.Action{
				permission.ActionRead, permission.ActionApprove, permission.ActionRequestChanges,
			}},
			{ID: "payroll.runs", ModuleID: "payroll", SectionID: "runs", Actions: []permission.Action{permission.ActionRead}},
		},
		[]permission.Role{
			{ID: "employee", Name: "Employee", Grants: permission.Grants{
				"timesheets.owns": actions(permission.ActionRead, permission.ActionCreate),
			}},
			{ID: "manager", Name: "Manager", Grants: permission.Grants{
				"timesheets.others": actions(permission.ActionRead, permission.ActionApprove),
			}},
		},
	)
}

var _ = Describe("Resolver", func() {
	var resolver *permission.Resolver

	BeforeEach(func() {
		resolver = permission.NewResolver(newCatalog())
	})

	Describe("EffectiveGrants", func() {
		It("should union role and individual grants", func() {
			h := &holder{
				roles:  []string{"employee", "manager"},
				grants: permission.Grants{"timesheets.owns": actions(permission.ActionUpdate)},
			}
			g := resolver.EffectiveGrants(h)
			Expect(g.Actions("timesheets.owns").Strings()).To(Equal([]string{"create", "read", "update"}))
			Expect(g.Actions("timesheets.others").Strings()).To(Equal([]string{"approve", "read"}))
		})

		It("should ignore unknown roles", func() {
			g := resolver.EffectiveGrants(&holder{roles: []string{"ghost"}})
			Expect(g).To(BeEmpty())
		})

		It("should never mutate the catalog roles", func() {
			h := &holder{
				roles:  []string{"employee"},
				grants: permission.Grants{"timesheets.owns": actions(permission.ActionDelete)},
			}
			_ = resolver.EffectiveGrants(h)
			role, _ := resolver.Catalog().Role("employee")
			Expect(role.Grants.Actions("timesheets.owns").Has(permission.ActionDelete)).To(BeFalse())
		})

		It("should return equal but independent maps on repeated calls", func() {
			h := &holder{
				roles:  []string{"employee", "manager"},
				grants: permission.Grants{"timesheets.owns": actions(permission.ActionUpdate)},
			}
			first := resolver.EffectiveGrants(h)
			second := resolver.EffectiveGrants(h)
			Expect(second).To(Equal(first))

			first.Actions("timesheets.owns").Add(permission.ActionDelete)
			first["payroll.runs"] = actions(permission.ActionRead)

			Expect(second.Actions("timesheets.owns").Has(permission.ActionDelete)).To(BeFalse())
			Expect(second).NotTo(HaveKey("payroll.runs"))
			Expect(resolver.EffectiveGrants(h)).To(Equal(second))
		})

		It("should return empty grants for a nil holder", func() {
			Expect(resolver.EffectiveGrants(nil)).To(BeEmpty())
		})
	})

	Describe("HasPermission", func() {
		It("should allow a granted action", func() {
			h := &holder{roles: []string{"employee"}}
			Expect(resolver.HasPermission(h, "timesheets.owns", permission.ActionCreate)).To(BeTrue())
			Expect(resolver.HasPermission(h, "timesheets.owns", permission.ActionDelete)).To(BeFalse())
		})

		It("should allow every action for an unconditional grant", func() {
			h := &holder{grants: permission.Grants{"timesheets.others": actions(permission.ParseAction("true"))}}
			Expect(resolver.HasPermission(h, "timesheets.others", permission.ActionRequestChanges)).To(BeTrue())
			Expect(resolver.HasPermission(h, "timesheets.owns", permission.ActionRead)).To(BeFalse())
		})

		It("should deny permissions missing from the catalog", func() {
			h := &holder{grants: permission.Grants{"reports.export": actions(permission.ActionRead)}}
			Expect(resolver.HasPermission(h, "reports.export", permission.ActionRead)).To(BeFalse())
		})

		It("should let a super-user through anything", func() {
			h := &holder{grants: permission.Grants{permission.SuperUserPermission: actions(permission.Unconditional)}}
			Expect(resolver.HasPermission(h, "timesheets.owns", permission.ActionDelete)).To(BeTrue())
			Expect(resolver.HasPermission(h, "reports.export", permission.ActionRead)).To(BeTrue())
			Expect(resolver.IsSuperUser(h)).To(BeTrue())
		})

		It("should not treat a conditional super-user grant as super", func() {
			h := &holder{grants: permission.Grants{permission.SuperUserPermission: actions(permission.ActionRead)}}
			Expect(resolver.IsSuperUser(h)).To(BeFalse())
		})
	})

	Describe("HasAnyPermission and HasAllPermissions", func() {
		var h *holder

		BeforeEach(func() {
			h = &holder{roles: []string{"employee"}}
		})

		It("should OR the requirements", func() {
			reqs := []permission.Requirement{
				permission.Require("timesheets.others", permission.ActionApprove),
				permission.Require("timesheets.owns", permission.ActionRead),
			}
			Expect(resolver.HasAnyPermission(h, reqs)).To(BeTrue())
			Expect(resolver.HasAllPermissions(h, reqs)).To(BeFalse())
		})

		It("should AND the requirements", func() {
			reqs := []permission.Requirement{
				permission.Require("timesheets.owns", permission.ActionCreate),
				permission.Require("timesheets.owns", permission.ActionRead),
			}
			Expect(resolver.HasAllPermissions(h, reqs)).To(BeTrue())
		})

		It("should let a super-user satisfy any non-empty list", func() {
			super := &holder{grants: permission.Grants{permission.SuperUserPermission: actions(permission.Unconditional)}}
			reqs := []permission.Requirement{
				permission.Require("payroll.runs", permission.ActionDelete),
				permission.Require("reports.export", permission.ActionRead),
				permission.Require("timesheets.others", permission.ActionDeleteApproved),
			}
			Expect(resolver.HasAnyPermission(super, reqs)).To(BeTrue())
			Expect(resolver.HasAllPermissions(super, reqs)).To(BeTrue())
			Expect(resolver.HasAnyPermission(super, reqs[1:2])).To(BeTrue())
			Expect(resolver.HasAllPermissions(super, reqs[1:2])).To(BeTrue())
		})

		It("should deny an empty list to a regular user", func() {
			Expect(resolver.HasAnyPermission(h, nil)).To(BeFalse())
			Expect(resolver.HasAllPermissions(h, nil)).To(BeFalse())
			Expect(resolver.HasAnyPermission(h, []permission.Requirement{})).To(BeFalse())
			Expect(resolver.HasAllPermissions(h, []permission.Requirement{})).To(BeFalse())
		})

		It("should deny an empty list even for a super-user", func() {
			super := &holder{grants: permission.Grants{permission.SuperUserPermission: actions(permission.Unconditional)}}
			Expect(resolver.HasAnyPermission(super, nil)).To(BeFalse())
			Expect(resolver.HasAllPermissions(super, []permission.Requirement{})).To(BeFalse())
		})
	})

	Describe("module and section access", func() {
		It("should grant access through any non-empty grant", func() {
			h := &holder{roles: []string{"manager"}}
			Expect(resolver.HasModuleAccess(h, "attendance")).To(BeTrue())
			Expect(resolver.HasSectionAccess(h, "team")).To(BeTrue())
			Expect(resolver.HasSectionAccess(h, "timesheets")).To(BeFalse())
			Expect(resolver.HasModuleAccess(h, "payroll")).To(BeFalse())
		})

		It("should ignore empty grants", func() {
			h := &holder{grants: permission.Grants{"payroll.runs": actions()}}
			Expect(resolver.HasModuleAccess(h, "payroll")).To(BeFalse())
		})

		It("should open every module to a super-user", func() {
			h := &holder{grants: permission.Grants{permission.SuperUserPermission: actions(permission.Unconditional)}}
			Expect(resolver.HasModuleAccess(h, "payroll")).To(BeTrue())
			Expect(resolver.HasSectionAccess(h, "anything")).To(BeTrue())
		})
	})
})

var _ = Describe("actions", func() {
	It("should fold sentinel spellings into Unconditional", func() {
		for _, s := range []string{"true", "ALL", " * "} {
			Expect(permission.ParseAction(s)).To(Equal(permission.Unconditional))
		}
		Expect(permission.ParseAction(" Read ")).To(Equal(permission.ActionRead))
	})

	It("should round-trip the storage encoding", func() {
		set := permission.SplitActions("read, create,,update")
		Expect(set.Strings()).To(Equal([]string{"create", "read", "update"}))
		Expect(permission.JoinActions(set)).To(Equal("create,read,update"))
		Expect(permission.SplitActions("  ").Len()).To(Equal(0))
	})
})

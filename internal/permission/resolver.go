package permission

// Resolver answers permission queries for a Holder against a Catalog.
// It keeps no per-user state and is safe for concurrent use.
type Resolver struct {
	catalog *Catalog
}

func NewResolver(catalog *Catalog) *Resolver {
	if catalog == nil {
		catalog = NewCatalog(nil, nil)
	}
	return &Resolver{catalog: catalog}
}

func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// EffectiveGrants unions the grants of every role the holder has with the
// holder's individual grants. Unknown role IDs contribute nothing.
func (r *Resolver) EffectiveGrants(h Holder) Grants {
	effective := make(Grants)
	if h == nil {
		return effective
	}
	for _, roleID := range h.AssignedRoleIDs() {
		role, ok := r.catalog.Role(roleID)
		if !ok {
			continue
		}
		effective.Merge(role.Grants)
	}
	effective.Merge(h.IndividualGrants())
	return effective
}

func (r *Resolver) IsSuperUser(h Holder) bool {
	return isSuperUser(r.EffectiveGrants(h))
}

func isSuperUser(g Grants) bool {
	return g.Actions(SuperUserPermission).IsUnconditional()
}

func (r *Resolver) HasPermission(h Holder, permissionID string, action Action) bool {
	return r.check(r.EffectiveGrants(h), permissionID, action)
}

func (r *Resolver) check(g Grants, permissionID string, action Action) bool {
	if isSuperUser(g) {
		return true
	}
	if _, known := r.catalog.Definition(permissionID); !known {
		return false
	}
	actions, ok := g[permissionID]
	if !ok {
		return false
	}
	if actions.IsUnconditional() {
		return true
	}
	return actions.Has(action)
}

// HasAnyPermission is the OR of reqs. An empty list is a denial.
func (r *Resolver) HasAnyPermission(h Holder, reqs []Requirement) bool {
	if len(reqs) == 0 {
		return false
	}
	g := r.EffectiveGrants(h)
	if isSuperUser(g) {
		return true
	}
	for _, req := range reqs {
		if r.check(g, req.PermissionID, req.Action) {
			return true
		}
	}
	return false
}

// HasAllPermissions is the AND of reqs. An empty list is a denial.
func (r *Resolver) HasAllPermissions(h Holder, reqs []Requirement) bool {
	if len(reqs) == 0 {
		return false
	}
	g := r.EffectiveGrants(h)
	if isSuperUser(g) {
		return true
	}
	for _, req := range reqs {
		if !r.check(g, req.PermissionID, req.Action) {
			return false
		}
	}
	return true
}

// HasModuleAccess reports whether any non-empty grant belongs to moduleID.
func (r *Resolver) HasModuleAccess(h Holder, moduleID string) bool {
	return r.hasAccess(h, func(d Definition) bool { return d.ModuleID == moduleID })
}

// HasSectionAccess reports whether any non-empty grant belongs to sectionID.
func (r *Resolver) HasSectionAccess(h Holder, sectionID string) bool {
	return r.hasAccess(h, func(d Definition) bool { return d.SectionID == sectionID })
}

func (r *Resolver) hasAccess(h Holder, match func(Definition) bool) bool {
	g := r.EffectiveGrants(h)
	if isSuperUser(g) {
		return true
	}
	for pid, actions := range g {
		if actions.Len() == 0 {
			continue
		}
		def, ok := r.catalog.Definition(pid)
		if ok && match(def) {
			return true
		}
	}
	return false
}

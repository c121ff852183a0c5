package permission

import (
	"sort"
	"strings"
)

// SuperUserPermission is the reserved permission whose unconditional grant
// bypasses every other check.
const SuperUserPermission = "super-user"

type Action string

// Unconditional grants every action on a permission.
const Unconditional Action = "*"

const (
	ActionRead           Action = "read"
	ActionCreate         Action = "create"
	ActionUpdate         Action = "update"
	ActionUpdateApproved Action = "update_approved"
	ActionDelete         Action = "delete"
	ActionDeleteApproved Action = "delete_approved"
	ActionApprove        Action = "approve"
	ActionRequestChanges Action = "request_changes"
)

// ParseAction folds the legacy sentinel spellings ("true", "all", "*") into
// Unconditional and normalises everything else.
func ParseAction(s string) Action {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "true", "all", "*":
		return Unconditional
	}
	return Action(s)
}

func ParseActions(raw []string) ActionSet {
	set := make(ActionSet, len(raw))
	for _, r := range raw {
		if a := ParseAction(r); a != "" {
			set.Add(a)
		}
	}
	return set
}

type ActionSet map[Action]struct{}

func NewActionSet(actions ...Action) ActionSet {
	set := make(ActionSet, len(actions))
	for _, a := range actions {
		set.Add(a)
	}
	return set
}

func (s ActionSet) Add(a Action) {
	s[a] = struct{}{}
}

func (s ActionSet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

func (s ActionSet) IsUnconditional() bool {
	return s.Has(Unconditional)
}

func (s ActionSet) Len() int {
	return len(s)
}

// Union adds every action of o into s.
func (s ActionSet) Union(o ActionSet) {
	for a := range o {
		s[a] = struct{}{}
	}
}

func (s ActionSet) Sorted() []Action {
	out := make([]Action, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s ActionSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, a := range sorted {
		out[i] = string(a)
	}
	return out
}

// Grants maps a permission ID to the actions granted on it.
type Grants map[string]ActionSet

// Merge unions o into g. Grants are additive only.
func (g Grants) Merge(o Grants) {
	for pid, actions := range o {
		existing, ok := g[pid]
		if !ok {
			existing = make(ActionSet, len(actions))
			g[pid] = existing
		}
		existing.Union(actions)
	}
}

func (g Grants) Clone() Grants {
	out := make(Grants, len(g))
	out.Merge(g)
	return out
}

// Actions returns the granted actions for pid, or nil.
func (g Grants) Actions(pid string) ActionSet {
	return g[pid]
}

// Flatten renders the grants as sorted string lists, the JSON shape used by
// the API.
func (g Grants) Flatten() map[string][]string {
	out := make(map[string][]string, len(g))
	for pid, actions := range g {
		out[pid] = actions.Strings()
	}
	return out
}

// Requirement is one (permission, action) pair of a query.
type Requirement struct {
	PermissionID string `json:"permission_id"`
	Action       Action `json:"action"`
}

func Require(permissionID string, action Action) Requirement {
	return Requirement{PermissionID: permissionID, Action: action}
}

type Definition struct {
	ID        string   `json:"id"`
	ModuleID  string   `json:"module_id"`
	SectionID string   `json:"section_id"`
	Actions   []Action `json:"actions"`
}

func (d Definition) Allows(a Action) bool {
	for _, allowed := range d.Actions {
		if allowed == a || allowed == Unconditional {
			return true
		}
	}
	return false
}

type Role struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Grants Grants `json:"grants"`
}

// Holder is anything that carries role assignments and individual grants.
type Holder interface {
	AssignedRoleIDs() []string
	IndividualGrants() Grants
}

// Catalog is the immutable reference data for permission resolution.
type Catalog struct {
	definitions map[string]Definition
	roles       map[string]Role
	defOrder    []string
	roleOrder   []string
}

func NewCatalog(definitions []Definition, roles []Role) *Catalog {
	c := &Catalog{
		definitions: make(map[string]Definition, len(definitions)),
		roles:       make(map[string]Role, len(roles)),
	}
	for _, d := range definitions {
		if _, dup := c.definitions[d.ID]; !dup {
			c.defOrder = append(c.defOrder, d.ID)
		}
		c.definitions[d.ID] = d
	}
	for _, r := range roles {
		if _, dup := c.roles[r.ID]; !dup {
			c.roleOrder = append(c.roleOrder, r.ID)
		}
		c.roles[r.ID] = r
	}
	return c
}

func (c *Catalog) Definition(id string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	d, ok := c.definitions[id]
	return d, ok
}

func (c *Catalog) Role(id string) (Role, bool) {
	if c == nil {
		return Role{}, false
	}
	r, ok := c.roles[id]
	return r, ok
}

func (c *Catalog) Definitions() []Definition {
	if c == nil {
		return nil
	}
	out := make([]Definition, 0, len(c.defOrder))
	for _, id := range c.defOrder {
		out = append(out, c.definitions[id])
	}
	return out
}

func (c *Catalog) Roles() []Role {
	if c == nil {
		return nil
	}
	out := make([]Role, 0, len(c.roleOrder))
	for _, id := range c.roleOrder {
		out = append(out, c.roles[id])
	}
	return out
}

// SplitActions decodes a comma separated action column.
func SplitActions(s string) ActionSet {
	if strings.TrimSpace(s) == "" {
		return make(ActionSet)
	}
	return ParseActions(strings.Split(s, ","))
}

// JoinActions encodes an action set for storage.
func JoinActions(s ActionSet) string {
	return strings.Join(s.Strings(), ",")
}

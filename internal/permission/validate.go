package permission

import "fmt"

type IssueKind string

const (
	IssueDuplicateDefinition IssueKind = "duplicate_definition"
	IssueDuplicateRole       IssueKind = "duplicate_role"
	IssueUnknownPermission   IssueKind = "unknown_permission"
	IssueUndeclaredAction    IssueKind = "undeclared_action"
	IssueEmptyGrant          IssueKind = "empty_grant"
)

// Issue is a data-integrity finding about the catalog or a grant set.
// Issues are reported, they never change how resolution behaves.
type Issue struct {
	Kind         IssueKind `json:"kind"`
	Owner        string    `json:"owner"`
	PermissionID string    `json:"permission_id,omitempty"`
	Action       Action    `json:"action,omitempty"`
}

func (i Issue) String() string {
	switch i.Kind {
	case IssueUndeclaredAction:
		return fmt.Sprintf("%s: %s grants undeclared action %q on %s", i.Kind, i.Owner, i.Action, i.PermissionID)
	case IssueUnknownPermission, IssueEmptyGrant:
		return fmt.Sprintf("%s: %s references %s", i.Kind, i.Owner, i.PermissionID)
	default:
		return fmt.Sprintf("%s: %s", i.Kind, i.Owner)
	}
}

// Validate checks raw catalog data before it is indexed.
func Validate(definitions []Definition, roles []Role) []Issue {
	var issues []Issue

	seenDefs := make(map[string]bool, len(definitions))
	for _, d := range definitions {
		if seenDefs[d.ID] {
			issues = append(issues, Issue{Kind: IssueDuplicateDefinition, Owner: d.ID})
		}
		seenDefs[d.ID] = true
	}

	catalog := NewCatalog(definitions, nil)
	seenRoles := make(map[string]bool, len(roles))
	for _, r := range roles {
		if seenRoles[r.ID] {
			issues = append(issues, Issue{Kind: IssueDuplicateRole, Owner: "role:" + r.ID})
		}
		seenRoles[r.ID] = true
		issues = append(issues, ValidateGrants(catalog, "role:"+r.ID, r.Grants)...)
	}
	return issues
}

// ValidateGrants checks a grant set against the catalog definitions.
func ValidateGrants(c *Catalog, owner string, grants Grants) []Issue {
	var issues []Issue
	for pid, actions := range grants {
		def, ok := c.Definition(pid)
		if !ok {
			if pid == SuperUserPermission {
				continue
			}
			issues = append(issues, Issue{Kind: IssueUnknownPermission, Owner: owner, PermissionID: pid})
			continue
		}
		if actions.Len() == 0 {
			issues = append(issues, Issue{Kind: IssueEmptyGrant, Owner: owner, PermissionID: pid})
			continue
		}
		for _, a := range actions.Sorted() {
			if a == Unconditional {
				continue
			}
			if !def.Allows(a) {
				issues = append(issues, Issue{Kind: IssueUndeclaredAction, Owner: owner, PermissionID: pid, Action: a})
			}
		}
	}
	return issues
}

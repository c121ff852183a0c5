package timesheet

import "github.com/frahmantamala/workforce-attendance/internal/permission"

// Actions is the set of workflow operations the acting user may invoke on a
// timesheet (or on a day that has none yet).
type Actions struct {
	CanRead              bool `json:"can_read"`
	CanCreate            bool `json:"can_create"`
	CanEdit              bool `json:"can_edit"`
	CanDelete            bool `json:"can_delete"`
	CanApprove           bool `json:"can_approve"`
	CanRequestChanges    bool `json:"can_request_changes"`
	CanRequestFromOthers bool `json:"can_request_from_others"`
	CanResubmit          bool `json:"can_resubmit"`
}

// ActionsFor projects the acting user's permissions onto ts. ts may be nil
// when the target has no timesheet for the day; ownership then falls back to
// whether the acting user is the target.
func ActionsFor(r *permission.Resolver, ts *Timesheet, target, acting permission.Actor, isTargetEmployed bool) Actions {
	if acting == nil {
		return Actions{}
	}

	var owns bool
	switch {
	case ts != nil:
		owns = ts.UserID == acting.ActorID()
	case target != nil:
		owns = target.ActorID() == acting.ActorID()
	}

	namespace := PermissionOthers
	if owns {
		namespace = PermissionOwns
	}

	var a Actions
	a.CanRead = r.HasPermission(acting, namespace, permission.ActionRead)
	a.CanCreate = isTargetEmployed && r.HasPermission(acting, namespace, permission.ActionCreate)
	a.CanRequestFromOthers = isTargetEmployed && !owns &&
		r.HasPermission(acting, PermissionOthers, permission.ActionRequestChanges)

	if ts == nil || !isTargetEmployed {
		return a
	}

	isApproved := ts.Status == StatusApproved

	a.CanApprove = ts.Status.IsPending() &&
		r.HasPermission(acting, namespace, permission.ActionApprove)
	a.CanRequestChanges = ts.Status.IsPending() && ts.Status != StatusRequiresModification &&
		r.HasPermission(acting, namespace, permission.ActionRequestChanges)

	deleteAction, updateAction := permission.ActionDelete, permission.ActionUpdate
	if isApproved {
		deleteAction, updateAction = permission.ActionDeleteApproved, permission.ActionUpdateApproved
	}
	a.CanDelete = r.HasPermission(acting, namespace, deleteAction)
	a.CanEdit = a.CanRead && r.HasPermission(acting, namespace, updateAction)

	a.CanResubmit = owns && ts.Status == StatusRequiresModification &&
		r.HasPermission(acting, PermissionOwns, permission.ActionUpdate)

	return a
}

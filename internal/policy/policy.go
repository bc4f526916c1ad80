// Package policy holds the pure authorization decision function. Given the
// same principal, action, target organization and resolved scope it always
// returns the same decision; there is no hidden state and no clock.
package policy

import (
	"slices"

	"taskdeck.org/internal/auth"
)

// Action identifies an operation a principal requests on task data.
type Action string

const (
	ActionList      Action = "task.list"
	ActionCreate    Action = "task.create"
	ActionRead      Action = "task.read"
	ActionUpdate    Action = "task.update"
	ActionDelete    Action = "task.delete"
	ActionAuditView Action = "audit.view"
)

// Decision is the outcome of an authorization check. A denial carries a
// reason for the audit trail but deliberately reveals nothing about
// whether the target resource exists.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the affirmative decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny blocks the operation with the given audit reason.
func Deny(reason string) Decision { return Decision{Reason: reason} }

// Denial reasons recorded in the audit trail.
const (
	ReasonRoleForbidsMutation = "role forbids mutation"
	ReasonOutOfScope          = "task organization outside scope"
	ReasonRoleForbidsAudit    = "role forbids audit access"
)

// roleRequirements is the explicit action table: which roles may perform
// which action at all, before scoping is considered. Read-only task actions
// are open to every role.
var roleRequirements = map[Action][]auth.Role{
	ActionList:      {auth.RoleOwner, auth.RoleAdmin, auth.RoleViewer},
	ActionRead:      {auth.RoleOwner, auth.RoleAdmin, auth.RoleViewer},
	ActionCreate:    {auth.RoleOwner, auth.RoleAdmin},
	ActionUpdate:    {auth.RoleOwner, auth.RoleAdmin},
	ActionDelete:    {auth.RoleOwner, auth.RoleAdmin},
	ActionAuditView: {auth.RoleOwner, auth.RoleAdmin},
}

// Authorize decides whether the principal may perform the action against a
// task owned by targetOrgID, given the principal's already-resolved scope.
// The caller resolves scope strictly before calling; the policy itself
// never reaches into any store.
//
// Rules, evaluated in order:
//  1. the role table: a role missing from the action's row is denied
//  2. Create: allowed unconditionally for permitted roles (the created
//     task is always scoped to the principal's own organization)
//  3. List: allowed; the result set, not the permission, is scope-filtered
//  4. Read/Update/Delete: allowed iff the target organization is in scope
func Authorize(p auth.Principal, action Action, targetOrgID string, scope []string) Decision {
	required, known := roleRequirements[action]
	if !known {
		return Deny("unknown action")
	}
	if !slices.Contains(required, p.Role) {
		if action == ActionAuditView {
			return Deny(ReasonRoleForbidsAudit)
		}
		return Deny(ReasonRoleForbidsMutation)
	}

	switch action {
	case ActionCreate, ActionList, ActionAuditView:
		return Allow()
	case ActionRead, ActionUpdate, ActionDelete:
		if slices.Contains(scope, targetOrgID) {
			return Allow()
		}
		return Deny(ReasonOutOfScope)
	default:
		return Deny("unknown action")
	}
}

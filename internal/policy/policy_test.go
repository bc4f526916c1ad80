package policy

import (
	"testing"

	"taskdeck.org/internal/auth"
)

func TestAuthorizeRoleTable(t *testing.T) {
	scope := []string{"org-a", "org-b"}

	cases := []struct {
		name    string
		role    auth.Role
		action  Action
		target  string
		allowed bool
		reason  string
	}{
		{name: "owner creates", role: auth.RoleOwner, action: ActionCreate, target: "org-a", allowed: true},
		{name: "admin creates", role: auth.RoleAdmin, action: ActionCreate, target: "org-a", allowed: true},
		{name: "viewer create denied", role: auth.RoleViewer, action: ActionCreate, target: "org-a", allowed: false, reason: ReasonRoleForbidsMutation},
		{name: "viewer lists", role: auth.RoleViewer, action: ActionList, target: "", allowed: true},
		{name: "viewer reads in scope", role: auth.RoleViewer, action: ActionRead, target: "org-a", allowed: true},
		{name: "viewer update denied", role: auth.RoleViewer, action: ActionUpdate, target: "org-a", allowed: false, reason: ReasonRoleForbidsMutation},
		{name: "viewer delete denied", role: auth.RoleViewer, action: ActionDelete, target: "org-a", allowed: false, reason: ReasonRoleForbidsMutation},
		{name: "admin update in scope", role: auth.RoleAdmin, action: ActionUpdate, target: "org-a", allowed: true},
		{name: "admin update out of scope", role: auth.RoleAdmin, action: ActionUpdate, target: "org-z", allowed: false, reason: ReasonOutOfScope},
		{name: "owner delete out of scope", role: auth.RoleOwner, action: ActionDelete, target: "org-z", allowed: false, reason: ReasonOutOfScope},
		{name: "owner audit view", role: auth.RoleOwner, action: ActionAuditView, target: "", allowed: true},
		{name: "admin audit view", role: auth.RoleAdmin, action: ActionAuditView, target: "", allowed: true},
		{name: "viewer audit view denied", role: auth.RoleViewer, action: ActionAuditView, target: "", allowed: false, reason: ReasonRoleForbidsAudit},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := auth.Principal{SubjectID: "user-1", Role: tc.role, OrgID: "org-a"}
			d := Authorize(p, tc.action, tc.target, scope)
			if d.Allowed != tc.allowed {
				t.Fatalf("Authorize(%s, %s) allowed = %v, want %v", tc.role, tc.action, d.Allowed, tc.allowed)
			}
			if !tc.allowed && d.Reason != tc.reason {
				t.Fatalf("reason = %q, want %q", d.Reason, tc.reason)
			}
			if tc.allowed && d.Reason != "" {
				t.Fatalf("allow carried a reason: %q", d.Reason)
			}
		})
	}
}

func TestAuthorizeUnknownAction(t *testing.T) {
	p := auth.Principal{SubjectID: "user-1", Role: auth.RoleOwner, OrgID: "org-a"}
	d := Authorize(p, Action("task.export"), "org-a", []string{"org-a"})
	if d.Allowed {
		t.Fatal("unknown action must be denied")
	}
}

func TestAuthorizeDeterministic(t *testing.T) {
	p := auth.Principal{SubjectID: "user-1", Role: auth.RoleAdmin, OrgID: "org-a"}
	scope := []string{"org-a"}
	first := Authorize(p, ActionUpdate, "org-a", scope)
	for i := 0; i < 100; i++ {
		if got := Authorize(p, ActionUpdate, "org-a", scope); got != first {
			t.Fatalf("decision changed between identical calls: %+v vs %+v", got, first)
		}
	}
}

func TestAuthorizeDoesNotMutateScope(t *testing.T) {
	p := auth.Principal{SubjectID: "user-1", Role: auth.RoleOwner, OrgID: "org-a"}
	scope := []string{"org-a", "org-b"}
	Authorize(p, ActionDelete, "org-b", scope)
	if scope[0] != "org-a" || scope[1] != "org-b" {
		t.Fatalf("scope slice mutated: %v", scope)
	}
}

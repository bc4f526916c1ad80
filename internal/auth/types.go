package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role is the coarse access level a user holds within their organization.
type Role string

const (
	RoleOwner  Role = "Owner"
	RoleAdmin  Role = "Admin"
	RoleViewer Role = "Viewer"
)

// ParseRole normalizes a stored or transmitted role name.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "owner":
		return RoleOwner, nil
	case "admin":
		return RoleAdmin, nil
	case "viewer":
		return RoleViewer, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
}

// Valid reports whether the role is one of the three known levels.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleViewer
}

// Principal is the authenticated actor making a request: subject, role and
// home organization. It is produced by credential verification, immutable
// for the lifetime of a request and never persisted.
type Principal struct {
	SubjectID string
	Role      Role
	OrgID     string
}

// User is a stored account consulted by the credential verifier.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	OrganizationID string    `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Principal derives the request principal from a verified user account.
func (u *User) Principal() Principal {
	return Principal{SubjectID: u.ID, Role: u.Role, OrgID: u.OrganizationID}
}

// Package rbac decides who may do what inside a project.
//
// A user's effective role in a project comes from exactly one of two places:
// project ownership (always OWNER) or a membership row (VIEWER, DEVELOPER or
// ADMIN). The Guard combines that role with a PermissionTable to authorize
// operations on projects, boards and issues.
package rbac

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownRole is returned for role values outside the hierarchy.
	ErrUnknownRole = errors.New("unknown role")
	// ErrInvariantViolation marks state that the data model forbids, such as a
	// membership row that carries OWNER.
	ErrInvariantViolation = errors.New("rbac invariant violation")
)

// Role is a project role. Larger values are more privileged.
type Role int

const (
	RoleViewer Role = iota + 1
	RoleDeveloper
	RoleAdmin
	RoleOwner
)

var roleNames = map[Role]string{
	RoleViewer:    "VIEWER",
	RoleDeveloper: "DEVELOPER",
	RoleAdmin:     "ADMIN",
	RoleOwner:     "OWNER",
}

// Roles returns every role, least privileged first.
func Roles() []Role {
	return []Role{RoleViewer, RoleDeveloper, RoleAdmin, RoleOwner}
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Valid reports whether r is one of the four defined roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// Assignable reports whether r may be stored on a membership row. OWNER is
// conveyed only through project ownership.
func (r Role) Assignable() bool {
	return r == RoleViewer || r == RoleDeveloper || r == RoleAdmin
}

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for role, n := range roleNames {
		if n == name {
			return role, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Rank maps a role onto the hierarchy: VIEWER=1 through OWNER=4.
func Rank(r Role) (int, error) {
	if !r.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
	}
	return int(r), nil
}

// SatisfiesMinimum reports whether actual is at least as privileged as required.
func SatisfiesMinimum(actual, required Role) (bool, error) {
	a, err := Rank(actual)
	if err != nil {
		return false, err
	}
	r, err := Rank(required)
	if err != nil {
		return false, err
	}
	return a >= r, nil
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the role by name.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
	}
	return r.String(), nil
}

func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("rbac: cannot scan %T into Role", src)
	}
}

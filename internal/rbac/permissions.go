package rbac

import "fmt"

// RoleSet is a bitmask of roles.
type RoleSet uint8

func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s |= 1 << uint(r)
	}
	return s
}

func (s RoleSet) Has(r Role) bool {
	return r.Valid() && s&(1<<uint(r)) != 0
}

// Roles lists the members of s, least privileged first.
func (s RoleSet) Roles() []Role {
	var out []Role
	for _, r := range Roles() {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// PermissionTable maps each operation to the roles allowed to perform it.
// It is an explicit allow-list per operation rather than a rank threshold.
// The zero value denies everything.
type PermissionTable struct {
	allowed [operationLimit]RoleSet
}

// NewPermissionTable builds a table from an operation → roles mapping.
// Undefined operations or roles are rejected so typos surface at startup.
func NewPermissionTable(entries map[Operation][]Role) (PermissionTable, error) {
	var t PermissionTable
	for op, roles := range entries {
		if !op.Valid() {
			return PermissionTable{}, fmt.Errorf("permission table: undefined operation %d", int(op))
		}
		for _, r := range roles {
			if !r.Valid() {
				return PermissionTable{}, fmt.Errorf("permission table: %s: %w: %d", op, ErrUnknownRole, int(r))
			}
		}
		t.allowed[op] = NewRoleSet(roles...)
	}
	return t, nil
}

// IsAllowed reports whether role may perform op. Operations missing from the
// table, undefined operations and undefined roles are all denied.
func (t PermissionTable) IsAllowed(role Role, op Operation) bool {
	if !op.Valid() {
		return false
	}
	return t.allowed[op].Has(role)
}

// Allowed returns the roles permitted to perform op.
func (t PermissionTable) Allowed(op Operation) []Role {
	if !op.Valid() {
		return nil
	}
	return t.allowed[op].Roles()
}

var (
	anyRole       = []Role{RoleViewer, RoleDeveloper, RoleAdmin, RoleOwner}
	developerPlus = []Role{RoleDeveloper, RoleAdmin, RoleOwner}
	adminPlus     = []Role{RoleAdmin, RoleOwner}
	ownerOnly     = []Role{RoleOwner}
)

var defaultPermissions = map[Operation][]Role{
	OpProjectRead:              anyRole,
	OpProjectUpdate:            adminPlus,
	OpProjectDelete:            ownerOnly,
	OpProjectManageMembers:     adminPlus,
	OpProjectTransferOwnership: ownerOnly,

	OpBoardRead:   anyRole,
	OpBoardCreate: developerPlus,
	OpBoardUpdate: developerPlus,
	OpBoardDelete: adminPlus,

	OpColumnCreate:  developerPlus,
	OpColumnUpdate:  developerPlus,
	OpColumnDelete:  adminPlus,
	OpColumnReorder: developerPlus,

	OpIssueRead:   anyRole,
	OpIssueCreate: developerPlus,
	OpIssueUpdate: developerPlus,
	OpIssueDelete: adminPlus,
	OpIssueAssign: developerPlus,
	OpIssueMove:   developerPlus,

	OpLabelManage: developerPlus,
}

// DefaultPermissions returns the application's permission table.
func DefaultPermissions() PermissionTable {
	t, err := NewPermissionTable(defaultPermissions)
	if err != nil {
		panic(err)
	}
	return t
}

package rbac

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Resolution is the outcome of role resolution: Owner, Member or NoAccess.
type Resolution interface {
	resolution()
}

// Owner means the user owns the project.
type Owner struct{}

// Member means the user holds a membership row with Role.
type Member struct {
	Role Role
}

// NoAccess means the user is neither owner nor member, or the project does
// not exist. The two cases are deliberately indistinguishable.
type NoAccess struct{}

func (Owner) resolution()    {}
func (Member) resolution()   {}
func (NoAccess) resolution() {}

// RoleOf collapses a resolution to a role. ok is false for NoAccess.
func RoleOf(res Resolution) (role Role, ok bool) {
	switch r := res.(type) {
	case Owner:
		return RoleOwner, true
	case Member:
		return r.Role, true
	default:
		return 0, false
	}
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve checks ownership first and only then the membership relation.
func (r *Resolver) Resolve(ctx context.Context, userID, projectID uuid.UUID) (Resolution, error) {
	owned, err := r.store.FindProjectOwnedBy(ctx, userID, projectID)
	if err != nil {
		return nil, fmt.Errorf("resolve role: owner lookup: %w", err)
	}
	if owned != nil {
		return Owner{}, nil
	}

	m, err := r.store.FindMembership(ctx, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve role: membership lookup: %w", err)
	}
	if m == nil {
		return NoAccess{}, nil
	}
	if !m.Role.Assignable() {
		return nil, fmt.Errorf("%w: membership of user %s in project %s carries role %s",
			ErrInvariantViolation, userID, projectID, m.Role)
	}
	return Member{Role: m.Role}, nil
}

// ResolveRole is Resolve collapsed to a plain role. ok is false when the user
// has no access.
func (r *Resolver) ResolveRole(ctx context.Context, userID, projectID uuid.UUID) (Role, bool, error) {
	res, err := r.Resolve(ctx, userID, projectID)
	if err != nil {
		return 0, false, err
	}
	role, ok := RoleOf(res)
	return role, ok, nil
}

package rbac

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

var ErrProjectNotFound = errors.New("project not found")

// Entry is one principal with access to a project.
type Entry struct {
	Principal Principal
	Role      Role
	JoinedAt  time.Time
}

// Directory lists everyone with access to a project.
type Directory struct {
	store Store
}

func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

// ListMembers returns the owner followed by every member, ordered by role
// (most privileged first) and then by join time. The owner entry always comes
// from the project itself and is dated at project creation.
func (d *Directory) ListMembers(ctx context.Context, projectID uuid.UUID) ([]Entry, error) {
	project, err := d.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	rows, err := d.store.ListMembershipsOrdered(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]Entry, 0, len(rows))
	for _, m := range rows {
		if !m.Role.Assignable() {
			return nil, fmt.Errorf("%w: membership of user %s in project %s carries role %s",
				ErrInvariantViolation, m.Principal.ID, projectID, m.Role)
		}
		// Ownership wins over a stray row for the same user, as in Resolver.
		if m.Principal.ID == project.Owner.ID {
			continue
		}
		members = append(members, Entry{Principal: m.Principal, Role: m.Role, JoinedAt: m.JoinedAt})
	}

	slices.SortStableFunc(members, func(a, b Entry) int {
		if c := cmp.Compare(b.Role, a.Role); c != 0 {
			return c
		}
		return a.JoinedAt.Compare(b.JoinedAt)
	})

	out := make([]Entry, 0, len(members)+1)
	out = append(out, Entry{Principal: project.Owner, Role: RoleOwner, JoinedAt: project.CreatedAt})
	return append(out, members...), nil
}

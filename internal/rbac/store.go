package rbac

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Principal identifies a user. Name and Email are filled only by lookups that
// load user details.
type Principal struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Project is the slice of a project the access layer cares about.
type Project struct {
	ID        uuid.UUID
	Owner     Principal
	CreatedAt time.Time
}

// Membership is one (project, user) → role row.
type Membership struct {
	ProjectID uuid.UUID
	Principal Principal
	Role      Role
	JoinedAt  time.Time
}

// BoardChain is a board together with the project it belongs to.
type BoardChain struct {
	BoardID uuid.UUID
	Project Project
}

// IssueChain is an issue with every hop up to its project.
type IssueChain struct {
	IssueID  uuid.UUID
	ColumnID uuid.UUID
	BoardID  uuid.UUID
	Project  Project
}

// Store is the data access the rbac package needs. Lookups return (nil, nil)
// when nothing matches; errors are reserved for store faults.
type Store interface {
	FindProjectOwnedBy(ctx context.Context, userID, projectID uuid.UUID) (*Project, error)
	FindMembership(ctx context.Context, projectID, userID uuid.UUID) (*Membership, error)
	FindBoardWithProject(ctx context.Context, boardID uuid.UUID) (*BoardChain, error)
	FindIssueWithChain(ctx context.Context, issueID uuid.UUID) (*IssueChain, error)
	ListMembershipsOrdered(ctx context.Context, projectID uuid.UUID) ([]Membership, error)
	GetProject(ctx context.Context, projectID uuid.UUID) (*Project, error)
}

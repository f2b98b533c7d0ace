package rbac

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Decision int

const (
	DecisionAuthorized Decision = iota + 1
	DecisionDenied
	DecisionNotFound
)

func (d Decision) String() string {
	switch d {
	case DecisionAuthorized:
		return "authorized"
	case DecisionDenied:
		return "denied"
	case DecisionNotFound:
		return "not_found"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

type DenyReason int

const (
	ReasonNone DenyReason = iota
	ReasonNotAMember
	ReasonInsufficientPermission
)

func (r DenyReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNotAMember:
		return "NOT_A_MEMBER"
	case ReasonInsufficientPermission:
		return "INSUFFICIENT_PERMISSION"
	default:
		return fmt.Sprintf("DenyReason(%d)", int(r))
	}
}

// AuthResult is the outcome of an authorization check. Role is set only when
// Decision is DecisionAuthorized or Reason is ReasonInsufficientPermission.
// ProjectID is the project the entity resolved to, or the requested project.
type AuthResult struct {
	Decision  Decision
	Reason    DenyReason
	Role      Role
	Operation Operation
	ProjectID uuid.UUID
}

func (r AuthResult) Allowed() bool {
	return r.Decision == DecisionAuthorized
}

// Guard authorizes operations against projects, boards and issues. It walks
// the ownership chain itself and never trusts a caller-supplied project id.
type Guard struct {
	store    Store
	resolver *Resolver
	table    PermissionTable
}

func NewGuard(store Store, table PermissionTable) *Guard {
	return &Guard{
		store:    store,
		resolver: NewResolver(store),
		table:    table,
	}
}

// AuthorizeProject never reports NotFound: a missing project is a
// NOT_A_MEMBER denial so outsiders cannot discover project ids.
func (g *Guard) AuthorizeProject(ctx context.Context, userID, projectID uuid.UUID, op Operation) (AuthResult, error) {
	return g.decide(ctx, userID, projectID, op)
}

func (g *Guard) AuthorizeBoard(ctx context.Context, userID, boardID uuid.UUID, op Operation) (AuthResult, error) {
	chain, err := g.store.FindBoardWithProject(ctx, boardID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("authorize board %s: %w", boardID, err)
	}
	if chain == nil {
		return AuthResult{Decision: DecisionNotFound, Operation: op}, nil
	}
	return g.decide(ctx, userID, chain.Project.ID, op)
}

func (g *Guard) AuthorizeIssue(ctx context.Context, userID, issueID uuid.UUID, op Operation) (AuthResult, error) {
	chain, err := g.store.FindIssueWithChain(ctx, issueID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("authorize issue %s: %w", issueID, err)
	}
	if chain == nil {
		return AuthResult{Decision: DecisionNotFound, Operation: op}, nil
	}
	return g.decide(ctx, userID, chain.Project.ID, op)
}

func (g *Guard) decide(ctx context.Context, userID, projectID uuid.UUID, op Operation) (AuthResult, error) {
	res, err := g.resolver.Resolve(ctx, userID, projectID)
	if err != nil {
		return AuthResult{}, err
	}

	result := AuthResult{Operation: op, ProjectID: projectID}
	role, ok := RoleOf(res)
	if !ok {
		result.Decision = DecisionDenied
		result.Reason = ReasonNotAMember
		return result, nil
	}

	result.Role = role
	if !g.table.IsAllowed(role, op) {
		result.Decision = DecisionDenied
		result.Reason = ReasonInsufficientPermission
		return result, nil
	}
	result.Decision = DecisionAuthorized
	return result, nil
}

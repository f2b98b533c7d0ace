package repository

import "errors"

// Common repository errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrPendingNotFound    = errors.New("pending registration not found")
	ErrResetNotFound      = errors.New("password reset not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrBoardNotFound      = errors.New("board not found")
	ErrColumnNotFound     = errors.New("column not found")
	ErrIssueNotFound      = errors.New("issue not found")
	ErrLabelNotFound      = errors.New("label not found")
	ErrMembershipNotFound = errors.New("membership not found")

	// ErrAlreadyMember is returned when the user already holds a membership row.
	ErrAlreadyMember = errors.New("user is already a member of this project")
	// ErrAlreadyOwner is returned when the target user owns the project.
	ErrAlreadyOwner = errors.New("user is already the owner of this project")
	// ErrInvalidMemberRole is returned for roles that cannot sit on a membership row.
	ErrInvalidMemberRole = errors.New("role cannot be assigned to a member")
	// ErrOwnerRoleImmutable guards the owner against role changes and removal.
	ErrOwnerRoleImmutable = errors.New("the project owner's role cannot be changed or removed")
	ErrOwnerCannotLeave   = errors.New("the project owner cannot leave the project")
	ErrNotProjectOwner    = errors.New("user does not own this project")

	// ErrReorderMismatch is returned when a reorder request does not name
	// exactly the board's columns.
	ErrReorderMismatch    = errors.New("column list does not match the board's columns")
	ErrCrossBoardMove     = errors.New("target column is on a different board")
	ErrLabelBoardMismatch = errors.New("label belongs to a different board")
)

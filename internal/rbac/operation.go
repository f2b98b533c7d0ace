package rbac

import "fmt"

// Operation names a protected action.
type Operation int

const (
	OpProjectRead Operation = iota + 1
	OpProjectUpdate
	OpProjectDelete
	OpProjectManageMembers
	OpProjectTransferOwnership
	OpBoardRead
	OpBoardCreate
	OpBoardUpdate
	OpBoardDelete
	OpColumnCreate
	OpColumnUpdate
	OpColumnDelete
	OpColumnReorder
	OpIssueRead
	OpIssueCreate
	OpIssueUpdate
	OpIssueDelete
	OpIssueAssign
	OpIssueMove
	OpLabelManage

	// operationLimit sizes the permission table; keep it last.
	operationLimit
)

var operationNames = [operationLimit]string{
	OpProjectRead:              "PROJECT_READ",
	OpProjectUpdate:            "PROJECT_UPDATE",
	OpProjectDelete:            "PROJECT_DELETE",
	OpProjectManageMembers:     "PROJECT_MANAGE_MEMBERS",
	OpProjectTransferOwnership: "PROJECT_TRANSFER_OWNERSHIP",
	OpBoardRead:                "BOARD_READ",
	OpBoardCreate:              "BOARD_CREATE",
	OpBoardUpdate:              "BOARD_UPDATE",
	OpBoardDelete:              "BOARD_DELETE",
	OpColumnCreate:             "COLUMN_CREATE",
	OpColumnUpdate:             "COLUMN_UPDATE",
	OpColumnDelete:             "COLUMN_DELETE",
	OpColumnReorder:            "COLUMN_REORDER",
	OpIssueRead:                "ISSUE_READ",
	OpIssueCreate:              "ISSUE_CREATE",
	OpIssueUpdate:              "ISSUE_UPDATE",
	OpIssueDelete:              "ISSUE_DELETE",
	OpIssueAssign:              "ISSUE_ASSIGN",
	OpIssueMove:                "ISSUE_MOVE",
	OpLabelManage:              "LABEL_MANAGE",
}

// Operations returns every defined operation in declaration order.
func Operations() []Operation {
	ops := make([]Operation, 0, operationLimit-1)
	for op := OpProjectRead; op < operationLimit; op++ {
		ops = append(ops, op)
	}
	return ops
}

func (op Operation) Valid() bool {
	return op >= OpProjectRead && op < operationLimit
}

func (op Operation) String() string {
	if op.Valid() {
		return operationNames[op]
	}
	return fmt.Sprintf("Operation(%d)", int(op))
}

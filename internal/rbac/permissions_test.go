package rbac_test

import (
	"testing"

	"projecthub/internal/rbac"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPermissions_CoversEveryOperation(t *testing.T) {
	table := rbac.DefaultPermissions()
	for _, op := range rbac.Operations() {
		assert.NotEmpty(t, table.Allowed(op), "operation %s has no allowed roles", op)
		assert.True(t, table.IsAllowed(rbac.RoleOwner, op), "owner should be allowed %s", op)
	}
}

func TestDefaultPermissions_NotARankThreshold(t *testing.T) {
	table := rbac.DefaultPermissions()

	assert.False(t, table.IsAllowed(rbac.RoleDeveloper, rbac.OpProjectUpdate))
	assert.False(t, table.IsAllowed(rbac.RoleDeveloper, rbac.OpProjectDelete))

	assert.True(t, table.IsAllowed(rbac.RoleAdmin, rbac.OpProjectUpdate))
	assert.False(t, table.IsAllowed(rbac.RoleAdmin, rbac.OpProjectDelete))

	assert.Equal(t, []rbac.Role{rbac.RoleOwner}, table.Allowed(rbac.OpProjectDelete))
	assert.Equal(t, []rbac.Role{rbac.RoleAdmin, rbac.RoleOwner}, table.Allowed(rbac.OpProjectUpdate))
}

func TestDefaultPermissions_Matrix(t *testing.T) {
	table := rbac.DefaultPermissions()
	tests := []struct {
		op     rbac.Operation
		viewer bool
		dev    bool
		admin  bool
	}{
		{rbac.OpProjectRead, true, true, true},
		{rbac.OpProjectManageMembers, false, false, true},
		{rbac.OpProjectTransferOwnership, false, false, false},
		{rbac.OpBoardRead, true, true, true},
		{rbac.OpBoardCreate, false, true, true},
		{rbac.OpBoardDelete, false, false, true},
		{rbac.OpIssueRead, true, true, true},
		{rbac.OpIssueCreate, false, true, true},
		{rbac.OpIssueMove, false, true, true},
		{rbac.OpIssueAssign, false, true, true},
		{rbac.OpIssueDelete, false, false, true},
		{rbac.OpColumnReorder, false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.viewer, table.IsAllowed(rbac.RoleViewer, tt.op))
			assert.Equal(t, tt.dev, table.IsAllowed(rbac.RoleDeveloper, tt.op))
			assert.Equal(t, tt.admin, table.IsAllowed(rbac.RoleAdmin, tt.op))
		})
	}
}

func TestPermissionTable_AbsentOperationDenies(t *testing.T) {
	table, err := rbac.NewPermissionTable(map[rbac.Operation][]rbac.Role{
		rbac.OpProjectRead: {rbac.RoleViewer},
	})
	require.NoError(t, err)

	assert.True(t, table.IsAllowed(rbac.RoleViewer, rbac.OpProjectRead))
	assert.False(t, table.IsAllowed(rbac.RoleOwner, rbac.OpProjectDelete))
	assert.False(t, table.IsAllowed(rbac.RoleOwner, rbac.Operation(0)))
	assert.False(t, table.IsAllowed(rbac.RoleOwner, rbac.Operation(1000)))
	assert.False(t, table.IsAllowed(rbac.Role(0), rbac.OpProjectRead))

	var zero rbac.PermissionTable
	assert.False(t, zero.IsAllowed(rbac.RoleOwner, rbac.OpProjectRead))
}

func TestPermissionTable_SkipsRank(t *testing.T) {
	// Viewer-only operations must be expressible even though the default
	// table has none.
	table, err := rbac.NewPermissionTable(map[rbac.Operation][]rbac.Role{
		rbac.OpIssueRead: {rbac.RoleViewer, rbac.RoleOwner},
	})
	require.NoError(t, err)

	assert.True(t, table.IsAllowed(rbac.RoleViewer, rbac.OpIssueRead))
	assert.False(t, table.IsAllowed(rbac.RoleDeveloper, rbac.OpIssueRead))
	assert.False(t, table.IsAllowed(rbac.RoleAdmin, rbac.OpIssueRead))
	assert.True(t, table.IsAllowed(rbac.RoleOwner, rbac.OpIssueRead))
}

func TestNewPermissionTable_RejectsTypos(t *testing.T) {
	_, err := rbac.NewPermissionTable(map[rbac.Operation][]rbac.Role{
		rbac.OpProjectRead: {rbac.Role(7)},
	})
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)

	_, err = rbac.NewPermissionTable(map[rbac.Operation][]rbac.Role{
		rbac.Operation(999): {rbac.RoleOwner},
	})
	assert.Error(t, err)
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "PROJECT_DELETE", rbac.OpProjectDelete.String())
	assert.Equal(t, "ISSUE_MOVE", rbac.OpIssueMove.String())
	assert.Equal(t, "Operation(0)", rbac.Operation(0).String())
}

package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleUser, PermissionNotificationRead))
	assert.True(t, HasPermission(RoleUser, PermissionContractWrite))
	assert.False(t, HasPermission(RoleUser, PermissionNotificationCleanup))

	assert.True(t, HasPermission(RoleAdmin, PermissionNotificationCleanup))

	assert.False(t, HasPermission("guest", PermissionNotificationRead))
	assert.False(t, HasPermission("", PermissionNotificationRead))
}

func TestCheckPermission(t *testing.T) {
	require.NoError(t, CheckPermission(RoleAdmin, PermissionNotificationCleanup))

	err := CheckPermission(RoleUser, PermissionNotificationCleanup)
	require.Error(t, err)

	var denied *PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, RoleUser, denied.Role)
	assert.Equal(t, PermissionNotificationCleanup, denied.Permission)
	assert.Equal(t, "insufficient permissions", err.Error())
}

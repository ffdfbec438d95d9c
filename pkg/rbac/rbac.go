package rbac

// Permissions guarding sensitive operations.
const (
	PermissionNotificationRead    = "notification:read"
	PermissionNotificationUpdate  = "notification:update"
	PermissionNotificationDelete  = "notification:delete"
	PermissionNotificationCleanup = "notification:cleanup"

	PermissionContractWrite = "contract:write"
	PermissionLicenseWrite  = "license:write"
)

// Roles carried in the token principal.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var rolePermissions = map[string][]string{
	RoleUser: {
		PermissionNotificationRead,
		PermissionNotificationUpdate,
		PermissionNotificationDelete,
		PermissionContractWrite,
		PermissionLicenseWrite,
	},
	RoleAdmin: {
		PermissionNotificationRead,
		PermissionNotificationUpdate,
		PermissionNotificationDelete,
		PermissionNotificationCleanup,
		PermissionContractWrite,
		PermissionLicenseWrite,
	},
}

// HasPermission checks whether a role grants a permission.
func HasPermission(role string, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission returns a PermissionDeniedError when the role lacks
// the permission.
func CheckPermission(role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}

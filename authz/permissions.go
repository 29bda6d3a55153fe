package authz

// Role is an application-level role stored on the users table
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
	RoleFinance Role = "finance"

	// RoleAPIKey is the synthetic role assigned to API key requests
	RoleAPIKey Role = "api_key"
)

// Action is something a user can do to a resource
type Action string

const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve" // timesheet approval, invoice send
	ActionExport  Action = "export"
	ActionManage  Action = "manage" // user roles, rule toggles
)

// PermissionMatrix maps roles to their allowed actions
type PermissionMatrix map[Role]map[Action]bool

// CorePermissions governs clients, projects, resources and timesheets
var CorePermissions = PermissionMatrix{
	RoleAdmin: {
		ActionView:    true,
		ActionCreate:  true,
		ActionUpdate:  true,
		ActionDelete:  true,
		ActionApprove: true,
		ActionExport:  true,
		ActionManage:  true,
	},
	RoleManager: {
		ActionView:    true,
		ActionCreate:  true,
		ActionUpdate:  true,
		ActionDelete:  false,
		ActionApprove: true,
		ActionExport:  true,
		ActionManage:  false,
	},
	RoleMember: {
		ActionView:    true,
		ActionCreate:  true, // members log their own timesheets
		ActionUpdate:  false,
		ActionDelete:  false,
		ActionApprove: false,
		ActionExport:  false,
		ActionManage:  false,
	},
	RoleFinance: {
		ActionView:    true,
		ActionCreate:  false,
		ActionUpdate:  false,
		ActionDelete:  false,
		ActionApprove: false,
		ActionExport:  true,
		ActionManage:  false,
	},
	RoleAPIKey: {
		ActionView:   true,
		ActionCreate: true,
		ActionExport: true,
	},
}

// FinancePermissions governs invoices and financial exports
var FinancePermissions = PermissionMatrix{
	RoleAdmin: {
		ActionView:    true,
		ActionCreate:  true,
		ActionUpdate:  true,
		ActionDelete:  true,
		ActionApprove: true,
		ActionExport:  true,
		ActionManage:  true,
	},
	RoleManager: {
		ActionView:   true,
		ActionExport: true,
	},
	RoleFinance: {
		ActionView:    true,
		ActionCreate:  true,
		ActionUpdate:  true,
		ActionDelete:  false,
		ActionApprove: true,
		ActionExport:  true,
	},
	RoleMember: {},
	RoleAPIKey: {
		ActionView: true,
	},
}

// HasPermission checks if a role can perform an action in the given matrix
func HasPermission(matrix PermissionMatrix, role Role, action Action) bool {
	perms, ok := matrix[role]
	if !ok {
		return false
	}
	return perms[action]
}

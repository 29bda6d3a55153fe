package authz

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name   string
		matrix PermissionMatrix
		role   Role
		action Action
		want   bool
	}{
		// Admin has everything
		{"admin can view", CorePermissions, RoleAdmin, ActionView, true},
		{"admin can create", CorePermissions, RoleAdmin, ActionCreate, true},
		{"admin can delete", CorePermissions, RoleAdmin, ActionDelete, true},
		{"admin can manage", CorePermissions, RoleAdmin, ActionManage, true},

		// Manager runs delivery but can't delete or manage users
		{"manager can view", CorePermissions, RoleManager, ActionView, true},
		{"manager can approve", CorePermissions, RoleManager, ActionApprove, true},
		{"manager cannot delete", CorePermissions, RoleManager, ActionDelete, false},
		{"manager cannot manage", CorePermissions, RoleManager, ActionManage, false},

		// Members log time, nothing more
		{"member can view", CorePermissions, RoleMember, ActionView, true},
		{"member can create", CorePermissions, RoleMember, ActionCreate, true},
		{"member cannot update", CorePermissions, RoleMember, ActionUpdate, false},
		{"member cannot approve", CorePermissions, RoleMember, ActionApprove, false},

		// Finance is read-only on delivery data
		{"finance can view core", CorePermissions, RoleFinance, ActionView, true},
		{"finance cannot create core", CorePermissions, RoleFinance, ActionCreate, false},
		{"finance can export", CorePermissions, RoleFinance, ActionExport, true},

		// Finance owns invoices
		{"finance can create invoices", FinancePermissions, RoleFinance, ActionCreate, true},
		{"finance can approve invoices", FinancePermissions, RoleFinance, ActionApprove, true},
		{"finance cannot delete invoices", FinancePermissions, RoleFinance, ActionDelete, false},
		{"manager is read-only on invoices", FinancePermissions, RoleManager, ActionCreate, false},
		{"member has no invoice access", FinancePermissions, RoleMember, ActionView, false},

		// Unknown role
		{"unknown role denied", CorePermissions, Role("intern"), ActionView, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HasPermission(tt.matrix, tt.role, tt.action)
			if got != tt.want {
				t.Errorf("HasPermission(%v, %v) = %v, want %v", tt.role, tt.action, got, tt.want)
			}
		})
	}
}

// evaluator.go
//
// Record store and permission service for the RealE-Market real estate CRM
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of crmdb.
// crmdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// crmdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with crmdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package permissions

// Default role names
const (
	DefaultSuperAdminRole = "Administrator"
	DefaultDefaultRole    = "Admin"
)

// Evaluator decides whether a role may perform an action on a module. It
// holds no matrix state: callers pass the current snapshot on every check so
// edits made on the permissions screen apply to the next request.
type Evaluator struct {
	// SuperAdminRole bypasses the matrix entirely
	SuperAdminRole string
	// DefaultRole is looked up when a user has no role
	DefaultRole string
}

// NewEvaluator returns an Evaluator, filling empty role names with defaults
func NewEvaluator(superAdminRole, defaultRole string) Evaluator {
	if superAdminRole == "" {
		superAdminRole = DefaultSuperAdminRole
	}
	if defaultRole == "" {
		defaultRole = DefaultDefaultRole
	}
	return Evaluator{SuperAdminRole: superAdminRole, DefaultRole: defaultRole}
}

// Can reports whether role may perform action on module under m
func (e Evaluator) Can(m Matrix, role, module string, action Action) bool {
	if role == e.SuperAdminRole {
		return true
	}
	if role == "" {
		role = e.DefaultRole
	}
	return m.Lookup(role, module).Allows(action)
}

// EffectiveRole is the matrix row a user's checks would read. The super
// admin and users without a role both map to the default role.
func (e Evaluator) EffectiveRole(role string) string {
	if role == "" || role == e.SuperAdminRole {
		return e.DefaultRole
	}
	return role
}

// Access returns all four flags for role on module
func (e Evaluator) Access(m Matrix, role, module string) Grant {
	if role == e.SuperAdminRole {
		return all
	}
	if role == "" {
		role = e.DefaultRole
	}
	return m.Lookup(role, module)
}

// CanManage reports whether role may edit the permission matrix itself
func (e Evaluator) CanManage(role string) bool {
	return role == e.SuperAdminRole || role == e.DefaultRole
}

package permissions

import (
	"fmt"
	"sort"
	"strings"
)

// Action is one of the four gated operations on a module
type Action string

const (
	View   Action = "view"
	Create Action = "create"
	Edit   Action = "edit"
	Delete Action = "delete"
)

// Actions lists every action in display order
var Actions = []Action{View, Create, Edit, Delete}

// ParseAction converts a request value to an Action
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case View, Create, Edit, Delete:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Module names, the unit of permission granularity
const (
	Properties     = "Properties"
	Inquiries      = "Inquiries"
	Deals          = "Deals"
	Contacts       = "Contacts"
	Loans          = "Loans"
	Tasks          = "Tasks"
	Projects       = "Projects"
	Users          = "Users"
	Settings       = "Settings"
	PaymentDetails = "PaymentDetails"
	Bookings       = "Bookings"
)

// Modules lists every module the permissions screen shows
var Modules = []string{
	Properties, Inquiries, Deals, Contacts, Loans, Tasks,
	Projects, Users, Settings, PaymentDetails, Bookings,
}

// Grant is the set of allowed actions for one role on one module
type Grant struct {
	View   bool `json:"view"`
	Create bool `json:"create"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// Allows reports whether a is granted
func (g Grant) Allows(a Action) bool {
	switch a {
	case View:
		return g.View
	case Create:
		return g.Create
	case Edit:
		return g.Edit
	case Delete:
		return g.Delete
	}
	return false
}

// With returns g with a set to value
func (g Grant) With(a Action, value bool) Grant {
	switch a {
	case View:
		g.View = value
	case Create:
		g.Create = value
	case Edit:
		g.Edit = value
	case Delete:
		g.Delete = value
	}
	return g
}

// all grants every action
var all = Grant{View: true, Create: true, Edit: true, Delete: true}

// Matrix maps role -> module -> grant
type Matrix map[string]map[string]Grant

// Lookup returns the grant for role on module. A missing role or module
// yields the zero Grant, which denies everything.
func (m Matrix) Lookup(role, module string) Grant {
	modules, ok := m[role]
	if !ok {
		return Grant{}
	}
	return modules[module]
}

// Clone deep-copies the matrix
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for role, modules := range m {
		copied := make(map[string]Grant, len(modules))
		for module, grant := range modules {
			copied[module] = grant
		}
		out[role] = copied
	}
	return out
}

// Set returns a copy of m with one action toggled. Missing role and module
// entries are created with every other action false.
func (m Matrix) Set(role, module string, a Action, value bool) Matrix {
	out := m.Clone()
	modules, ok := out[role]
	if !ok {
		modules = make(map[string]Grant)
		out[role] = modules
	}
	modules[module] = modules[module].With(a, value)
	return out
}

// Roles returns the roles present in the matrix, sorted
func (m Matrix) Roles() []string {
	roles := make([]string, 0, len(m))
	for role := range m {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// Package rbac resolves admin panel permissions from a user's role.
//
// Roles are totally ordered: viewer < editor < admin < super_admin. Every
// function in this package is pure and fails closed: an empty or unknown
// role is never granted anything.
package rbac

import "strings"

// Role is the role attribute of a user record
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// hierarchy lists the roles from lowest to highest
var hierarchy = []Role{RoleViewer, RoleEditor, RoleAdmin, RoleSuperAdmin}

var labels = map[Role]string{
	RoleViewer:     "Viewer",
	RoleEditor:     "Editor",
	RoleAdmin:      "Administrator",
	RoleSuperAdmin: "Super administrator",
}

// Roles returns the role hierarchy from lowest to highest
func Roles() []Role {
	out := make([]Role, len(hierarchy))
	copy(out, hierarchy)
	return out
}

// ParseRole converts a stored role string. Matching ignores case and
// surrounding spaces.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r.level() < 0 {
		return "", false
	}
	return r, true
}

// Valid reports whether r is one of the four known roles
func (r Role) Valid() bool {
	return r.level() >= 0
}

// Label returns the human readable role name
func (r Role) Label() string {
	if label, ok := labels[r]; ok {
		return label
	}
	return "Unknown"
}

func (r Role) level() int {
	for i, role := range hierarchy {
		if role == r {
			return i
		}
	}
	return -1
}

// HasMinimumRole reports whether role ranks at or above minRole
func HasMinimumRole(role, minRole Role) bool {
	level := role.level()
	minLevel := minRole.level()
	if level < 0 || minLevel < 0 {
		return false
	}
	return level >= minLevel
}

// IsRoleAllowed reports whether role is a member of allowed
func IsRoleAllowed(role Role, allowed []Role) bool {
	if !role.Valid() {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Capabilities are the boolean flags the admin UI switches on
type Capabilities struct {
	CanView           bool `json:"canView"`
	CanWrite          bool `json:"canWrite"`
	CanPublish        bool `json:"canPublish"`
	CanDelete         bool `json:"canDelete"`
	CanManageGallery  bool `json:"canManageGallery"`
	CanManageUsers    bool `json:"canManageUsers"`
	CanManageSettings bool `json:"canManageSettings"`
}

// CapabilitiesFor derives the capability flags of role
func CapabilitiesFor(role Role) Capabilities {
	return Capabilities{
		CanView:           HasMinimumRole(role, RoleViewer),
		CanWrite:          HasMinimumRole(role, RoleEditor),
		CanPublish:        HasMinimumRole(role, RoleEditor),
		CanDelete:         HasMinimumRole(role, RoleAdmin),
		CanManageGallery:  HasMinimumRole(role, RoleAdmin),
		CanManageUsers:    HasMinimumRole(role, RoleSuperAdmin),
		CanManageSettings: HasMinimumRole(role, RoleSuperAdmin),
	}
}

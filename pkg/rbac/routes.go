package rbac

import (
	"fmt"
	"strings"
)

// RoutePermission guards an admin route prefix. When AllowedRoles is set it
// replaces the MinRole check. Exact rules only match the path itself.
type RoutePermission struct {
	Path         string `json:"path"`
	MinRole      Role   `json:"minRole"`
	AllowedRoles []Role `json:"allowedRoles,omitempty"`
	Exact        bool   `json:"exact,omitempty"`
}

// AccessDecision is the outcome of CanAccessRoute
type AccessDecision struct {
	Allowed      bool   `json:"allowed"`
	RequiredRole Role   `json:"requiredRole"`
	Message      string `json:"message,omitempty"`
}

// DefaultRole is required on paths no rule covers
const DefaultRole = RoleAdmin

// routePermissions is scanned in order and the first match wins, so nested
// prefixes must come before their parents.
var routePermissions = []RoutePermission{
	{Path: "/admin/users", MinRole: RoleSuperAdmin},
	{Path: "/admin/settings", MinRole: RoleSuperAdmin},
	{Path: "/admin/cache", MinRole: RoleAdmin, AllowedRoles: []Role{RoleAdmin, RoleSuperAdmin}},
	{Path: "/admin/blog", MinRole: RoleViewer},
	{Path: "/admin/events", MinRole: RoleViewer},
	{Path: "/admin/jobs", MinRole: RoleViewer},
	{Path: "/admin/gallery", MinRole: RoleViewer},
	{Path: "/admin/registrations", MinRole: RoleEditor},
	{Path: "/admin/contacts", MinRole: RoleEditor},
	{Path: "/admin/partnerships", MinRole: RoleEditor},
	{Path: "/admin", MinRole: RoleViewer, Exact: true},
}

// RoutePermissions returns a copy of the ordered rule table
func RoutePermissions() []RoutePermission {
	out := make([]RoutePermission, len(routePermissions))
	copy(out, routePermissions)
	return out
}

// GetRoutePermission returns the first rule covering path, or a rule
// requiring DefaultRole when none does.
func GetRoutePermission(path string) RoutePermission {
	return matchRoute(routePermissions, path)
}

func matchRoute(rules []RoutePermission, path string) RoutePermission {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	for _, rule := range rules {
		if path == rule.Path {
			return rule
		}
		if !rule.Exact && strings.HasPrefix(path, rule.Path+"/") {
			return rule
		}
	}
	return RoutePermission{Path: path, MinRole: DefaultRole}
}

// CanAccessRoute decides whether role may open path
func CanAccessRoute(role Role, path string) AccessDecision {
	rule := GetRoutePermission(path)

	var allowed bool
	if len(rule.AllowedRoles) > 0 {
		allowed = IsRoleAllowed(role, rule.AllowedRoles)
	} else {
		allowed = HasMinimumRole(role, rule.MinRole)
	}

	decision := AccessDecision{Allowed: allowed, RequiredRole: rule.MinRole}
	if !allowed {
		decision.Message = fmt.Sprintf("Access denied: this section requires the %s role or higher.", rule.MinRole.Label())
	}
	return decision
}

// Package access is the single source of truth for who may see what: the
// role enumeration, the guarded route table with its allow-lists, and the
// pure guard decision functions shared by the CLI navigation surface and the
// server route table. Guards never return errors; an unauthorized navigation
// resolves to a redirect decision, not a failure.
package access

// Session is the authentication state a guard decides against.
type Session interface {
	IsAuthenticated() bool
	Role() Role
}

// Decision is the terminal outcome of evaluating a guard for a navigation.
type Decision int

const (
	// Grant renders the requested view.
	Grant Decision = iota
	// RedirectLogin sends the visitor to the anonymous entry point.
	RedirectLogin
	// RedirectDashboard soft-redirects an authenticated visitor whose role is
	// not allowed to the generic landing page. Deliberately not an error.
	RedirectDashboard
)

func (d Decision) String() string {
	switch d {
	case Grant:
		return "grant"
	case RedirectLogin:
		return "redirect-login"
	case RedirectDashboard:
		return "redirect-dashboard"
	default:
		return "unknown"
	}
}

// Client-side route table.
const (
	RouteLogin               = "/login"
	RouteRegister            = "/register"
	RouteDashboard           = "/dashboard"
	RouteDashboardAdmin      = "/dashboard/admin"
	RouteDashboardHotel      = "/dashboard/hotel"
	RouteDashboardRestaurant = "/dashboard/restaurant"
	RouteDashboardClient     = "/dashboard/client"
)

// dashboards maps each role to its dedicated dashboard route. Roles without a
// dedicated dashboard (couriers) land on the generic one.
var dashboards = map[Role]string{
	RoleAdmin:             RouteDashboardAdmin,
	RoleHotelManager:      RouteDashboardHotel,
	RoleRestaurantManager: RouteDashboardRestaurant,
	RoleClient:            RouteDashboardClient,
}

// DashboardRoute returns the dashboard route for a role. Both the guard
// policies and the navigation renderer consume this mapping, so a navigation
// link can never point at a route whose guard would reject the role.
func DashboardRoute(role Role) string {
	if route, ok := dashboards[role]; ok {
		return route
	}
	return RouteDashboard
}

// policies holds the allow-list for every role-restricted route. A route
// absent from this table is either public or authenticated-only.
var policies = map[string][]Role{
	RouteDashboardAdmin:      {RoleAdmin},
	RouteDashboardHotel:      {RoleHotelManager},
	RouteDashboardRestaurant: {RoleRestaurantManager},
	RouteDashboardClient:     {RoleClient},
}

// AllowedRoles returns the allow-list for a role-restricted route, or false
// when the route carries no role restriction.
func AllowedRoles(route string) ([]Role, bool) {
	allowed, ok := policies[route]
	return allowed, ok
}

// Authenticated is the authenticated-only guard: render for any
// authenticated session, otherwise back to login.
func Authenticated(s Session) Decision {
	if !s.IsAuthenticated() {
		return RedirectLogin
	}
	return Grant
}

// ForRoles is the role-restricted guard. The authentication check strictly
// precedes the role check: an anonymous session is always sent to login,
// never to the generic dashboard, regardless of the allow-list.
func ForRoles(s Session, allowed ...Role) Decision {
	if !s.IsAuthenticated() {
		return RedirectLogin
	}
	for _, role := range allowed {
		if s.Role() == role {
			return Grant
		}
	}
	return RedirectDashboard
}

// Evaluate resolves a navigation to route into a decision plus the route the
// visitor actually ends up on.
func Evaluate(s Session, route string) (Decision, string) {
	if allowed, restricted := AllowedRoles(route); restricted {
		switch d := ForRoles(s, allowed...); d {
		case RedirectLogin:
			return d, RouteLogin
		case RedirectDashboard:
			return d, RouteDashboard
		default:
			return d, route
		}
	}
	if route == RouteDashboard {
		if d := Authenticated(s); d == RedirectLogin {
			return d, RouteLogin
		}
	}
	return Grant, route
}

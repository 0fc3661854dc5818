package access

// Link is a navigation entry shown by the navigation surface.
type Link struct {
	Label string
	Route string
}

// Links returns the navigation entries appropriate for the session: the
// role's dashboard link when authenticated, login/register affordances when
// anonymous. Pure function of session state.
func Links(s Session) []Link {
	if !s.IsAuthenticated() {
		return []Link{
			{Label: "Login", Route: RouteLogin},
			{Label: "Register", Route: RouteRegister},
		}
	}

	links := []Link{{Label: "Dashboard", Route: RouteDashboard}}
	if route, ok := dashboards[s.Role()]; ok {
		links = append(links, Link{Label: dashboardLabel(s.Role()), Route: route})
	}
	return links
}

func dashboardLabel(role Role) string {
	switch role {
	case RoleAdmin:
		return "Admin dashboard"
	case RoleHotelManager:
		return "Hotel dashboard"
	case RoleRestaurantManager:
		return "Restaurant dashboard"
	case RoleClient:
		return "My bookings"
	default:
		return "Dashboard"
	}
}

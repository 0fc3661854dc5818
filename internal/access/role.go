package access

// Role is the access-level tag assigned server-side at registration. The
// server derives it from verified token claims on every privileged call;
// clients treat their stored copy as a display cache only.
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleHotelManager      Role = "hotel_manager"
	RoleRestaurantManager Role = "restaurant_manager"
	RoleClient            Role = "client"
	RoleDeliveryPerson    Role = "delivery_person"
)

// Roles lists every known role tag.
var Roles = []Role{
	RoleAdmin,
	RoleHotelManager,
	RoleRestaurantManager,
	RoleClient,
	RoleDeliveryPerson,
}

// Valid reports whether r is a known role tag.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ManagerRoles are the roles allowed through the manager login and
// registration flows.
var ManagerRoles = []Role{RoleHotelManager, RoleRestaurantManager}

// StaffRoles may validate payment QR codes on site.
var StaffRoles = []Role{RoleAdmin, RoleHotelManager, RoleRestaurantManager}

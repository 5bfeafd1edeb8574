package domain

// Role is the closed set of principals the dashboard knows about. The backend
// echoes the role back as a plain string on login; everything role-dependent in
// this module goes through the capability table below instead of comparing
// strings in views.
type Role string

const (
	RoleOwner            Role = "owner"
	RoleAdmin            Role = "admin"
	RoleOperationalAdmin Role = "operational_admin"
	RoleDriver           Role = "driver"
)

// Capability is a single dashboard action a role may perform.
type Capability string

const (
	CapEnrollDrivers  Capability = "drivers.enroll"
	CapViewOwnDrivers Capability = "drivers.view_own"
	CapManageFleet    Capability = "fleet.manage"
	CapViewOwnRides   Capability = "rides.view_own"
	CapEditProfile    Capability = "profile.edit"

	CapManageAllDrivers Capability = "drivers.manage_all"
	CapManageAllRides   Capability = "rides.manage_all"
	CapViewUsers        Capability = "users.view"
	CapAppointOpAdmins  Capability = "opadmins.appoint"
)

// roleCapabilities is the single source of truth for role-gated behaviour.
// Operational admins share the admin dashboard but cannot appoint further
// operational admins. Drivers are managed entities, not dashboard users.
var roleCapabilities = map[Role][]Capability{
	RoleOwner: {
		CapEnrollDrivers,
		CapViewOwnDrivers,
		CapManageFleet,
		CapViewOwnRides,
		CapEditProfile,
	},
	RoleAdmin: {
		CapManageAllDrivers,
		CapManageAllRides,
		CapViewUsers,
		CapAppointOpAdmins,
	},
	RoleOperationalAdmin: {
		CapManageAllDrivers,
		CapManageAllRides,
		CapViewUsers,
	},
	RoleDriver: {},
}

// ParseRole maps the backend's role string onto the closed enum. The backend
// has historically spelled operational admins a few different ways.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "owner":
		return RoleOwner, true
	case "admin":
		return RoleAdmin, true
	case "operational_admin", "operationalAdmin", "operational admin":
		return RoleOperationalAdmin, true
	case "driver":
		return RoleDriver, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

func (r Role) Can(c Capability) bool {
	for _, have := range roleCapabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}

// DashboardPath returns the dashboard this role lands on after login, or ""
// when the role has no dashboard at all.
func (r Role) DashboardPath() string {
	switch r {
	case RoleOwner:
		return "/owner"
	case RoleAdmin, RoleOperationalAdmin:
		return "/admin"
	default:
		return ""
	}
}

package domain

import "strings"

// Sections of the application that can be gated by a permission tag.
const (
	SectionDashboard = "dashboard"
	SectionProducts  = "products"
	SectionOrders    = "orders"
	SectionSales     = "sales"
	SectionReports   = "reports"
	SectionSettings  = "settings"

	PermissionAll = "all"
)

// User is what the authentication collaborator hands to the core.
type User struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func (u *User) HasPermission(permission string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Permissions {
		if p == PermissionAll || p == permission {
			return true
		}
	}
	return false
}

// CanAccess reports whether user may reach section. The dashboard only
// requires a signed-in user.
func CanAccess(user *User, section string) bool {
	if user == nil {
		return false
	}
	if section == SectionDashboard {
		return true
	}
	return user.HasPermission(section)
}

// CanView is CanAccess widened with the read-only "<section>:view" tag.
func CanView(user *User, section string) bool {
	if CanAccess(user, section) {
		return true
	}
	return user.HasPermission(strings.ToLower(section) + ":view")
}

package domain

// Roles known to the chat and moderation core. Buyer and seller are the
// two trading parties of a room; moderator and admin are staff.
const (
	RoleBuyer     = "buyer"
	RoleSeller    = "seller"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// StaffRoles are the roles allowed on the moderation surface.
var StaffRoles = []string{RoleModerator, RoleAdmin}

// Identity is the resolved subject of a verified bearer credential.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsStaff reports whether the identity holds a staff role.
func (i Identity) IsStaff() bool {
	return i.Role == RoleModerator || i.Role == RoleAdmin
}

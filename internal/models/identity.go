package models

// Role is the caller's resolved authorization role.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

// ParseRole converts a raw claim value into a known Role.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleUser, RoleModerator:
		return Role(raw), true
	}
	return "", false
}

// Identity is the already-resolved caller identity. Token verification happens
// upstream in the auth middleware; everything below it trusts these fields.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Package domain holds the catalog record types shared by the store, services and API.
package domain

// Privilege is a user's authorization level.
type Privilege string

const (
	// PrivilegeDefault may mutate only the records the user created.
	PrivilegeDefault Privilege = "default"
	// PrivilegeSuperuser may mutate every record.
	PrivilegeSuperuser Privilege = "superuser"
)

// Valid reports whether p is a known privilege.
func (p Privilege) Valid() bool {
	return p == PrivilegeDefault || p == PrivilegeSuperuser
}

// User is an identity verified by the external provider, keyed by email.
type User struct {
	Timestamps
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Privilege   Privilege `json:"privilege"`
}

// IsSuperuser reports whether the user holds blanket mutate rights.
func (u *User) IsSuperuser() bool {
	return u.Privilege == PrivilegeSuperuser
}

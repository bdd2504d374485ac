package identity

import "time"

// Role partitions portal users. Citizens submit applications, staff review
// them, officers additionally manage the service catalog and see everything.
type Role string

const (
	RoleOfficer Role = "officer"
	RoleStaff   Role = "staff"
	RoleCitizen Role = "citizen"
)

// Valid reports whether the role is one of the three known values.
func (r Role) Valid() bool {
	switch r {
	case RoleOfficer, RoleStaff, RoleCitizen:
		return true
	}
	return false
}

// Profile is the per-user record, 1:1 with the auth identity. Created on
// registration, mutated only via explicit update, never deleted.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credentials holds the password hash separately from the profile so profile
// reads never touch secrets.
type Credentials struct {
	UserID       string
	Email        string
	PasswordHash []byte
}

// Session models an authenticated portal session. DemoMode marks stand-in
// sessions issued when the backing store is unreachable or unconfigured.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Token     string    `json:"token"`
	Device    string    `json:"device,omitempty"`
	DemoMode  bool      `json:"demo_mode,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterRequest carries the registration form fields.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// ProfileUpdate carries the mutable profile fields; nil means leave as is.
type ProfileUpdate struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
}

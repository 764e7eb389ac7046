package model

import (
	"slices"
	"strings"
	"time"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Roles lists every role a principal may register with.
var Roles = []Role{RoleBuyer, RoleSeller, RoleAdmin}

func (r Role) Valid() bool { return slices.Contains(Roles, r) }

// Title is the capitalised role name, e.g. "Seller".
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// RequiresPhone reports whether identities of this role must carry a phone number.
func (r Role) RequiresPhone() bool {
	return r == RoleBuyer || r == RoleSeller
}

// Identity is a registered buyer, seller or admin. Each role lives in its
// own store, so uniqueness of email and username is per role.
type Identity struct {
	ID           string    `db:"id" json:"_id"`
	Name         string    `db:"name" json:"name"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	PhoneNumber  string    `db:"phone_number" json:"phoneNumber,omitempty"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Contact is the subset of an identity shown next to listings and
// appointments.
type Contact struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

func (i *Identity) Contact() *Contact {
	if i == nil {
		return nil
	}
	return &Contact{ID: i.ID, Name: i.Name, Email: i.Email, PhoneNumber: i.PhoneNumber}
}

// NormalizeHandle trims and lower-cases an email or username.
func NormalizeHandle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

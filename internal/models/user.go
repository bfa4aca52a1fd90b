package models

import "time"

// User is one account record. Email is stored lower-cased and serves as
// the logical uniqueness key; PartitionKey is the email domain, kept from
// the store's physical layout.
type User struct {
	ID           string     `db:"id" json:"id"`
	FirstName    string     `db:"first_name" json:"firstName"`
	LastName     string     `db:"last_name" json:"lastName"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin"`
	LoginCount   int        `db:"login_count" json:"loginCount"`
	PartitionKey string     `db:"partition_key" json:"partitionKey"`
}

// PublicUser is the client-facing shape of a User, with the password
// hash stripped. Every path that returns user data must go through
// Sanitize.
type PublicUser struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	LastLogin    *time.Time `json:"lastLogin"`
	LoginCount   int        `json:"loginCount"`
	PartitionKey string     `json:"partitionKey"`
}

// Sanitize returns a copy safe to send to a client.
func (u *User) Sanitize() PublicUser {
	return PublicUser{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastLogin:    u.LastLogin,
		LoginCount:   u.LoginCount,
		PartitionKey: u.PartitionKey,
	}
}

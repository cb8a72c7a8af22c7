package domain

import "time"

// AdminUser is a dashboard account. The password is stored only as a bcrypt
// hash and never serialized.
type AdminUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

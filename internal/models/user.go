package models

import "github.com/google/uuid"

// User is the profile projection attached to game views. Accounts themselves
// are owned by the auth service; this service only reads them.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

package domain

import "time"

// User is the domain model for registered accounts. Email doubles as the
// login identifier and the token subject.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

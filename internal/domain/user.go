package domain

import "time"

// User is the domain model for requesters who open tickets through the
// conversation flow.
type User struct {
	ID         string
	Name       string
	Email      string
	Role       string
	Department *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

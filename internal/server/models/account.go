package models

import "time"

// Account is a registered identity. It is looked up by the hash of the
// client's access key; the raw key never reaches the server.
type Account struct {
	ID          string
	KeyHash     string
	DisplayName string
	DateOfBirth *time.Time
	Gender      *string
	Purpose     *string
	CreatedAt   time.Time
	LastLoginAt *time.Time
}

package models

import "time"

// User is a login identity. LicensePlate is the plate registered for the user's car.
type User struct {
	PID          string    `json:"pid"`
	PasswordHash string    `json:"-"`
	LicensePlate string    `json:"license_plate"`
	CreatedAt    time.Time `json:"created_at"`
}

package model

import "time"

// Passenger types.
const (
	PassengerAdult  = "adult"
	PassengerChild  = "child"
	PassengerInfant = "infant"
)

// Passenger is a traveller saved under a user account.
//
// Fields:
//
//	DOB  – date of birth, YYYY-MM-DD.
//	Type – adult, child or infant.
type Passenger struct {
	ID          uint64    `json:"id"`           // passengers.id
	UserID      string    `json:"user_id"`      // passengers.user_id
	Name        string    `json:"name"`         // passengers.name
	DOB         string    `json:"dob"`          // passengers.dob
	Type        string    `json:"type"`         // passengers.type
	Email       string    `json:"email_id"`     // passengers.email
	CountryCode string    `json:"country_code"` // passengers.country_code
	PhoneNumber string    `json:"phone_number"` // passengers.phone_number
	CreatedAt   time.Time `json:"created_at"`   // passengers.created_at
}

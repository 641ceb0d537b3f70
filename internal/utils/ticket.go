package utils // package utils provides e-ticket signing and card fingerprint helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TicketClaims is the payload of a signed e-ticket. Gate agents and the
// verify endpoint only need the token to confirm which seats a booking holds
// on which flight.
type TicketClaims struct {
	BookingRef   string   `json:"booking_ref"`
	BookingID    uint64   `json:"booking_id"`
	FlightID     uint64   `json:"flight_id"`
	FlightNumber string   `json:"flight_number"`
	Seats        []string `json:"seats"`
	jwt.RegisteredClaims
}

// Ticket is a signed e-ticket together with its expiry.
type Ticket struct {
	Token string    `json:"token"`
	Exp   time.Time `json:"expires_at"`
}

// ErrInvalidTicket is returned for tokens that fail signature, expiry or
// issuer checks.
var ErrInvalidTicket = errors.New("invalid ticket")

const ticketIssuer = "flight-seat-booking"

// NewTicket signs an HS256 e-ticket for userID. The subject is the user id,
// the expiry is now + ttl.
func NewTicket(secret string, userID string, claims TicketClaims, ttl time.Duration) (Ticket, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    ticketIssuer,
		Subject:   userID,
		ID:        claims.BookingRef,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return Ticket{}, err
	}
	return Ticket{Token: signed, Exp: exp}, nil
}

// ParseTicket verifies token and returns its claims.
func ParseTicket(secret, token string) (*TicketClaims, error) {
	claims := &TicketClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ticketIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidTicket
	}
	return claims, nil
}

// Package payment validates card details and simulates a card charge. No
// gateway is contacted: a successful charge is a validated card plus a fixed
// processing delay.
package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/iliyamo/flight-seat-booking/internal/utils"
)

// Card is the payment form as submitted by the client.
type Card struct {
	Number         string `json:"card_number"`
	Expiry         string `json:"expiry_date"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholder_name"`
}

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

// Receipt is the outcome of a successful charge.
type Receipt struct {
	Reference   string    `json:"payment_ref"`
	Last4       string    `json:"card_last4"`
	CardHash    string    `json:"-"`
	Amount      float64   `json:"amount"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Validate checks card against now. Spaces in the card number are ignored.
func Validate(card Card, now time.Time) error {
	number := Digits(card.Number)
	if len(number) != 16 || number != strings.ReplaceAll(card.Number, " ", "") {
		return &ValidationError{Field: "card_number", Message: "must be 16 digits"}
	}
	if err := validateExpiry(card.Expiry, now); err != nil {
		return err
	}
	if len(card.CVV) != 3 || Digits(card.CVV) != card.CVV {
		return &ValidationError{Field: "cvv", Message: "must be 3 digits"}
	}
	if strings.TrimSpace(card.CardholderName) == "" {
		return &ValidationError{Field: "cardholder_name", Message: "is required"}
	}
	return nil
}

func validateExpiry(exp string, now time.Time) error {
	bad := &ValidationError{Field: "expiry_date", Message: "must be MM/YY"}
	if len(exp) != 5 || exp[2] != '/' {
		return bad
	}
	month, err1 := strconv.Atoi(exp[:2])
	year, err2 := strconv.Atoi(exp[3:])
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		return bad
	}
	// cards are valid through the last day of the expiry month
	expiresAt := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.Before(expiresAt) {
		return &ValidationError{Field: "expiry_date", Message: "card has expired"}
	}
	return nil
}

// Digits strips every non-digit rune.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber groups the digits of s in blocks of four, capped at 16.
func FormatCardNumber(s string) string {
	d := Digits(s)
	if len(d) > 16 {
		d = d[:16]
	}
	var parts []string
	for i := 0; i < len(d); i += 4 {
		end := min(i+4, len(d))
		parts = append(parts, d[i:end])
	}
	return strings.Join(parts, " ")
}

// FormatExpiry turns "1226" into "12/26" as the user types.
func FormatExpiry(s string) string {
	d := Digits(s)
	if len(d) > 4 {
		d = d[:4]
	}
	if len(d) > 2 {
		return d[:2] + "/" + d[2:]
	}
	return d
}

// Processor charges cards after a simulated delay.
type Processor struct {
	delay    time.Duration
	hashCost int
	now      func() time.Time
}

// NewProcessor returns a Processor that waits delay per charge and hashes
// card numbers with the given bcrypt cost.
func NewProcessor(delay time.Duration, hashCost int) *Processor {
	return &Processor{delay: delay, hashCost: hashCost, now: time.Now}
}

// Charge validates card and simulates processing amount. It returns early
// with ctx.Err() if ctx is done before the delay elapses.
func (p *Processor) Charge(ctx context.Context, card Card, amount float64) (Receipt, error) {
	if err := Validate(card, p.now()); err != nil {
		return Receipt{}, err
	}
	if amount < 0 {
		return Receipt{}, &ValidationError{Field: "amount", Message: "must not be negative"}
	}
	if p.delay > 0 {
		t := time.NewTimer(p.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		case <-t.C:
		}
	}

	number := Digits(card.Number)
	hash, err := utils.HashCardNumber(number, p.hashCost)
	if err != nil {
		return Receipt{}, fmt.Errorf("hash card: %w", err)
	}
	return Receipt{
		Reference:   uuid.NewString(),
		Last4:       number[len(number)-4:],
		CardHash:    hash,
		Amount:      amount,
		ProcessedAt: p.now().UTC(),
	}, nil
}

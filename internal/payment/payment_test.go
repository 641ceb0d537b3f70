package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/flight-seat-booking/internal/utils"
)

var now = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func validCard() Card {
	return Card{Number: "4111 1111 1111 1111", Expiry: "12/27", CVV: "123", CardholderName: "Ada Lovelace"}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		edit  func(*Card)
		field string
	}{
		{"valid", func(*Card) {}, ""},
		{"valid without spaces", func(c *Card) { c.Number = "4111111111111111" }, ""},
		{"short number", func(c *Card) { c.Number = "4111 1111 1111" }, "card_number"},
		{"letters in number", func(c *Card) { c.Number = "4111 1111 1111 111a" }, "card_number"},
		{"dashes in number", func(c *Card) { c.Number = "4111-1111-1111-1111" }, "card_number"},
		{"expiry without slash", func(c *Card) { c.Expiry = "1227" }, "expiry_date"},
		{"expiry month 13", func(c *Card) { c.Expiry = "13/27" }, "expiry_date"},
		{"expired", func(c *Card) { c.Expiry = "02/26" }, "expiry_date"},
		{"expires this month", func(c *Card) { c.Expiry = "03/26" }, ""},
		{"cvv too long", func(c *Card) { c.CVV = "1234" }, "cvv"},
		{"cvv letters", func(c *Card) { c.CVV = "12a" }, "cvv"},
		{"blank holder", func(c *Card) { c.CardholderName = "  " }, "cardholder_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCard()
			tt.edit(&c)
			err := Validate(c, now)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestFormatting(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "4111 1111 1111 1111", FormatCardNumber("4111111111111111"))
	assert.Equal(t, "4111 11", FormatCardNumber("4111-11"))
	assert.Equal(t, "4111 1111 1111 1111", FormatCardNumber("41111111111111119999"))
	assert.Equal(t, "12/2", FormatExpiry("122"))
	assert.Equal(t, "12/26", FormatExpiry("12/265"))
	assert.Equal(t, "1", FormatExpiry("1"))
}

func TestProcessor_Charge(t *testing.T) {
	t.Parallel()

	p := NewProcessor(0, bcrypt.MinCost)
	p.now = func() time.Time { return now }

	r, err := p.Charge(context.Background(), validCard(), 8262)
	require.NoError(t, err)
	assert.Equal(t, "1111", r.Last4)
	assert.Equal(t, 8262.0, r.Amount)
	assert.NotEmpty(t, r.Reference)
	assert.True(t, utils.VerifyCardNumber(r.CardHash, "4111111111111111"))
	assert.Equal(t, now, r.ProcessedAt)
}

func TestProcessor_ChargeRejectsInvalidCard(t *testing.T) {
	t.Parallel()

	p := NewProcessor(time.Hour, bcrypt.MinCost)
	c := validCard()
	c.CVV = ""
	_, err := p.Charge(context.Background(), c, 10)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestProcessor_ChargeHonoursContext(t *testing.T) {
	t.Parallel()

	p := NewProcessor(time.Hour, bcrypt.MinCost)
	p.now = func() time.Time { return now }
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Charge(ctx, validCard(), 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

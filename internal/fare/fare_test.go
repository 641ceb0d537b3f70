package fare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		0:   "0h 0m",
		45:  "0h 45m",
		60:  "1h 0m",
		135: "2h 15m",
		-5:  "0h 0m",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatDuration(in), "minutes=%d", in)
	}
}

func TestSurcharge(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1380.0, Surcharge(6900))
	assert.Equal(t, 0.0, Surcharge(0))
	assert.Equal(t, 20.02, Surcharge(100.1))
}

func TestQuote(t *testing.T) {
	t.Parallel()

	q := Quote(5000, 2, 1650, 500)
	assert.Equal(t, 10000.0, q.BaseFare)
	assert.Equal(t, 2000.0, q.Surcharge)
	assert.Equal(t, 1650.0, q.SeatFees)
	assert.Equal(t, 13650.0, q.Subtotal())
	assert.Equal(t, 13150.0, q.Total)
}

func TestQuote_NeverNegative(t *testing.T) {
	t.Parallel()

	q := Quote(100, 1, 0, 1000)
	assert.Equal(t, 0.0, q.Total)
}

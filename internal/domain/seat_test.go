package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeatLabel(t *testing.T) {
	valid := map[string]SeatLabel{
		"1A":    {Row: 1, Column: "A"},
		"12c":   {Row: 12, Column: "C"},
		" 3e  ": {Row: 3, Column: "E"},
	}
	for in, want := range valid {
		got, err := ParseSeatLabel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "A1", "1", "AB", "1AB", "0A", "-1A", "1 A"} {
		_, err := ParseSeatLabel(in)
		assert.ErrorIs(t, err, ErrInvalidSeatFormat, in)
	}
}

func TestSeatLabel_String(t *testing.T) {
	assert.Equal(t, "14F", SeatLabel{Row: 14, Column: "F"}.String())
	assert.Equal(t, "2B", Seat{Row: 2, Column: "B"}.Label())
}

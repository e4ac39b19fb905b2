package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		valid bool
	}{
		{
			name:  "valid lowercase",
			in:    "0x1111111111111111111111111111111111111111",
			want:  "0x1111111111111111111111111111111111111111",
			valid: true,
		},
		{
			name:  "mixed case is lowercased",
			in:    "0xDEADBEEFdeadbeefDEADBEEFdeadbeefDEADBEEF",
			want:  "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
			valid: true,
		},
		{name: "missing prefix", in: "1111111111111111111111111111111111111111", valid: false},
		{name: "too short", in: "0x1234", valid: false},
		{name: "too long", in: "0x11111111111111111111111111111111111111112", valid: false},
		{name: "non hex", in: "0xzzzz111111111111111111111111111111111111", valid: false},
		{name: "empty", in: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeAddress(tt.in)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseRating(t *testing.T) {
	t.Run("accepts numbers and numeric strings in range", func(t *testing.T) {
		for raw, want := range map[string]float64{
			`0`:       0,
			`5`:       5,
			`2.5`:     2.5,
			`3.14`:    3.1,
			`4.99`:    5.0,
			`0.04`:    0.0,
			`"3"`:     3,
			`"4.5"`:   4.5,
			`" 2.5 "`: 2.5,
		} {
			got, err := ParseRating(json.RawMessage(raw))
			require.NoError(t, err, raw)
			assert.InDelta(t, want, got, 1e-9, raw)
		}
	})

	t.Run("rejects everything else", func(t *testing.T) {
		for _, raw := range []string{
			`null`, `true`, `{}`, `[]`, `{"rating":3}`, `-0.1`, `5.1`, `-1`, `6`, ``,
			`"abc"`, `""`, `"NaN"`, `"Inf"`, `"-Inf"`, `nan`, `"6"`, `"-1"`,
		} {
			_, err := ParseRating(json.RawMessage(raw))
			assert.Error(t, err, "raw=%q", raw)
		}
	})
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 2.1, Round1(2.0529772859433))
	assert.Equal(t, 2.6, Round1(2.590909090909091))
	assert.Equal(t, 2.5, Round1(2.45))
	assert.Equal(t, 0.0, Round1(0))
}

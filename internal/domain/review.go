package domain

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/utafrali/reputation-service/pkg/errors"
)

// addressPattern matches a 0x-prefixed 40-digit hex identifier.
var addressPattern = regexp.MustCompile(`^0x[a-f0-9]{40}$`)

// Review is a single rating one user has left for another. The pair
// (ReviewerID, RevieweeID) is unique; submitting again replaces the
// earlier review.
type Review struct {
	ReviewerID string    `json:"reviewer_id"`
	RevieweeID string    `json:"reviewee_id"`
	Rating     float64   `json:"rating"`
	Review     string    `json:"review"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NormalizeAddress lowercases an address and reports whether it is a valid
// 0x-prefixed 40-hex-digit identifier.
func NormalizeAddress(addr string) (string, bool) {
	addr = strings.ToLower(addr)
	return addr, addressPattern.MatchString(addr)
}

// ParseRating coerces a raw JSON value into a rating. Numbers and numeric
// strings are accepted; objects, arrays, booleans, null, non-numeric
// strings, and anything outside [0, 5] are rejected. The accepted value is
// rounded to one decimal place.
func ParseRating(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, errors.InvalidRating()
	}

	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, errors.InvalidRating()
	}

	var f float64
	switch num := v.(type) {
	case json.Number:
		parsed, err := num.Float64()
		if err != nil {
			return 0, errors.InvalidRating()
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, errors.InvalidRating()
		}
		f = parsed
	default:
		return 0, errors.InvalidRating()
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > 5 {
		return 0, errors.InvalidRating()
	}

	return Round1(f), nil
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

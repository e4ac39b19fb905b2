package signer

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x1111111111111111111111111111111111111111"

func TestHMACSigner(t *testing.T) {
	s := NewHMACSigner(testAddress, []byte("secret"))

	t.Run("deterministic for identical input", func(t *testing.T) {
		a := s.Sign("POST", "/v1/review", 1700000000, []byte(`{"rating":5}`))
		b := s.Sign("POST", "/v1/review", 1700000000, []byte(`{"rating":5}`))
		assert.Equal(t, a, b)
		assert.Len(t, a, 64)
	})

	t.Run("timestamp changes the signature", func(t *testing.T) {
		a := s.Sign("POST", "/v1/review", 1700000000, nil)
		b := s.Sign("POST", "/v1/review", 1700000001, nil)
		assert.NotEqual(t, a, b)
	})

	t.Run("body changes the signature", func(t *testing.T) {
		a := s.Sign("POST", "/v1/review", 1700000000, []byte(`{"rating":5}`))
		b := s.Sign("POST", "/v1/review", 1700000000, []byte(`{"rating":1}`))
		assert.NotEqual(t, a, b)
	})
}

func TestVerifier(t *testing.T) {
	key := []byte("secret")
	resolve := func(addr string) ([]byte, bool) {
		if addr == testAddress {
			return key, true
		}
		return nil, false
	}

	now := time.Unix(1700000100, 0)
	newVerifier := func() *Verifier {
		v := NewVerifier(resolve, 2*time.Minute)
		v.nowFunc = func() time.Time { return now }
		return v
	}

	sign := func(ts int64, body []byte) string {
		return NewHMACSigner(testAddress, key).Sign("POST", "/v1/review/submit", ts, body)
	}

	body := []byte(`{"reviewee":"0x2222222222222222222222222222222222222222","rating":4}`)

	t.Run("valid signature", func(t *testing.T) {
		ts := now.Unix() - 30
		err := newVerifier().Verify("POST", "/v1/review/submit", testAddress, strconv.FormatInt(ts, 10), sign(ts, body), body)
		require.NoError(t, err)
	})

	t.Run("missing headers", func(t *testing.T) {
		err := newVerifier().Verify("POST", "/v1/review/submit", "", "", "", body)
		assert.ErrorIs(t, err, ErrMissingSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		ts := now.Unix() - 600
		err := newVerifier().Verify("POST", "/v1/review/submit", testAddress, strconv.FormatInt(ts, 10), sign(ts, body), body)
		assert.ErrorIs(t, err, ErrTimestampSkew)
	})

	t.Run("unknown address", func(t *testing.T) {
		ts := now.Unix()
		other := "0x3333333333333333333333333333333333333333"
		err := newVerifier().Verify("POST", "/v1/review/submit", other, strconv.FormatInt(ts, 10), sign(ts, body), body)
		assert.ErrorIs(t, err, ErrUnknownAddress)
	})

	t.Run("tampered body", func(t *testing.T) {
		ts := now.Unix()
		err := newVerifier().Verify("POST", "/v1/review/submit", testAddress, strconv.FormatInt(ts, 10), sign(ts, body), []byte(`{"rating":5}`))
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("garbage signature encoding", func(t *testing.T) {
		ts := now.Unix()
		err := newVerifier().Verify("POST", "/v1/review/submit", testAddress, strconv.FormatInt(ts, 10), "zzzz", body)
		assert.ErrorIs(t, err, ErrBadSignature)
	})
}

package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

var (
	ErrUnknownAddress   = errors.New("signer: unknown address")
	ErrBadSignature     = errors.New("signer: signature mismatch")
	ErrTimestampSkew    = errors.New("signer: timestamp outside accepted window")
	ErrMissingSignature = errors.New("signer: missing signature headers")
)

// KeyResolver looks up the shared secret for a signing address. The second
// return value reports whether the address is known.
type KeyResolver func(address string) ([]byte, bool)

// Verifier checks inbound request signatures against a skew window.
type Verifier struct {
	resolve KeyResolver
	maxSkew time.Duration

	nowFunc func() time.Time
}

// NewVerifier creates a verifier. Timestamps further than maxSkew from the
// server clock are rejected regardless of signature validity.
func NewVerifier(resolve KeyResolver, maxSkew time.Duration) *Verifier {
	return &Verifier{resolve: resolve, maxSkew: maxSkew, nowFunc: time.Now}
}

// Verify checks the signature headers of a request. All three headers must
// be present.
func (v *Verifier) Verify(method, path, address, timestamp, signature string, body []byte) error {
	if address == "" || timestamp == "" || signature == "" {
		return ErrMissingSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrTimestampSkew
	}
	skew := v.nowFunc().Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.maxSkew {
		return ErrTimestampSkew
	}

	key, ok := v.resolve(address)
	if !ok {
		return ErrUnknownAddress
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(canonical(method, path, ts, body))
	want := mac.Sum(nil)

	got, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(got, want) {
		return ErrBadSignature
	}

	return nil
}

package http

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/utafrali/reputation-service/internal/signer"
	"github.com/utafrali/reputation-service/pkg/errors"
	"github.com/utafrali/reputation-service/pkg/httputil"
	"github.com/utafrali/reputation-service/pkg/logger"
)

// maxBodySize bounds request bodies read for signature verification.
const maxBodySize = 1 << 20

// RequestVerifier checks the signature header triple of a request.
type RequestVerifier interface {
	Verify(method, path, address, timestamp, signature string, body []byte) error
}

type contextKey string

const reviewerKey contextKey = "reviewer"

// ReviewerFromContext returns the verified signer address of the request.
func ReviewerFromContext(ctx context.Context) string {
	addr, _ := ctx.Value(reviewerKey).(string)
	return addr
}

// ContentTypeJSON sets the JSON content type on all responses.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// RequireSignature authenticates mutating requests. The verified X-Address
// becomes the reviewer identity for the handlers below; the body is
// buffered so handlers can still read it.
func RequireSignature(verifier RequestVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
			if err != nil {
				httputil.WriteError(w, r, errors.BadArguments())
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			address := r.Header.Get(signer.HeaderAddress)
			timestamp := r.Header.Get(signer.HeaderTimestamp)
			sig := r.Header.Get(signer.HeaderSignature)

			if err := verifier.Verify(r.Method, r.URL.RequestURI(), address, timestamp, sig, body); err != nil {
				httputil.WriteError(w, r, errors.InvalidSignature())
				return
			}

			ctx := context.WithValue(r.Context(), reviewerKey, address)
			ctx = logger.WithAddress(ctx, address)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/reputation-service/pkg/httpclient"
)

func newIP2C(t *testing.T, handler http.HandlerFunc) *IP2CResolver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	return NewIP2CResolver(httpclient.New(cfg)).WithBaseURL(srv.URL)
}

func TestIP2CResolver(t *testing.T) {
	t.Run("resolves country", func(t *testing.T) {
		r := newIP2C(t, func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "/8.8.8.8", req.URL.Path)
			w.Write([]byte("1;US;USA;United States")) //nolint:errcheck
		})

		country, err := r.Country(context.Background(), "8.8.8.8")
		require.NoError(t, err)
		assert.Equal(t, "US", country)
	})

	t.Run("unknown ip", func(t *testing.T) {
		r := newIP2C(t, func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte("0;;;")) //nolint:errcheck
		})

		_, err := r.Country(context.Background(), "10.0.0.1")
		assert.ErrorIs(t, err, ErrUnknown)
	})

	t.Run("malformed reply", func(t *testing.T) {
		r := newIP2C(t, func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte("garbage")) //nolint:errcheck
		})

		_, err := r.Country(context.Background(), "10.0.0.1")
		assert.ErrorIs(t, err, ErrUnknown)
	})
}

type stubResolver struct {
	country string
	err     error
}

func (s stubResolver) Country(context.Context, string) (string, error) {
	return s.country, s.err
}

func TestChain(t *testing.T) {
	t.Run("first answer wins", func(t *testing.T) {
		c := Chain{stubResolver{country: "DE"}, stubResolver{country: "US"}}
		country, err := c.Country(context.Background(), "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, "DE", country)
	})

	t.Run("falls through on error", func(t *testing.T) {
		c := Chain{stubResolver{err: ErrUnknown}, stubResolver{country: "US"}}
		country, err := c.Country(context.Background(), "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, "US", country)
	})

	t.Run("all unknown", func(t *testing.T) {
		c := Chain{stubResolver{err: ErrUnknown}, stubResolver{err: ErrUnknown}}
		_, err := c.Country(context.Background(), "1.2.3.4")
		assert.ErrorIs(t, err, ErrUnknown)
	})
}

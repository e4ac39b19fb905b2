package location

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultIP2CBaseURL = "http://ip2c.org"

// httpGetter is satisfied by httpclient.Client and its circuit breaker
// wrapper.
type httpGetter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// IP2CResolver queries the ip2c.org service. Responses look like
// "1;DE;DEU;Germany"; a leading "0" or "2" means the IP could not be placed.
type IP2CResolver struct {
	client  httpGetter
	baseURL string
}

func NewIP2CResolver(client httpGetter) *IP2CResolver {
	return &IP2CResolver{client: client, baseURL: defaultIP2CBaseURL}
}

// WithBaseURL overrides the service endpoint, used in tests.
func (r *IP2CResolver) WithBaseURL(url string) *IP2CResolver {
	r.baseURL = strings.TrimRight(url, "/")
	return r
}

func (r *IP2CResolver) Country(ctx context.Context, ip string) (string, error) {
	resp, err := r.client.Get(ctx, fmt.Sprintf("%s/%s", r.baseURL, ip))
	if err != nil {
		return "", fmt.Errorf("ip2c request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip2c status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", fmt.Errorf("ip2c read body: %w", err)
	}

	parts := strings.Split(string(body), ";")
	if len(parts) < 2 || parts[0] != "1" || parts[1] == "" {
		return "", ErrUnknown
	}

	return parts[1], nil
}

// Package location resolves the origin country of review submissions from
// the client IP, first from a local GeoIP table and falling back to the
// ip2c.org web service.
package location

import (
	"context"
	"errors"
)

// ErrUnknown is returned when no resolver can place the IP.
var ErrUnknown = errors.New("location: unknown ip")

// Resolver maps an IP address to an ISO 3166-1 alpha-2 country code.
type Resolver interface {
	Country(ctx context.Context, ip string) (string, error)
}

// Chain tries each resolver in order, returning the first answer. Errors
// from earlier resolvers are swallowed so a broken upstream only degrades
// accuracy, not submissions.
type Chain []Resolver

func (c Chain) Country(ctx context.Context, ip string) (string, error) {
	for _, r := range c {
		country, err := r.Country(ctx, ip)
		if err == nil && country != "" {
			return country, nil
		}
	}
	return "", ErrUnknown
}

package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/reputation-service/pkg/database"
)

// GeoIPResolver looks up the country in a locally loaded GeoIP block table.
type GeoIPResolver struct {
	pool database.DBTX
}

func NewGeoIPResolver(pool database.DBTX) *GeoIPResolver {
	return &GeoIPResolver{pool: pool}
}

func (r *GeoIPResolver) Country(ctx context.Context, ip string) (string, error) {
	query := `SELECT country FROM geoip_blocks WHERE network >>= $1::inet LIMIT 1`

	var country string
	ctx, end := database.TraceQuery(ctx, "geoip lookup", query)
	err := r.pool.QueryRow(ctx, query, ip).Scan(&country)
	end(err)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUnknown
	}
	if err != nil {
		return "", fmt.Errorf("geoip lookup: %w", err)
	}

	return country, nil
}

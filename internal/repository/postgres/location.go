package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/utafrali/reputation-service/pkg/database"
)

// LocationRepository stores the origin country of review submissions.
type LocationRepository struct {
	pool database.DBTX
}

// NewLocationRepository creates a new PostgreSQL-backed location repository.
func NewLocationRepository(pool database.DBTX) *LocationRepository {
	return &LocationRepository{pool: pool}
}

// Record stores the resolved country for a review submission, replacing any
// earlier record for the same review.
func (r *LocationRepository) Record(ctx context.Context, reviewerID, revieweeID, ip, country string) error {
	query := `
		INSERT INTO review_locations (reviewer_id, reviewee_id, ip, country, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (reviewer_id, reviewee_id)
		DO UPDATE SET ip = EXCLUDED.ip,
		              country = EXCLUDED.country,
		              recorded_at = EXCLUDED.recorded_at`

	ctx, end := database.TraceQuery(ctx, "record review location", query)
	_, err := r.pool.Exec(ctx, query, reviewerID, revieweeID, ip, country, time.Now().UTC())
	end(err)
	if err != nil {
		return fmt.Errorf("record review location: %w", err)
	}

	return nil
}

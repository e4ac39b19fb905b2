package repository

import (
	"context"
	"time"

	"github.com/utafrali/reputation-service/internal/domain"
)

// SearchFilter narrows a review search. At least one of RevieweeID or
// ReviewerID is set by the time it reaches the repository. Oldest, when
// non-nil, is a lower bound on updated_at.
type SearchFilter struct {
	RevieweeID string
	ReviewerID string
	Oldest     *time.Time
	Offset     uint64
	Limit      uint64
}

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	// Upsert inserts a review, replacing any earlier review by the same
	// reviewer for the same reviewee.
	Upsert(ctx context.Context, review *domain.Review) error

	// Update modifies an existing review. Returns ErrNotFound when the
	// reviewer has no review for the reviewee.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review. Deleting a review that does not exist is
	// not an error.
	Delete(ctx context.Context, reviewerID, revieweeID string) error

	// Search returns reviews matching the filter, newest first, along
	// with the total match count.
	Search(ctx context.Context, filter SearchFilter) ([]domain.Review, int64, error)

	// Aggregate returns the star histogram and rating sum for a reviewee.
	Aggregate(ctx context.Context, revieweeID string) (domain.Histogram, float64, error)
}

// LocationRepository records where review submissions originate from.
type LocationRepository interface {
	// Record stores the resolved country for a review submission,
	// replacing any earlier record for the same review.
	Record(ctx context.Context, reviewerID, revieweeID, ip, country string) error
}

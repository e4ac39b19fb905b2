package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/utafrali/reputation-service/internal/domain"
	"github.com/utafrali/reputation-service/internal/repository"
	"github.com/utafrali/reputation-service/pkg/database"
	"github.com/utafrali/reputation-service/pkg/errors"
)

// psql builds queries with $N placeholders for pgx.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ReviewRepository implements review persistence using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Upsert inserts a review, replacing any earlier one by the same reviewer
// for the same reviewee.
func (r *ReviewRepository) Upsert(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (reviewer_id, reviewee_id, rating, review, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (reviewer_id, reviewee_id)
		DO UPDATE SET rating = EXCLUDED.rating,
		              review = EXCLUDED.review,
		              updated_at = EXCLUDED.updated_at`

	ctx, end := database.TraceQuery(ctx, "upsert review", query)
	_, err := r.pool.Exec(ctx, query,
		review.ReviewerID,
		review.RevieweeID,
		review.Rating,
		review.Review,
		review.CreatedAt,
		review.UpdatedAt,
	)
	end(err)
	if err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}

	return nil
}

// Update modifies an existing review in place.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews
		SET rating = $3, review = $4, updated_at = $5
		WHERE reviewer_id = $1 AND reviewee_id = $2`

	ctx, end := database.TraceQuery(ctx, "update review", query)
	tag, err := r.pool.Exec(ctx, query,
		review.ReviewerID,
		review.RevieweeID,
		review.Rating,
		review.Review,
		review.UpdatedAt,
	)
	end(err)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrNotFound
	}

	return nil
}

// Delete removes a review. Missing rows are not an error.
func (r *ReviewRepository) Delete(ctx context.Context, reviewerID, revieweeID string) error {
	query := `DELETE FROM reviews WHERE reviewer_id = $1 AND reviewee_id = $2`

	ctx, end := database.TraceQuery(ctx, "delete review", query)
	_, err := r.pool.Exec(ctx, query, reviewerID, revieweeID)
	end(err)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	return nil
}

// Search returns reviews matching the filter, newest first, with the total
// match count.
func (r *ReviewRepository) Search(ctx context.Context, filter repository.SearchFilter) ([]domain.Review, int64, error) {
	conds := sq.And{}
	if filter.RevieweeID != "" {
		conds = append(conds, sq.Eq{"reviewee_id": filter.RevieweeID})
	}
	if filter.ReviewerID != "" {
		conds = append(conds, sq.Eq{"reviewer_id": filter.ReviewerID})
	}
	if filter.Oldest != nil {
		conds = append(conds, sq.GtOrEq{"updated_at": *filter.Oldest})
	}

	countQuery, countArgs, err := psql.
		Select("COUNT(*)").
		From("reviews").
		Where(conds).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	ctx, end := database.TraceQuery(ctx, "count reviews", countQuery)
	err = r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total)
	end(err)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	query, args, err := psql.
		Select("reviewer_id", "reviewee_id", "rating", "review", "created_at", "updated_at").
		From("reviews").
		Where(conds).
		OrderBy("updated_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build search query: %w", err)
	}

	ctx, end = database.TraceQuery(ctx, "search reviews", query)
	rows, err := r.pool.Query(ctx, query, args...)
	end(err)
	if err != nil {
		return nil, 0, fmt.Errorf("search reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ReviewerID,
			&rv.RevieweeID,
			&rv.Rating,
			&rv.Review,
			&rv.CreatedAt,
			&rv.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, total, nil
}

// Aggregate returns the star histogram and rating sum for a reviewee in a
// single query.
func (r *ReviewRepository) Aggregate(ctx context.Context, revieweeID string) (domain.Histogram, float64, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE rating < 2),
		       COUNT(*) FILTER (WHERE rating >= 2 AND rating < 3),
		       COUNT(*) FILTER (WHERE rating >= 3 AND rating < 4),
		       COUNT(*) FILTER (WHERE rating >= 4 AND rating < 5),
		       COUNT(*) FILTER (WHERE rating >= 5),
		       COALESCE(SUM(rating), 0)
		FROM reviews
		WHERE reviewee_id = $1`

	var (
		stars domain.Histogram
		sum   float64
	)

	ctx, end := database.TraceQuery(ctx, "aggregate reviews", query)
	err := r.pool.QueryRow(ctx, query, revieweeID).Scan(
		&stars[0], &stars[1], &stars[2], &stars[3], &stars[4], &sum,
	)
	end(err)
	if err != nil {
		return domain.Histogram{}, 0, fmt.Errorf("aggregate reviews: %w", err)
	}

	return stars, sum, nil
}

package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/reputation-service/internal/domain"
	"github.com/utafrali/reputation-service/internal/location"
	"github.com/utafrali/reputation-service/internal/repository"
	"github.com/utafrali/reputation-service/pkg/errors"
)

// Dispatcher queues a reputation push for a reviewee. Implementations must
// not block.
type Dispatcher interface {
	Dispatch(ctx context.Context, revieweeID string)
}

// ReviewService implements the review write and search operations.
type ReviewService struct {
	repo       repository.ReviewRepository
	locations  repository.LocationRepository
	resolver   location.Resolver
	dispatcher Dispatcher
	logger     *slog.Logger

	nowFunc func() time.Time
	wg      sync.WaitGroup
}

// NewReviewService creates the review service. resolver and locations may
// be nil, in which case submissions are not geo-tagged.
func NewReviewService(
	repo repository.ReviewRepository,
	locations repository.LocationRepository,
	resolver location.Resolver,
	dispatcher Dispatcher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		repo:       repo,
		locations:  locations,
		resolver:   resolver,
		dispatcher: dispatcher,
		logger:     logger,
		nowFunc:    time.Now,
	}
}

// SubmitInput carries a raw submit or update request. Reviewer is the
// authenticated signer address; Rating and Review are left undecoded so
// their validation can distinguish wrong JSON types from wrong values.
type SubmitInput struct {
	Reviewer string
	Reviewee string
	Rating   json.RawMessage
	Review   json.RawMessage
	ClientIP string
}

type validatedReview struct {
	reviewer string
	reviewee string
	rating   float64
	text     string
}

func (s *ReviewService) validate(in SubmitInput) (validatedReview, error) {
	if in.Reviewer == "" || in.Reviewee == "" || len(in.Rating) == 0 {
		return validatedReview{}, errors.BadArguments()
	}

	reviewer, ok := domain.NormalizeAddress(in.Reviewer)
	if !ok {
		return validatedReview{}, errors.InvalidAddress("reviewer")
	}
	reviewee, ok := domain.NormalizeAddress(in.Reviewee)
	if !ok {
		return validatedReview{}, errors.InvalidAddress("reviewee")
	}
	if reviewer == reviewee {
		return validatedReview{}, errors.InvalidReviewee()
	}

	rating, err := domain.ParseRating(in.Rating)
	if err != nil {
		return validatedReview{}, err
	}

	text, err := parseReviewText(in.Review)
	if err != nil {
		return validatedReview{}, err
	}

	return validatedReview{
		reviewer: reviewer,
		reviewee: reviewee,
		rating:   rating,
		text:     text,
	}, nil
}

// parseReviewText accepts an absent field, JSON null, or a JSON string.
// Any other JSON type is invalid_review.
func parseReviewText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", errors.InvalidReview()
	}
	return text, nil
}

// Submit upserts a review: insert when absent, otherwise overwrite rating
// and text and bump updated_at.
func (s *ReviewService) Submit(ctx context.Context, in SubmitInput) error {
	v, err := s.validate(in)
	if err != nil {
		return err
	}

	now := s.nowFunc().UTC()
	review := &domain.Review{
		ReviewerID: v.reviewer,
		RevieweeID: v.reviewee,
		Rating:     v.rating,
		Review:     v.text,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Upsert(ctx, review); err != nil {
		return errors.Internal(err)
	}

	s.dispatcher.Dispatch(ctx, v.reviewee)
	s.recordLocation(v.reviewer, v.reviewee, in.ClientIP)

	return nil
}

// Update modifies an existing review only; an absent row is reported as
// no_existing_review_found with no write performed.
func (s *ReviewService) Update(ctx context.Context, in SubmitInput) error {
	v, err := s.validate(in)
	if err != nil {
		return err
	}

	review := &domain.Review{
		ReviewerID: v.reviewer,
		RevieweeID: v.reviewee,
		Rating:     v.rating,
		Review:     v.text,
		UpdatedAt:  s.nowFunc().UTC(),
	}

	if err := s.repo.Update(ctx, review); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.NoExistingReview()
		}
		return errors.Internal(err)
	}

	s.dispatcher.Dispatch(ctx, v.reviewee)
	s.recordLocation(v.reviewer, v.reviewee, in.ClientIP)

	return nil
}

// Delete removes the reviewer's review of the reviewee. Absence is not an
// error.
func (s *ReviewService) Delete(ctx context.Context, reviewer, reviewee string) error {
	if reviewer == "" || reviewee == "" {
		return errors.BadArguments()
	}

	reviewerID, ok := domain.NormalizeAddress(reviewer)
	if !ok {
		return errors.InvalidAddress("reviewer")
	}
	revieweeID, ok := domain.NormalizeAddress(reviewee)
	if !ok {
		return errors.InvalidAddress("reviewee")
	}

	if err := s.repo.Delete(ctx, reviewerID, revieweeID); err != nil {
		return errors.Internal(err)
	}

	s.dispatcher.Dispatch(ctx, revieweeID)

	return nil
}

// recordLocation geo-tags a submission in the background. Failures only
// cost enrichment data, so they are logged and dropped.
func (s *ReviewService) recordLocation(reviewer, reviewee, ip string) {
	if s.resolver == nil || s.locations == nil || ip == "" {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		country, err := s.resolver.Country(ctx, ip)
		if err != nil {
			s.logger.Debug("resolve submission origin",
				slog.String("ip", ip), slog.Any("error", err))
			return
		}

		if err := s.locations.Record(ctx, reviewer, reviewee, ip, country); err != nil {
			s.logger.Error("record submission origin",
				slog.String("ip", ip), slog.Any("error", err))
		}
	}()
}

// Wait blocks until background location lookups finish.
func (s *ReviewService) Wait() {
	s.wg.Wait()
}

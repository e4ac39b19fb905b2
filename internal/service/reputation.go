package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/reputation-service/internal/domain"
	"github.com/utafrali/reputation-service/internal/repository"
	"github.com/utafrali/reputation-service/pkg/errors"
)

// ReputationService computes reputation aggregates. Snapshots are always
// recomputed from current data, never cached.
type ReputationService struct {
	repo   repository.ReviewRepository
	logger *slog.Logger
}

func NewReputationService(repo repository.ReviewRepository, logger *slog.Logger) *ReputationService {
	return &ReputationService{repo: repo, logger: logger}
}

// Snapshot returns the current aggregate reputation of a reviewee. Users
// nobody has reviewed yet get an empty snapshot, not an error.
func (s *ReputationService) Snapshot(ctx context.Context, reviewee string) (domain.Snapshot, error) {
	revieweeID, ok := domain.NormalizeAddress(reviewee)
	if !ok {
		return domain.Snapshot{}, errors.InvalidAddress("reviewee")
	}

	stars, sum, err := s.repo.Aggregate(ctx, revieweeID)
	if err != nil {
		return domain.Snapshot{}, errors.Internal(err)
	}

	return domain.NewSnapshot(revieweeID, stars, sum), nil
}

package service

import (
	"context"
	"strconv"
	"time"

	"github.com/utafrali/reputation-service/internal/domain"
	"github.com/utafrali/reputation-service/internal/repository"
	"github.com/utafrali/reputation-service/pkg/errors"
)

const defaultSearchLimit = 10

// SearchParams carries raw, unparsed query parameters.
type SearchParams struct {
	Reviewee string
	Reviewer string
	Oldest   string
	Offset   string
	Limit    string
}

// SearchResult is a filtered page of reviews plus the total match count
// before pagination.
type SearchResult struct {
	Reviews []domain.Review
	Total   int64
	Offset  uint64
	Limit   uint64
}

// oldestFormats are the accepted ISO-8601 spellings for the oldest filter.
var oldestFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseOldest(value string) (*time.Time, error) {
	for _, layout := range oldestFormats {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.InvalidDate("oldest")
}

// Search returns reviews filtered by reviewee and/or reviewer, newest
// update first. At least one identifier is required.
func (s *ReviewService) Search(ctx context.Context, p SearchParams) (SearchResult, error) {
	if p.Reviewee == "" && p.Reviewer == "" {
		return SearchResult{}, errors.BadArguments()
	}

	filter := repository.SearchFilter{Limit: defaultSearchLimit}

	if p.Reviewee != "" {
		reviewee, ok := domain.NormalizeAddress(p.Reviewee)
		if !ok {
			return SearchResult{}, errors.InvalidAddress("reviewee")
		}
		filter.RevieweeID = reviewee
	}
	if p.Reviewer != "" {
		reviewer, ok := domain.NormalizeAddress(p.Reviewer)
		if !ok {
			return SearchResult{}, errors.InvalidAddress("reviewer")
		}
		filter.ReviewerID = reviewer
	}

	if p.Oldest != "" {
		oldest, err := parseOldest(p.Oldest)
		if err != nil {
			return SearchResult{}, err
		}
		filter.Oldest = oldest
	}

	if p.Offset != "" {
		offset, err := strconv.ParseUint(p.Offset, 10, 32)
		if err != nil {
			return SearchResult{}, errors.BadArguments()
		}
		filter.Offset = offset
	}
	if p.Limit != "" {
		limit, err := strconv.ParseUint(p.Limit, 10, 32)
		if err != nil {
			return SearchResult{}, errors.BadArguments()
		}
		filter.Limit = limit
	}

	reviews, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return SearchResult{}, errors.Internal(err)
	}

	return SearchResult{
		Reviews: reviews,
		Total:   total,
		Offset:  filter.Offset,
		Limit:   filter.Limit,
	}, nil
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/reputation-service/internal/domain"
	"github.com/utafrali/reputation-service/internal/service"
	"github.com/utafrali/reputation-service/pkg/httputil"
)

// SearchHandler serves the review search endpoint.
type SearchHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

func NewSearchHandler(svc *service.ReviewService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{service: svc, logger: logger}
}

// SearchItem is one rendered review. Date is the ISO-8601 updated_at;
// Edited reports whether the review changed after first submission.
type SearchItem struct {
	Reviewer string  `json:"reviewer"`
	Reviewee string  `json:"reviewee"`
	Rating   float64 `json:"rating"`
	Review   string  `json:"review"`
	Date     string  `json:"date"`
	Edited   bool    `json:"edited"`
}

// SearchResponse echoes the raw query string alongside the result page.
// Total counts all matches before pagination.
type SearchResponse struct {
	Query   string       `json:"query"`
	Total   int64        `json:"total"`
	Reviews []SearchItem `json:"reviews"`
	Offset  uint64       `json:"offset"`
	Limit   uint64       `json:"limit"`
}

// Search handles GET /v1/search/review.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := service.SearchParams{
		Reviewee: q.Get("reviewee"),
		Reviewer: q.Get("reviewer"),
		Oldest:   q.Get("oldest"),
		Offset:   q.Get("offset"),
		Limit:    q.Get("limit"),
	}

	result, err := h.service.Search(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	items := make([]SearchItem, 0, len(result.Reviews))
	for _, rv := range result.Reviews {
		items = append(items, renderItem(rv))
	}

	httputil.WriteJSON(w, http.StatusOK, SearchResponse{
		Query:   r.URL.RawQuery,
		Total:   result.Total,
		Reviews: items,
		Offset:  result.Offset,
		Limit:   result.Limit,
	})
}

func renderItem(rv domain.Review) SearchItem {
	return SearchItem{
		Reviewer: rv.ReviewerID,
		Reviewee: rv.RevieweeID,
		Rating:   rv.Rating,
		Review:   rv.Review,
		Date:     rv.UpdatedAt.UTC().Format(time.RFC3339),
		Edited:   !rv.CreatedAt.Equal(rv.UpdatedAt),
	}
}

package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/reputation-service/internal/service"
	"github.com/utafrali/reputation-service/pkg/httputil"
)

// ReputationHandler serves the public reputation read endpoint.
type ReputationHandler struct {
	service *service.ReputationService
	logger  *slog.Logger
}

func NewReputationHandler(svc *service.ReputationService, logger *slog.Logger) *ReputationHandler {
	return &ReputationHandler{service: svc, logger: logger}
}

// SnapshotResponse is the aggregate returned for a user. Stars keys are
// the bucket numbers "1" through "5".
type SnapshotResponse struct {
	Count           int64            `json:"count"`
	Average         *float64         `json:"average"`
	ConfidenceScore float64          `json:"confidence_score"`
	Stars           map[string]int64 `json:"stars"`
}

// Get handles GET /v1/user/{reviewee}.
func (h *ReputationHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context(), chi.URLParam(r, "reviewee"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	stars := make(map[string]int64, len(snap.Stars))
	for i, n := range snap.Stars {
		stars[strconv.Itoa(i+1)] = n
	}

	httputil.WriteJSON(w, http.StatusOK, SnapshotResponse{
		Count:           snap.Count,
		Average:         snap.Average,
		ConfidenceScore: snap.ConfidenceScore,
		Stars:           stars,
	})
}

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/utafrali/reputation-service/internal/service"
	"github.com/utafrali/reputation-service/pkg/errors"
	"github.com/utafrali/reputation-service/pkg/httputil"
	"github.com/utafrali/reputation-service/pkg/middleware"
	"github.com/utafrali/reputation-service/pkg/validator"
)

// ReviewHandler handles the review write endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// SubmitReviewRequest is the JSON body for submit and update. Rating and
// Review stay raw so type errors map to their own error ids instead of a
// generic decode failure.
type SubmitReviewRequest struct {
	Reviewee string          `json:"reviewee" validate:"required"`
	Rating   json.RawMessage `json:"rating" validate:"required"`
	Review   json.RawMessage `json:"review"`
}

// DeleteReviewRequest is the JSON body for delete.
type DeleteReviewRequest struct {
	Reviewee string `json:"reviewee" validate:"required"`
}

// --- Handlers ---

// Submit handles POST /v1/review/submit and PUT /v1/review/submit. POST
// upserts; PUT requires an existing review for the pair.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, errors.BadArguments())
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, errors.BadArguments())
		return
	}

	input := service.SubmitInput{
		Reviewer: ReviewerFromContext(r.Context()),
		Reviewee: req.Reviewee,
		Rating:   req.Rating,
		Review:   req.Review,
		ClientIP: middleware.ClientIP(r),
	}

	var err error
	if r.Method == http.MethodPut {
		err = h.service.Update(r.Context(), input)
	} else {
		err = h.service.Submit(r.Context(), input)
	}
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.NoContent(w)
}

// Delete handles POST /v1/review/delete. Deleting an absent review still
// returns 204.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, errors.BadArguments())
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, errors.BadArguments())
		return
	}

	if err := h.service.Delete(r.Context(), ReviewerFromContext(r.Context()), req.Reviewee); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.NoContent(w)
}

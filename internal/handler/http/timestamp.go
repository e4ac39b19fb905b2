package http

import (
	"net/http"
	"time"

	"github.com/utafrali/reputation-service/pkg/httputil"
)

// TimestampResponse carries the server clock for clients computing request
// signatures.
type TimestampResponse struct {
	Timestamp int64 `json:"timestamp"`
}

// Timestamp handles GET /v1/timestamp.
func Timestamp(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, TimestampResponse{Timestamp: time.Now().Unix()})
}

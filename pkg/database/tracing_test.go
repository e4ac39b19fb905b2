package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceQuery_EndWithoutError(t *testing.T) {
	ctx, end := TraceQuery(context.Background(), "SearchReviews", "SELECT 1")
	require.NotNil(t, ctx)
	require.NotNil(t, end)
	end(nil)
}

func TestTraceQuery_EndWithError(t *testing.T) {
	_, end := TraceQuery(context.Background(), "UpsertReview", "INSERT ...")
	end(fmt.Errorf("deadlock detected"))
}

func TestSlowQueryLogging_LogsAboveThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))
	SetSlowQueryLogging(time.Nanosecond, l)
	defer SetSlowQueryLogging(0, nil)

	_, end := TraceQuery(context.Background(), "AggregateRatings", "SELECT COUNT(*) ...")
	time.Sleep(time.Millisecond)
	end(nil)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "slow query detected", out["msg"])
	assert.Equal(t, "AggregateRatings", out["operation"])
}

func TestSlowQueryLogging_DisabledByZeroThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))
	SetSlowQueryLogging(0, l)

	_, end := TraceQuery(context.Background(), "DeleteReview", "DELETE ...")
	end(nil)

	assert.Zero(t, buf.Len(), "no log line expected when disabled")
}

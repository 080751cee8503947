package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordRequest("/api/v1/me", "GET", 200, 5*time.Millisecond)
	metrics.RecordRequest("/api/v1/me", "GET", 200, 7*time.Millisecond)
	metrics.RecordRequest("/api/v1/me", "GET", 401, time.Millisecond)
	metrics.RecordError("/api/v1/me", "GET", "UNAUTHORIZED")
	metrics.RecordAuthDecision("allowed")
	metrics.RecordAuthDecision("expired")
	metrics.RecordAuthDecision("expired")

	assert.Equal(t, int64(2), metrics.RequestCount("/api/v1/me", "GET", 200))
	assert.Equal(t, int64(1), metrics.RequestCount("/api/v1/me", "GET", 401))
	assert.Equal(t, int64(1), metrics.ErrorCount("/api/v1/me", "GET", "UNAUTHORIZED"))
	assert.Equal(t, int64(1), metrics.AuthDecisionCount("allowed"))
	assert.Equal(t, int64(2), metrics.AuthDecisionCount("expired"))
	assert.Equal(t, int64(0), metrics.AuthDecisionCount("malformed"))
}

func TestMetrics_NilSafe(t *testing.T) {
	var metrics *Metrics
	metrics.RecordRequest("/x", "GET", 200, 0)
	metrics.RecordError("/x", "GET", "INTERNAL_ERROR")
	metrics.RecordAuthDecision("allowed")
}

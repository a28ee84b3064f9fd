package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOutcome(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordOutcome("success", 2*time.Second)
	m.RecordOutcome("success", time.Second)
	m.RecordOutcome("invalid_input", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("invalid_input")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.AnalyzerDuration), "invalid input is not timed")
}

func TestRecordSectionError(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordSectionError("seo")
	m.RecordSectionError("seo")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SectionErrorsTotal.WithLabelValues("seo")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SectionErrorsTotal.WithLabelValues("ux")))
}

func TestObserveHTTPAndSessions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveHTTP("GET", "/", "200", 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/", "200")))

	sessions := 3
	m.TrackSessions(reg, func() int { return sessions })
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveSessions))
}

package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	runsSubmittedTotal atomic.Uint64
	runsCommittedTotal atomic.Uint64
	runsRejectedTotal  atomic.Uint64
	runsCancelledTotal atomic.Uint64
	runsFailedTotal    atomic.Uint64

	commitFailuresTotal atomic.Uint64
	citationsTotal      atomic.Uint64

	runJobsReceivedTotal      atomic.Uint64
	runJobsCompletedTotal     atomic.Uint64
	runJobsFailedTotal        atomic.Uint64
	runJobsUnrecoverableTotal atomic.Uint64

	advanceDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncRunSubmitted increments the submitted-runs counter.
func IncRunSubmitted() { runsSubmittedTotal.Add(1) }

// IncRunCommitted increments the committed-runs counter.
func IncRunCommitted() { runsCommittedTotal.Add(1) }

// IncRunRejected increments the rejected-runs counter.
func IncRunRejected() { runsRejectedTotal.Add(1) }

// IncRunCancelled increments the cancelled-runs counter.
func IncRunCancelled() { runsCancelledTotal.Add(1) }

// IncRunFailed increments the failed-runs counter.
func IncRunFailed() { runsFailedTotal.Add(1) }

// IncCommitFailure counts a single candidate that failed during commit.
func IncCommitFailure() { commitFailuresTotal.Add(1) }

// IncCitationsRecorded counts citations appended to the ledger.
func IncCitationsRecorded(n int) {
	if n > 0 {
		citationsTotal.Add(uint64(n))
	}
}

// IncRunJobsReceived counts queue messages received by the worker.
func IncRunJobsReceived() { runJobsReceivedTotal.Add(1) }

// IncRunJobsCompleted counts queue messages processed and deleted.
func IncRunJobsCompleted() { runJobsCompletedTotal.Add(1) }

// IncRunJobsFailed counts queue messages that failed processing.
func IncRunJobsFailed() { runJobsFailedTotal.Add(1) }

// IncRunJobsDeletedUnrecoverable counts malformed messages deleted without processing.
func IncRunJobsDeletedUnrecoverable() { runJobsUnrecoverableTotal.Add(1) }

// ObserveAdvanceDurationMs records an extraction+matching advance duration.
func ObserveAdvanceDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	advanceDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "runs_submitted_total", "Total reconciliation runs submitted", runsSubmittedTotal.Load())
	writeCounter(&buf, "runs_committed_total", "Total runs that reached COMMITTED", runsCommittedTotal.Load())
	writeCounter(&buf, "runs_rejected_total", "Total runs rejected at review", runsRejectedTotal.Load())
	writeCounter(&buf, "runs_cancelled_total", "Total runs cancelled at review", runsCancelledTotal.Load())
	writeCounter(&buf, "runs_failed_total", "Total runs that reached FAILED", runsFailedTotal.Load())
	writeCounter(&buf, "commit_candidate_failures_total", "Total candidates that failed during commit", commitFailuresTotal.Load())
	writeCounter(&buf, "citations_recorded_total", "Total citations appended to the ledger", citationsTotal.Load())
	writeCounter(&buf, "run_jobs_received_total", "Total queue messages received by the worker", runJobsReceivedTotal.Load())
	writeCounter(&buf, "run_jobs_completed_total", "Total queue messages processed and deleted", runJobsCompletedTotal.Load())
	writeCounter(&buf, "run_jobs_failed_total", "Total queue messages that failed processing", runJobsFailedTotal.Load())
	writeCounter(&buf, "run_jobs_deleted_unrecoverable_total", "Total malformed queue messages deleted without processing", runJobsUnrecoverableTotal.Load())
	writeHistogram(&buf, "run_advance_duration_ms", "Extraction and matching duration in milliseconds", advanceDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

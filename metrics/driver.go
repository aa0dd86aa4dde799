package metrics

import (
	"time"

	gethmetrics "github.com/ethereum/go-ethereum/metrics"
)

// Set is the driver's own instrumentation, registered on the same
// DefaultRegistry StartGethMetricServer exposes (spec.md §4.8 "metrics"):
// a gauge for the current block's transaction count, timers for the three
// phases ExecuteBlock runs through, a histogram of per-transaction gas
// usage, and an outcome counter split by Keep/Discard/Retry.
type Set struct {
	BlockTransactionCount gethmetrics.Gauge
	TxnTotalSeconds       gethmetrics.Timer
	TxnVerificationSeconds gethmetrics.Timer
	TxnExecutionSeconds   gethmetrics.Timer
	TxnExecutionGasUsage  gethmetrics.Histogram
	TxnOutcomeKeep        gethmetrics.Counter
	TxnOutcomeDiscard     gethmetrics.Counter
	TxnOutcomeRetry       gethmetrics.Counter
}

// NewSet registers a fresh Set of metrics under the given prefix on
// gethmetrics.DefaultRegistry, following the same NewRegisteredXxx pattern
// the go-ethereum metrics package itself uses throughout its subsystems.
func NewSet(prefix string) *Set {
	return &Set{
		BlockTransactionCount: gethmetrics.NewRegisteredGauge(prefix+"/block/txn_count", nil),
		TxnTotalSeconds:        gethmetrics.NewRegisteredTimer(prefix+"/txn/total", nil),
		TxnVerificationSeconds: gethmetrics.NewRegisteredTimer(prefix+"/txn/verify", nil),
		TxnExecutionSeconds:    gethmetrics.NewRegisteredTimer(prefix+"/txn/execute", nil),
		TxnExecutionGasUsage:   gethmetrics.NewRegisteredHistogram(prefix+"/txn/gas_used", nil, gethmetrics.NewExpDecaySample(1028, 0.015)),
		TxnOutcomeKeep:         gethmetrics.NewRegisteredCounter(prefix+"/txn/outcome/keep", nil),
		TxnOutcomeDiscard:      gethmetrics.NewRegisteredCounter(prefix+"/txn/outcome/discard", nil),
		TxnOutcomeRetry:        gethmetrics.NewRegisteredCounter(prefix+"/txn/outcome/retry", nil),
	}
}

// RecordOutcome updates the gas histogram and the outcome counter matching
// status's kind. Safe to call with a nil Set, so callers that did not wire
// metrics can skip construction entirely.
func (s *Set) RecordOutcome(kind int, gasUsed uint64) {
	if s == nil {
		return
	}
	s.TxnExecutionGasUsage.Update(int64(gasUsed))
	switch kind {
	case 0: // Keep
		s.TxnOutcomeKeep.Inc(1)
	case 1: // Discard
		s.TxnOutcomeDiscard.Inc(1)
	default: // Retry
		s.TxnOutcomeRetry.Inc(1)
	}
}

// Observe times fn under the given timer, a no-op wrapper when s is nil.
func (s *Set) Observe(timer func(*Set) gethmetrics.Timer, fn func()) {
	if s == nil {
		fn()
		return
	}
	start := time.Now()
	fn()
	timer(s).UpdateSince(start)
}

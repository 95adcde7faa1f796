package grpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricNamespace = "spl_token"
	metricSubsystem = "indexer"
)

type processorMetrics struct {
	blocks          *prometheus.CounterVec // 按结果统计：processed / duplicate / invalid / failed
	events          *prometheus.CounterVec // 按 top / inner 统计
	skippedTxs      prometheus.Counter
	malformed       prometheus.Counter
	unknown         prometheus.Counter
	lookupChanges   *prometheus.CounterVec
	publishErrors   prometheus.Counter
	processDuration prometheus.Histogram
	blockLatency    prometheus.Gauge
}

func newProcessorMetrics(reg prometheus.Registerer) *processorMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &processorMetrics{
		blocks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: metricSubsystem,
			Name:      "blocks_total",
			Help:      "Blocks handled by the processor, labelled by outcome.",
		}, []string{"result"}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: metricSubsystem,
			Name:      "events_total",
			Help:      "Instruction events emitted.",
		}, []string{"level"}),
		skippedTxs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: metricSubsystem,
			Name:      "skipped_transactions_total",
			Help:      "Transactions dropped because account resolution failed.",
		}),
		malformed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: metricSubsystem,
			Name:      "malformed_instructions_total",
			Help:      "Target program instructions with an undecodable payload.",
		}),
		unknown: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: metricSubsystem,
			Name:      "unknown_instructions_total",
			Help:      "Target program instructions with an unrecognised opcode.",
		}),
		lookupChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: metricSubsystem,
			Name:      "lookup_table_changes_total",
			Help:      "Address lookup table mutations applied to the repository.",
		}, []string{"op"}),
		publishErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: metricSubsystem,
			Name:      "publish_errors_total",
			Help:      "Slots whose events could not be delivered to the sink.",
		}),
		processDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Subsystem: metricSubsystem,
			Name:      "block_process_seconds",
			Help:      "Time spent walking and publishing a block.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		blockLatency: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Subsystem: metricSubsystem,
			Name:      "block_latency_ms",
			Help:      "Delay between block time and receipt of the latest block.",
		}),
	}
}

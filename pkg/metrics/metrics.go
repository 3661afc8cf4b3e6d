package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	IntentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosigner_intents_created_total",
		Help: "The total number of intents created",
	}, []string{"chain_id"})

	CollectingIntents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cosigner_collecting_intents",
		Help: "The number of intents currently collecting signatures",
	})

	SignaturesAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosigner_signatures_accepted_total",
		Help: "The total number of owner signatures accepted",
	}, []string{"chain_id"})

	SignaturesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosigner_signatures_rejected_total",
		Help: "The total number of rejected signature submissions by reason",
	}, []string{"chain_id", "reason"})

	DuplicateSignatures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosigner_duplicate_signatures_total",
		Help: "The number of idempotent duplicate signature submissions",
	}, []string{"chain_id"})

	SignatureValidationTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cosigner_signature_validation_seconds",
		Help:    "Time taken to validate a wrapped signature on chain",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"chain_id"})

	IntentsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosigner_intents_submitted_total",
		Help: "The total number of intent submissions by outcome",
	}, []string{"chain_id", "outcome"})

	SubmissionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosigner_submission_errors_total",
		Help: "Total number of submission errors by type",
	}, []string{"chain_id", "error_type"})

	SubmissionTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cosigner_submission_seconds",
		Help:    "Time from submit request to on-chain confirmation",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"chain_id"})

	GasUsed = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cosigner_gas_used",
		Help:    "Gas used by account execute transactions",
		Buckets: prometheus.ExponentialBuckets(21000, 2, 10),
	}, []string{"chain_id"})

	GasPrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cosigner_gas_price_gwei",
		Help: "Current gas price in gwei",
	}, []string{"chain_id"})
)

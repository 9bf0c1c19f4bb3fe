package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindcare_user_deletions_total",
			Help: "User deletions by outcome",
		},
		[]string{"outcome"},
	)

	verificationChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindcare_verification_changes_total",
			Help: "Counsellor verification transitions by target status",
		},
		[]string{"status"},
	)

	pushMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindcare_push_messages_total",
			Help: "Push messages submitted to the provider by outcome",
		},
		[]string{"outcome"},
	)

	pushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mindcare_push_request_duration_seconds",
			Help:    "Latency of single push provider requests",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func outcomeLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// internal/utils/metrics/collector.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector управляет набором метрик лаунчпада
type Collector struct {
	tradeCounter       *prometheus.CounterVec
	settlementDuration *prometheus.HistogramVec
	commitConflicts    prometheus.Counter
	graduations        prometheus.Counter
	raisedAmount       *prometheus.GaugeVec
	creatorRewards     prometheus.Counter
}

// NewCollector создает коллектор и регистрирует метрики в reg.
// nil регистрирует метрики в prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		tradeCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "launchpad",
				Name:      "trades_total",
				Help:      "Total number of trades processed by the curve",
			},
			[]string{"side", "status"},
		),
		settlementDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "launchpad",
				Name:      "settlement_duration_seconds",
				Help:      "Time from snapshot read to committed trade",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
			[]string{"side"},
		),
		commitConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "commit_conflicts_total",
			Help:      "Optimistic commits rejected because the token version moved",
		}),
		graduations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "graduations_total",
			Help:      "Tokens that crossed the net raise target",
		}),
		raisedAmount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "launchpad",
				Name:      "raised_amount",
				Help:      "Net base currency raised per token",
			},
			[]string{"token"},
		),
		creatorRewards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "creator_rewards_earned_total",
			Help:      "Creator rewards accrued across all creators",
		}),
	}

	reg.MustRegister(
		c.tradeCounter,
		c.settlementDuration,
		c.commitConflicts,
		c.graduations,
		c.raisedAmount,
		c.creatorRewards,
	)
	return c
}

// Reset сбрасывает векторные метрики (полезно для тестирования)
func (c *Collector) Reset() {
	c.tradeCounter.Reset()
	c.settlementDuration.Reset()
	c.raisedAmount.Reset()
}

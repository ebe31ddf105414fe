// internal/utils/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"time"
)

// RecordTrade записывает метрики сделки с учетом контекста
func (c *Collector) RecordTrade(ctx context.Context, side string, duration time.Duration, err error) {
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		status = "cancelled"
	default:
		status = "failed"
	}

	c.tradeCounter.WithLabelValues(side, status).Inc()
	if err == nil {
		c.settlementDuration.WithLabelValues(side).Observe(duration.Seconds())
	}
}

// RecordConflict учитывает отклоненный оптимистичный коммит
func (c *Collector) RecordConflict() {
	c.commitConflicts.Inc()
}

// RecordGraduation учитывает выпуск токена с кривой
func (c *Collector) RecordGraduation() {
	c.graduations.Inc()
}

// UpdateRaised обновляет собранную сумму по токену
func (c *Collector) UpdateRaised(token string, raised float64) {
	c.raisedAmount.WithLabelValues(token).Set(raised)
}

// AddCreatorReward прибавляет начисленное вознаграждение создателю
func (c *Collector) AddCreatorReward(amount float64) {
	if amount > 0 {
		c.creatorRewards.Add(amount)
	}
}

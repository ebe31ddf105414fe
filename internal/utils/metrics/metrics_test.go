package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTrade(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	ctx := context.Background()

	c.RecordTrade(ctx, "buy", 5*time.Millisecond, nil)
	c.RecordTrade(ctx, "buy", time.Millisecond, errors.New("boom"))
	c.RecordTrade(ctx, "sell", time.Millisecond, context.Canceled)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.tradeCounter.WithLabelValues("buy", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.tradeCounter.WithLabelValues("buy", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.tradeCounter.WithLabelValues("sell", "cancelled")))
}

func TestCountersAndGauges(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordConflict()
	c.RecordConflict()
	c.RecordGraduation()
	c.UpdateRaised("0xtoken", 12.5)
	c.AddCreatorReward(0.25)
	c.AddCreatorReward(-1)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.commitConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.graduations))
	assert.Equal(t, 12.5, testutil.ToFloat64(c.raisedAmount.WithLabelValues("0xtoken")))
	assert.Equal(t, 0.25, testutil.ToFloat64(c.creatorRewards))

	c.Reset()
	assert.Equal(t, 0.0, testutil.ToFloat64(c.raisedAmount.WithLabelValues("0xtoken")))
}

// internal/launchpad/rewards.go
package launchpad

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cenkalti/backoff/v5"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/rovshanmuradov/launchpad/pkg/rewards"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Rewards возвращает сводку создателя; у создателя без сделок она пустая
func (s *Service) Rewards(ctx context.Context, creator string) (rewards.RewardSummary, error) {
	if strings.TrimSpace(creator) == "" {
		return rewards.RewardSummary{}, fmt.Errorf("%w: creator is required", ErrInvalidRequest)
	}
	return s.rewardSnapshot(ctx, creator)
}

// RewardSummaries возвращает сводки всех создателей
func (s *Service) RewardSummaries(ctx context.Context) ([]rewards.RewardSummary, error) {
	return s.store.ListRewardSummaries(ctx)
}

// Policy возвращает действующую политику вознаграждений
func (s *Service) Policy() rewards.Policy {
	return s.engine.Policy()
}

// MarkPaid списывает выплату с начисленных, но не выплаченных вознаграждений
func (s *Service) MarkPaid(ctx context.Context, creator string, amount float64) (rewards.RewardSummary, error) {
	op := func() (rewards.RewardSummary, error) {
		summary, err := s.store.GetRewardSummary(ctx, creator)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return rewards.RewardSummary{}, backoff.Permanent(
					fmt.Errorf("%w: no rewards recorded for %s", rewards.ErrOverpayment, creator))
			}
			return rewards.RewardSummary{}, backoff.Permanent(err)
		}
		paid, err := s.engine.MarkPaid(summary, amount)
		if err != nil {
			return rewards.RewardSummary{}, backoff.Permanent(err)
		}
		if err := s.store.PutRewardSummary(ctx, paid, summary.Version); err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				return rewards.RewardSummary{}, err
			}
			return rewards.RewardSummary{}, backoff.Permanent(err)
		}
		return paid, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retry.InitialInterval
	policy.MaxInterval = s.retry.MaxInterval

	paid, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(s.retry.MaxRetries+1)),
		backoff.WithMaxElapsedTime(s.retry.RetryWindow))
	if err != nil {
		return rewards.RewardSummary{}, err
	}

	s.logger.WithCreator(creator).Info("Reward payout recorded",
		zap.Float64("amount", amount),
		zap.Float64("pending", paid.Pending()))
	s.publish(events.RewardPaidEvent{
		BaseEvent: events.NewBase(events.RewardPaid, events.Subject{Creator: creator}),
		Amount:    amount,
		Pending:   paid.Pending(),
	})
	return paid, nil
}

// ReplayReport сравнивает сохраненную сводку с пересчитанной из истории сделок
type ReplayReport struct {
	Creator      string                `json:"creator"`
	Stored       rewards.RewardSummary `json:"stored"`
	Rebuilt      rewards.RewardSummary `json:"rebuilt"`
	Achievements []rewards.Achievement `json:"achievements,omitempty"`
	Matches      bool                  `json:"matches"`
}

// ReplayRewards пересчитывает сводку каждого создателя из истории сделок, параллельно по
// создателям. Хранилище не изменяется. Выплаты и версия в пересчитанную сводку
// переносятся из сохраненной.
func (s *Service) ReplayRewards(ctx context.Context) ([]ReplayReport, error) {
	defer s.logger.TrackPerformance("replay_rewards")()

	trades, err := s.store.ListTrades(ctx, storage.TradeFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load trade history: %w", err)
	}

	volumes := make(map[string][]float64)
	for i := range trades {
		volumes[trades[i].Creator] = append(volumes[trades[i].Creator], trades[i].BaseVolume)
	}
	creators := make([]string, 0, len(volumes))
	for c := range volumes {
		creators = append(creators, c)
	}
	sort.Strings(creators)

	reports := make([]ReplayReport, len(creators))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.retry.ReplayWorkers)

	for i, creator := range creators {
		g.Go(func() error {
			rebuilt, achievements, err := s.engine.Replay(creator, volumes[creator])
			if err != nil {
				return fmt.Errorf("replay of %s: %w", creator, err)
			}
			stored, err := s.rewardSnapshot(gctx, creator)
			if err != nil {
				return err
			}
			rebuilt.TotalRewardsPaid = stored.TotalRewardsPaid
			rebuilt.Version = stored.Version

			reports[i] = ReplayReport{
				Creator:      creator,
				Stored:       stored,
				Rebuilt:      rebuilt,
				Achievements: achievements,
				Matches:      summariesMatch(stored, rebuilt),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range reports {
		if !r.Matches {
			s.logger.WithCreator(r.Creator).Warn("Stored rewards diverge from trade history",
				zap.Float64("stored_volume", r.Stored.TotalVolume),
				zap.Float64("rebuilt_volume", r.Rebuilt.TotalVolume),
				zap.String("stored_tier", r.Stored.Tier),
				zap.String("rebuilt_tier", r.Rebuilt.Tier))
		}
	}
	return reports, nil
}

func summariesMatch(a, b rewards.RewardSummary) bool {
	return a.Creator == b.Creator &&
		a.Tier == b.Tier &&
		a.TradeCount == b.TradeCount &&
		closeEnough(a.TotalVolume, b.TotalVolume) &&
		closeEnough(a.TotalRewardsEarned, b.TotalRewardsEarned)
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

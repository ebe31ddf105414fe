// internal/launchpad/trade.go
package launchpad

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"github.com/rovshanmuradov/launchpad/pkg/bondingcurve"
	"github.com/rovshanmuradov/launchpad/pkg/rewards"
	"go.uber.org/zap"
)

// TradeRequest: заявка на сделку.
// Для покупки Amount задается в базовой валюте, для продажи в токенах.
type TradeRequest struct {
	Token  string
	Trader string
	Amount float64
	// MinOut: минимально допустимый выход (токены для покупки, нетто-выручка для продажи).
	// Ноль отключает проверку.
	MinOut float64
}

// Settlement: результат зафиксированной сделки
type Settlement struct {
	Trade  models.Trade
	Result bondingcurve.TradeResult
	Token  *models.Token
	Reward rewards.Update
	// Graduated is true only for the trade that crossed the raise target.
	Graduated bool
	Attempts  int
}

// Buy покупает токены на req.Amount базовой валюты
func (s *Service) Buy(ctx context.Context, req TradeRequest) (*Settlement, error) {
	return s.settle(ctx, bondingcurve.Buy, req)
}

// Sell продает req.Amount токенов обратно в кривую
func (s *Service) Sell(ctx context.Context, req TradeRequest) (*Settlement, error) {
	return s.settle(ctx, bondingcurve.Sell, req)
}

func (s *Service) settle(ctx context.Context, side bondingcurve.Side, req TradeRequest) (*Settlement, error) {
	if req.Token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidRequest)
	}
	if req.MinOut < 0 || math.IsNaN(req.MinOut) {
		return nil, fmt.Errorf("%w: min out %g", ErrInvalidRequest, req.MinOut)
	}

	log := s.logger.WithToken(req.Token).With(
		zap.String("side", string(side)),
		zap.String("trader", req.Trader),
		zap.Float64("amount", req.Amount))
	start := time.Now()

	attempts := 0
	op := func() (*Settlement, error) {
		attempts++
		st, err := s.trySettle(ctx, side, req)
		if err == nil {
			return st, nil
		}
		if errors.Is(err, storage.ErrVersionConflict) {
			if s.metrics != nil {
				s.metrics.RecordConflict()
			}
			log.Debug("Snapshot moved, retrying", zap.Int("attempt", attempts), zap.Error(err))
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retry.InitialInterval
	policy.MaxInterval = s.retry.MaxInterval

	st, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(s.retry.MaxRetries+1)),
		backoff.WithMaxElapsedTime(s.retry.RetryWindow))

	if s.metrics != nil {
		s.metrics.RecordTrade(ctx, string(side), time.Since(start), err)
	}
	if err != nil {
		if IsClientError(err) {
			log.Info("Trade rejected", zap.Error(err))
		} else {
			log.Error("Trade failed", zap.Int("attempts", attempts), zap.Error(err))
		}
		return nil, err
	}

	st.Attempts = attempts
	s.afterSettle(st)

	log.Info("Trade settled",
		zap.String("trade_id", st.Trade.ID),
		zap.Float64("amount_out", st.Result.AmountOut),
		zap.Float64("supply_after", st.Token.CurrentSupply),
		zap.Float64("raised_after", st.Token.RaisedAmount),
		zap.Int("attempts", attempts),
		zap.Duration("elapsed", time.Since(start)))
	return st, nil
}

// trySettle выполняет один раунд чтение-расчет-CAS
func (s *Service) trySettle(ctx context.Context, side bondingcurve.Side, req TradeRequest) (*Settlement, error) {
	token, err := s.tradable(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	var result bondingcurve.TradeResult
	if side == bondingcurve.Buy {
		result, err = s.curve.SimulateBuy(req.Amount, token.CurrentSupply)
	} else {
		result, err = s.curve.SimulateSell(req.Amount, token.CurrentSupply)
	}
	if err != nil {
		return nil, err
	}
	if result.AmountOut < req.MinOut {
		return nil, fmt.Errorf("%w: %s out %g below minimum %g",
			ErrSlippageExceeded, side, result.AmountOut, req.MinOut)
	}

	prevReward, err := s.rewardSnapshot(ctx, token.Creator)
	if err != nil {
		return nil, err
	}
	upd, err := s.engine.RecordTrade(token.Creator, prevReward, result.BaseVolume())
	if err != nil {
		return nil, fmt.Errorf("failed to compute creator reward: %w", err)
	}

	now := s.now().UTC()
	next := token.Clone()
	next.CurrentSupply = result.SupplyAfter
	next.RaisedAmount, err = s.raisedAfter(token, result)
	if err != nil {
		return nil, err
	}
	next.Version = token.Version + 1
	next.UpdatedAt = now

	graduated := s.curve.Graduates(next.RaisedAmount)
	if graduated {
		next.Graduated = true
		next.GraduatedAt = &now
	}

	trade := models.Trade{
		ID:                 uuid.New().String(),
		TokenAddress:       token.Address,
		Creator:            token.Creator,
		Trader:             req.Trader,
		Side:               string(side),
		AmountIn:           result.AmountIn,
		AmountOut:          result.AmountOut,
		TotalFee:           result.TotalFee,
		PlatformFee:        result.PlatformFee,
		CreatorFee:         result.CreatorFee,
		NetAmount:          result.NetAmount,
		BaseVolume:         result.BaseVolume(),
		PriceBefore:        result.PriceBefore,
		PriceAfter:         result.PriceAfter,
		PriceImpactPercent: result.PriceImpactPercent,
		SupplyAfter:        next.CurrentSupply,
		RaisedAfter:        next.RaisedAmount,
		Graduated:          graduated,
		Timestamp:          now,
	}

	err = s.store.CommitTrade(ctx, storage.TradeCommit{
		Token:                 next,
		ExpectedVersion:       token.Version,
		Trade:                 trade,
		Reward:                &upd.Summary,
		ExpectedRewardVersion: prevReward.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit trade on %s: %w", token.Address, err)
	}

	return &Settlement{
		Trade:     trade,
		Result:    result,
		Token:     next,
		Reward:    upd,
		Graduated: graduated,
	}, nil
}

// raisedAfter: покупка добавляет нетто-сумму, продажа снимает валовую выручку.
// Покупка никогда не стоит меньше интеграла кривой, поэтому raised покрывает обратный
// выкуп всего проданного предложения; отрицательный остаток допустим только в пределах
// погрешности округления.
func (s *Service) raisedAfter(token *models.Token, result bondingcurve.TradeResult) (float64, error) {
	if result.Side == bondingcurve.Buy {
		return token.RaisedAmount + result.NetAmount, nil
	}
	raised := token.RaisedAmount - result.BaseVolume()
	if raised < 0 {
		if -raised > raisedTolerance*math.Max(token.RaisedAmount, result.BaseVolume()) {
			return 0, fmt.Errorf("%w: proceeds %g, raised %g on %s",
				ErrRaisedUnderflow, result.BaseVolume(), token.RaisedAmount, token.Address)
		}
		raised = 0
	}
	return raised, nil
}

// raisedTolerance is the relative rounding slack allowed when a sale empties the curve.
const raisedTolerance = 1e-9

func (s *Service) rewardSnapshot(ctx context.Context, creator string) (rewards.RewardSummary, error) {
	summary, err := s.store.GetRewardSummary(ctx, creator)
	if errors.Is(err, storage.ErrNotFound) {
		return s.engine.NewSummary(creator), nil
	}
	if err != nil {
		return rewards.RewardSummary{}, fmt.Errorf("failed to load rewards of %s: %w", creator, err)
	}
	return summary, nil
}

// afterSettle публикует события и обновляет метрики уже зафиксированной сделки
func (s *Service) afterSettle(st *Settlement) {
	if s.metrics != nil {
		s.metrics.UpdateRaised(st.Token.Address, st.Token.RaisedAmount)
		s.metrics.AddCreatorReward(st.Reward.Reward)
		if st.Graduated {
			s.metrics.RecordGraduation()
		}
	}

	about := subjectOf(st.Token)
	s.publish(events.TradeSettledEvent{
		BaseEvent:   events.NewBase(events.TradeSettled, about),
		TradeID:     st.Trade.ID,
		Trader:      st.Trade.Trader,
		Side:        st.Trade.Side,
		AmountIn:    st.Trade.AmountIn,
		AmountOut:   st.Trade.AmountOut,
		TotalFee:    st.Trade.TotalFee,
		PriceAfter:  st.Trade.PriceAfter,
		SupplyAfter: st.Trade.SupplyAfter,
		RaisedAfter: st.Trade.RaisedAfter,
		Attempts:    st.Attempts,
	})

	if st.Graduated {
		s.logger.WithToken(st.Token.Address).Info("Token graduated",
			zap.Float64("raised", st.Token.RaisedAmount),
			zap.Float64("supply", st.Token.CurrentSupply))
		s.publish(s.graduationEvent(st.Token))
	}

	if st.Reward.TierChange != nil {
		s.logger.WithCreator(st.Trade.Creator).Info("Creator tier upgraded",
			zap.String("from", st.Reward.TierChange.From.Name),
			zap.String("to", st.Reward.TierChange.To.Name))
		s.publish(events.TierUpgradedEvent{
			BaseEvent: events.NewBase(events.TierUpgraded, about),
			Change:    *st.Reward.TierChange,
		})
	}
	for _, a := range st.Reward.Achievements {
		s.publish(events.AchievementUnlockedEvent{
			BaseEvent:   events.NewBase(events.AchievementUnlocked, about),
			Achievement: a,
		})
	}
}

// graduationEvent описывает выпуск токена; пулы не заполняются, если состояние кривой
// не удалось вычислить
func (s *Service) graduationEvent(token *models.Token) events.TokenGraduatedEvent {
	ev := events.TokenGraduatedEvent{
		BaseEvent:     events.NewBase(events.TokenGraduated, subjectOf(token)),
		RaisedAmount:  token.RaisedAmount,
		CurrentSupply: token.CurrentSupply,
	}
	state, err := s.curve.State(token.RaisedAmount, token.CurrentSupply)
	if err != nil {
		s.logger.LogError("Failed to derive graduation pools", err, zap.String("token", token.Address))
		return ev
	}
	ev.Pools = &events.GraduationPools{
		Curve:     state.CurvePoolAmount,
		Liquidity: state.LiquidityPoolAmount,
	}
	return ev
}

func subjectOf(token *models.Token) events.Subject {
	return events.Subject{Token: token.Address, Creator: token.Creator}
}

// pkg/rewards/engine.go
package rewards

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidVolume is returned for negative or non-finite trade volumes and payouts.
	ErrInvalidVolume = errors.New("invalid volume")
	// ErrInvalidPolicy is returned by NewPolicy for a malformed tier ladder or milestone list.
	ErrInvalidPolicy = errors.New("invalid reward policy")
	// ErrOverpayment is returned when a payout would exceed earned rewards.
	ErrOverpayment = errors.New("payout exceeds earned rewards")
	// ErrCreatorMismatch is returned when a summary is applied to another creator.
	ErrCreatorMismatch = errors.New("summary belongs to another creator")
)

// RewardSummary is the long-lived reward accumulator of one creator. It is owned by the
// caller's storage; the engine only computes the next value.
type RewardSummary struct {
	Creator            string  `json:"creator"`
	TotalVolume        float64 `json:"total_volume"`
	TotalRewardsEarned float64 `json:"total_rewards_earned"`
	TotalRewardsPaid   float64 `json:"total_rewards_paid"`
	Tier               string  `json:"tier"`
	TradeCount         int     `json:"trade_count"`
	// Version grows by one with every trade and payout applied to the summary.
	Version uint64 `json:"version"`
}

// Pending returns earned but not yet paid rewards.
func (s RewardSummary) Pending() float64 {
	return s.TotalRewardsEarned - s.TotalRewardsPaid
}

// Achievement is emitted when cumulative volume crosses a milestone.
type Achievement struct {
	Creator   string    `json:"creator"`
	Milestone Milestone `json:"milestone"`
	// Volume is the cumulative volume after the trade that crossed the milestone.
	Volume float64 `json:"volume"`
}

// TierChange is emitted when a trade moves the creator up the ladder.
type TierChange struct {
	Creator string `json:"creator"`
	From    Tier   `json:"from"`
	To      Tier   `json:"to"`
}

// Update is the result of applying one trade to a summary.
type Update struct {
	Summary RewardSummary `json:"summary"`
	// CreatorFee is the creator's share of the fee charged on the trade volume.
	CreatorFee float64 `json:"creator_fee"`
	// Multiplier is the tier multiplier the reward was earned at.
	Multiplier   float64       `json:"multiplier"`
	Reward       float64       `json:"reward"`
	Achievements []Achievement `json:"achievements,omitempty"`
	TierChange   *TierChange   `json:"tier_change,omitempty"`
}

// Engine applies trades to reward summaries under a Policy. It holds no mutable state.
type Engine struct {
	policy Policy
}

// NewEngine returns an engine for policy.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// NewSummary returns the starting summary for a creator.
func (e *Engine) NewSummary(creator string) RewardSummary {
	return RewardSummary{Creator: creator, Tier: e.policy.tiers[0].Name}
}

// RecordTrade adds tradeVolume to prev and returns the next summary together with the
// reward earned and any unlocked achievements.
//
// The reward is the creator fee on tradeVolume scaled by the multiplier of the tier held
// before the trade. Tiers only move up: the new tier is the higher of the held tier and
// the tier the new cumulative volume qualifies for.
func (e *Engine) RecordTrade(creator string, prev RewardSummary, tradeVolume float64) (Update, error) {
	if !finite(tradeVolume) || tradeVolume < 0 {
		return Update{}, fmt.Errorf("%w: trade volume %g", ErrInvalidVolume, tradeVolume)
	}
	if prev.Creator == "" && prev.TotalVolume == 0 && prev.TradeCount == 0 && prev.Version == 0 {
		prev = e.NewSummary(creator)
	}
	if prev.Creator != creator {
		return Update{}, fmt.Errorf("%w: %q applied to %q", ErrCreatorMismatch, prev.Creator, creator)
	}

	fee, err := e.policy.curve.FeeOn(tradeVolume)
	if err != nil {
		return Update{}, fmt.Errorf("failed to compute trade fee: %w", err)
	}
	split, err := e.policy.curve.SplitFee(fee)
	if err != nil {
		return Update{}, fmt.Errorf("failed to split trade fee: %w", err)
	}

	heldIdx := e.policy.tierIndex(prev.Tier)
	if heldIdx < 0 {
		heldIdx = e.policy.tierIndexFor(prev.TotalVolume)
	}
	held := e.policy.tiers[heldIdx]
	reward := split.CreatorFee * held.Multiplier

	next := prev
	next.TotalVolume = prev.TotalVolume + tradeVolume
	next.TotalRewardsEarned = prev.TotalRewardsEarned + reward
	next.TradeCount = prev.TradeCount + 1
	next.Version = prev.Version + 1

	newIdx := e.policy.tierIndexFor(next.TotalVolume)
	if newIdx < heldIdx {
		newIdx = heldIdx
	}
	next.Tier = e.policy.tiers[newIdx].Name

	upd := Update{
		Summary:      next,
		CreatorFee:   split.CreatorFee,
		Multiplier:   held.Multiplier,
		Reward:       reward,
		Achievements: e.crossedMilestones(creator, prev.TotalVolume, next.TotalVolume),
	}
	if newIdx > heldIdx {
		upd.TierChange = &TierChange{Creator: creator, From: held, To: e.policy.tiers[newIdx]}
	}
	return upd, nil
}

// crossedMilestones returns the milestones m with prev < m <= next.
func (e *Engine) crossedMilestones(creator string, prev, next float64) []Achievement {
	var out []Achievement
	for _, m := range e.policy.milestones {
		if prev < m.Volume && m.Volume <= next {
			out = append(out, Achievement{Creator: creator, Milestone: m, Volume: next})
		}
	}
	return out
}

// Replay folds a trade history into a summary, starting from an empty one.
func (e *Engine) Replay(creator string, volumes []float64) (RewardSummary, []Achievement, error) {
	summary := e.NewSummary(creator)
	var achievements []Achievement
	for i, v := range volumes {
		upd, err := e.RecordTrade(creator, summary, v)
		if err != nil {
			return RewardSummary{}, nil, fmt.Errorf("trade %d: %w", i, err)
		}
		summary = upd.Summary
		achievements = append(achievements, upd.Achievements...)
	}
	return summary, achievements, nil
}

// MarkPaid records a payout of amount against earned rewards.
func (e *Engine) MarkPaid(summary RewardSummary, amount float64) (RewardSummary, error) {
	if !finite(amount) || amount < 0 {
		return RewardSummary{}, fmt.Errorf("%w: payout %g", ErrInvalidVolume, amount)
	}
	if amount > summary.Pending() {
		return RewardSummary{}, fmt.Errorf("%w: payout %g, pending %g", ErrOverpayment, amount, summary.Pending())
	}
	summary.TotalRewardsPaid += amount
	summary.Version++
	return summary, nil
}

// internal/events/types.go
package events

import (
	"time"

	"github.com/rovshanmuradov/launchpad/pkg/rewards"
)

// EventType represents the type of event.
type EventType string

const (
	// Token lifecycle
	TokenCreated   EventType = "token.created"
	TokenGraduated EventType = "token.graduated"

	// Trading
	TradeSettled EventType = "trade.settled"

	// Creator rewards
	TierUpgraded        EventType = "reward.tier_upgraded"
	AchievementUnlocked EventType = "reward.achievement_unlocked"
	RewardPaid          EventType = "reward.paid"
)

// Subject names the token and the creator an event is about. Reward events that are not
// tied to a single trade leave Token empty.
type Subject struct {
	Token   string
	Creator string
}

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
	About() Subject
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
	Subject   Subject
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// About returns the token and creator the event concerns.
func (e BaseEvent) About() Subject {
	return e.Subject
}

// NewBase stamps an event of type t about subject with the current time.
func NewBase(t EventType, subject Subject) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now(), Subject: subject}
}

// TokenCreatedEvent is emitted when a token is listed on the curve.
type TokenCreatedEvent struct {
	BaseEvent
	Symbol string
}

// TradeSettledEvent is emitted after a trade is committed to storage.
type TradeSettledEvent struct {
	BaseEvent
	TradeID     string
	Trader      string
	Side        string
	AmountIn    float64
	AmountOut   float64
	TotalFee    float64
	PriceAfter  float64
	SupplyAfter float64
	RaisedAfter float64
	// Attempts is the number of compare-and-swap rounds the settlement took.
	Attempts int
}

// GraduationPools is the split of the raise between the curve and liquidity pools.
type GraduationPools struct {
	Curve     float64
	Liquidity float64
}

// TokenGraduatedEvent is emitted once, by the trade that reaches the net raise target.
type TokenGraduatedEvent struct {
	BaseEvent
	RaisedAmount  float64
	CurrentSupply float64
	// Pools is nil when the split could not be derived from the committed state.
	Pools *GraduationPools
}

// TierUpgradedEvent is emitted when a creator moves up the tier ladder.
type TierUpgradedEvent struct {
	BaseEvent
	Change rewards.TierChange
}

// AchievementUnlockedEvent is emitted for every milestone a trade crosses.
type AchievementUnlockedEvent struct {
	BaseEvent
	Achievement rewards.Achievement
}

// RewardPaidEvent is emitted when a payout is recorded against earned rewards.
type RewardPaidEvent struct {
	BaseEvent
	Amount  float64
	Pending float64
}

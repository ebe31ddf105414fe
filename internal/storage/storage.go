// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"github.com/rovshanmuradov/launchpad/pkg/rewards"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrVersionConflict = errors.New("version conflict")
)

// TradeCommit: атомарная фиксация сделки: новое состояние токена, запись сделки и
// (опционально) новая сводка вознаграждений создателя.
type TradeCommit struct {
	// Token: состояние после сделки; Version должна быть ExpectedVersion+1
	Token           *models.Token
	ExpectedVersion uint64
	Trade           models.Trade

	// Reward: сводка после сделки; ExpectedRewardVersion: версия сводки в снимке,
	// по которому она была рассчитана. Reward.Version должна быть на единицу больше.
	Reward                *rewards.RewardSummary
	ExpectedRewardVersion uint64
}

// TradeFilter ограничивает выборку сделок; пустые поля не фильтруют
type TradeFilter struct {
	TokenAddress string
	Creator      string
	Side         string
	Since        time.Time
	Until        time.Time
	Limit        int
}

// Match сообщает, подходит ли сделка под фильтр (без учета Limit)
func (f TradeFilter) Match(t *models.Trade) bool {
	if f.TokenAddress != "" && t.TokenAddress != f.TokenAddress {
		return false
	}
	if f.Creator != "" && t.Creator != f.Creator {
		return false
	}
	if f.Side != "" && t.Side != f.Side {
		return false
	}
	if !f.Since.IsZero() && t.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && t.Timestamp.After(f.Until) {
		return false
	}
	return true
}

// Storage определяет интерфейс для работы с хранилищем состояния лаунчпада.
// Хранилище владеет всем изменяемым состоянием; расчеты кривой в нем не выполняются.
type Storage interface {
	// Токены
	CreateToken(ctx context.Context, token *models.Token) error
	GetToken(ctx context.Context, address string) (*models.Token, error)
	ListTokens(ctx context.Context) ([]*models.Token, error)

	// Сделки: compare-and-swap по версии токена и версии сводки создателя
	CommitTrade(ctx context.Context, commit TradeCommit) error
	ListTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)

	// Вознаграждения
	GetRewardSummary(ctx context.Context, creator string) (rewards.RewardSummary, error)
	ListRewardSummaries(ctx context.Context) ([]rewards.RewardSummary, error)
	PutRewardSummary(ctx context.Context, summary rewards.RewardSummary, expectedVersion uint64) error

	Close() error
}

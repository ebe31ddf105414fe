// internal/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"github.com/rovshanmuradov/launchpad/pkg/rewards"
	"go.uber.org/zap"
)

// Store: потокобезопасное хранилище в памяти
type Store struct {
	mu      sync.RWMutex
	tokens  map[string]*models.Token
	trades  []models.Trade
	rewards map[string]rewards.RewardSummary
	logger  *zap.Logger
}

var _ storage.Storage = (*Store)(nil)

// New создает пустое хранилище
func New(logger *zap.Logger) *Store {
	return &Store{
		tokens:  make(map[string]*models.Token),
		rewards: make(map[string]rewards.RewardSummary),
		logger:  logger.Named("memory_store"),
	}
}

func (s *Store) CreateToken(ctx context.Context, token *models.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[token.Address]; ok {
		return fmt.Errorf("token %s: %w", token.Address, storage.ErrAlreadyExists)
	}
	s.tokens[token.Address] = token.Clone()

	s.logger.Debug("Token stored", zap.String("token", token.Address))
	return nil
}

func (s *Store) GetToken(ctx context.Context, address string) (*models.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[address]
	if !ok {
		return nil, fmt.Errorf("token %s: %w", address, storage.ErrNotFound)
	}
	return t.Clone(), nil
}

func (s *Store) ListTokens(ctx context.Context) ([]*models.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Token, 0, len(s.tokens))
	for _, t := range s.tokens {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// CommitTrade применяет сделку целиком или не применяет ничего
func (s *Store) CommitTrade(ctx context.Context, commit storage.TradeCommit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tokens[commit.Token.Address]
	if !ok {
		return fmt.Errorf("token %s: %w", commit.Token.Address, storage.ErrNotFound)
	}
	if current.Version != commit.ExpectedVersion {
		return fmt.Errorf("token %s at version %d, expected %d: %w",
			current.Address, current.Version, commit.ExpectedVersion, storage.ErrVersionConflict)
	}
	if commit.Token.Version != commit.ExpectedVersion+1 {
		return fmt.Errorf("token %s must advance to version %d, got %d",
			current.Address, commit.ExpectedVersion+1, commit.Token.Version)
	}

	if commit.Reward != nil {
		if err := s.checkReward(*commit.Reward, commit.ExpectedRewardVersion); err != nil {
			return err
		}
		s.rewards[commit.Reward.Creator] = *commit.Reward
	}

	s.tokens[current.Address] = commit.Token.Clone()
	s.trades = append(s.trades, commit.Trade)
	return nil
}

func (s *Store) ListTrades(ctx context.Context, filter storage.TradeFilter) ([]models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Trade
	for i := range s.trades {
		if !filter.Match(&s.trades[i]) {
			continue
		}
		out = append(out, s.trades[i])
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) GetRewardSummary(ctx context.Context, creator string) (rewards.RewardSummary, error) {
	if err := ctx.Err(); err != nil {
		return rewards.RewardSummary{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.rewards[creator]
	if !ok {
		return rewards.RewardSummary{}, fmt.Errorf("rewards of %s: %w", creator, storage.ErrNotFound)
	}
	return summary, nil
}

func (s *Store) ListRewardSummaries(ctx context.Context) ([]rewards.RewardSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]rewards.RewardSummary, 0, len(s.rewards))
	for _, r := range s.rewards {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Creator < out[j].Creator })
	return out, nil
}

// PutRewardSummary перезаписывает сводку, если ее версия не изменилась с момента чтения
func (s *Store) PutRewardSummary(ctx context.Context, summary rewards.RewardSummary, expectedVersion uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkReward(summary, expectedVersion); err != nil {
		return err
	}
	s.rewards[summary.Creator] = summary
	return nil
}

// checkReward: сохраненная сводка должна быть на expected, новая на expected+1.
// Вызывается под s.mu.
func (s *Store) checkReward(summary rewards.RewardSummary, expected uint64) error {
	held := s.rewards[summary.Creator]
	if held.Version != expected {
		return fmt.Errorf("rewards of %s at version %d, expected %d: %w",
			summary.Creator, held.Version, expected, storage.ErrVersionConflict)
	}
	if summary.Version != expected+1 {
		return fmt.Errorf("rewards of %s must advance to version %d, got %d",
			summary.Creator, expected+1, summary.Version)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

// internal/launchpad/service.go
package launchpad

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rovshanmuradov/launchpad/internal/config"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"github.com/rovshanmuradov/launchpad/internal/utils/logger"
	"github.com/rovshanmuradov/launchpad/internal/utils/metrics"
	"github.com/rovshanmuradov/launchpad/pkg/bondingcurve"
	"github.com/rovshanmuradov/launchpad/pkg/rewards"
	"go.uber.org/zap"
)

// Service связывает чистую математику кривой с хранилищем: читает снимок,
// считает сделку и фиксирует ее через compare-and-swap, повторяя при конфликте версий.
type Service struct {
	store   storage.Storage
	curve   bondingcurve.Curve
	engine  *rewards.Engine
	events  events.Publisher
	metrics *metrics.Collector
	logger  *logger.Logger
	retry   config.ServiceConfig
	now     func() time.Time
}

// Options: зависимости сервиса. Publisher и Metrics необязательны.
type Options struct {
	Store     storage.Storage
	Policy    rewards.Policy
	Publisher events.Publisher
	Metrics   *metrics.Collector
	Logger    *zap.Logger
	Retry     config.ServiceConfig
	// Clock подменяет time.Now в тестах
	Clock func() time.Time
}

// NewService создает сервис. Кривая берется из политики вознаграждений, чтобы комиссии
// сделок и вознаграждения создателей считались по одним ставкам.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidRequest)
	}
	if len(opts.Policy.Tiers()) == 0 {
		return nil, fmt.Errorf("%w: reward policy is required", ErrInvalidRequest)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Retry == (config.ServiceConfig{}) {
		opts.Retry = config.DefaultServiceConfig()
	}
	if err := opts.Retry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Service{
		store:   opts.Store,
		curve:   opts.Policy.Curve(),
		engine:  rewards.NewEngine(opts.Policy),
		events:  opts.Publisher,
		metrics: opts.Metrics,
		logger:  logger.Wrap(opts.Logger.Named("launchpad")),
		retry:   opts.Retry,
		now:     opts.Clock,
	}

	s.logger.Info("Launchpad service initialized",
		zap.Float64("net_raise_target", s.curve.Config().NetRaiseTarget()),
		zap.Int("max_retries", s.retry.MaxRetries))
	return s, nil
}

// Curve возвращает кривую, по которой сервис рассчитывает сделки
func (s *Service) Curve() bondingcurve.Curve {
	return s.curve
}

// CreateTokenRequest описывает новый токен
type CreateTokenRequest struct {
	// Address генерируется, если пуст
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Creator string `json:"creator"`
}

// CreateToken регистрирует токен с нулевыми supply и raised
func (s *Service) CreateToken(ctx context.Context, req CreateTokenRequest) (*models.Token, error) {
	if strings.TrimSpace(req.Creator) == "" {
		return nil, fmt.Errorf("%w: creator is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Symbol) == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidRequest)
	}
	if req.Address == "" {
		req.Address = uuid.New().String()
	}

	now := s.now().UTC()
	token := &models.Token{
		Address:   req.Address,
		Name:      req.Name,
		Symbol:    req.Symbol,
		Creator:   req.Creator,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateToken(ctx, token); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %s", ErrTokenExists, req.Address)
		}
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	s.logger.WithToken(token.Address).Info("Token created",
		zap.String("symbol", token.Symbol),
		zap.String("creator", token.Creator))
	s.publish(events.TokenCreatedEvent{
		BaseEvent: events.NewBase(events.TokenCreated, subjectOf(token)),
		Symbol:    token.Symbol,
	})
	return token, nil
}

// Token возвращает текущее состояние токена
func (s *Service) Token(ctx context.Context, address string) (*models.Token, error) {
	token, err := s.store.GetToken(ctx, address)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, address)
		}
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// Tokens возвращает все токены в порядке создания
func (s *Service) Tokens(ctx context.Context) ([]*models.Token, error) {
	return s.store.ListTokens(ctx)
}

// State возвращает снимок прогресса выпуска токена
func (s *Service) State(ctx context.Context, address string) (bondingcurve.CurveState, error) {
	token, err := s.Token(ctx, address)
	if err != nil {
		return bondingcurve.CurveState{}, err
	}
	st, err := s.curve.State(token.RaisedAmount, token.CurrentSupply)
	if err != nil {
		return bondingcurve.CurveState{}, fmt.Errorf("failed to derive state of %s: %w", address, err)
	}
	// Выпуск необратим, даже если продажи опустили raised ниже цели
	st.IsGraduated = st.IsGraduated || token.Graduated
	return st, nil
}

// QuoteBuy оценивает покупку без фиксации
func (s *Service) QuoteBuy(ctx context.Context, address string, amountIn float64) (bondingcurve.TradeResult, error) {
	token, err := s.tradable(ctx, address)
	if err != nil {
		return bondingcurve.TradeResult{}, err
	}
	return s.curve.SimulateBuy(amountIn, token.CurrentSupply)
}

// QuoteSell оценивает продажу без фиксации
func (s *Service) QuoteSell(ctx context.Context, address string, tokenAmount float64) (bondingcurve.TradeResult, error) {
	token, err := s.tradable(ctx, address)
	if err != nil {
		return bondingcurve.TradeResult{}, err
	}
	return s.curve.SimulateSell(tokenAmount, token.CurrentSupply)
}

func (s *Service) tradable(ctx context.Context, address string) (*models.Token, error) {
	token, err := s.Token(ctx, address)
	if err != nil {
		return nil, err
	}
	if token.Graduated {
		return nil, fmt.Errorf("%w: %s", ErrGraduated, address)
	}
	return token, nil
}

// Trades возвращает историю сделок
func (s *Service) Trades(ctx context.Context, filter storage.TradeFilter) ([]models.Trade, error) {
	return s.store.ListTrades(ctx, filter)
}

func (s *Service) publish(e events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(e); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event_type", string(e.Type())),
			zap.Error(err))
	}
}

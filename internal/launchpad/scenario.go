// internal/launchpad/scenario.go
package launchpad

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Scenario: сценарий торгов для симуляции: токены и последовательность сделок
type Scenario struct {
	Tokens []CreateTokenRequest `json:"tokens"`
	Trades []ScenarioTrade      `json:"trades"`
	// Payouts выполняются после всех сделок
	Payouts []ScenarioPayout `json:"payouts,omitempty"`
}

type ScenarioTrade struct {
	Token  string  `json:"token"`
	Trader string  `json:"trader"`
	Side   string  `json:"side"`
	Amount float64 `json:"amount"`
	MinOut float64 `json:"min_out,omitempty"`
	// SellAll продает все токены, купленные этим трейдером в сценарии
	SellAll bool `json:"sell_all,omitempty"`
}

type ScenarioPayout struct {
	Creator string  `json:"creator"`
	Amount  float64 `json:"amount"`
}

// StepResult: итог одной сделки сценария; Err заполнен для отклоненных сделок
type StepResult struct {
	Step       int
	Trade      ScenarioTrade
	Settlement *Settlement
	Err        error
}

// LoadScenario читает сценарий из JSON-файла
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}
	return &sc, nil
}

// DefaultScenario: два создателя, обычные сделки, отклонение по проскальзыванию и выпуск
func DefaultScenario() *Scenario {
	return &Scenario{
		Tokens: []CreateTokenRequest{
			{Address: "moon", Name: "Moon", Symbol: "MOON", Creator: "alice"},
			{Address: "frog", Name: "Frog", Symbol: "FROG", Creator: "bob"},
		},
		Trades: []ScenarioTrade{
			{Token: "moon", Trader: "carol", Side: "buy", Amount: 0.05},
			{Token: "moon", Trader: "dave", Side: "buy", Amount: 2},
			{Token: "frog", Trader: "carol", Side: "buy", Amount: 5},
			{Token: "moon", Trader: "erin", Side: "buy", Amount: 8},
			{Token: "moon", Trader: "dave", Side: "sell", SellAll: true},
			{Token: "frog", Trader: "erin", Side: "buy", Amount: 1, MinOut: 1e12},
			{Token: "moon", Trader: "frank", Side: "buy", Amount: 25},
			{Token: "moon", Trader: "carol", Side: "buy", Amount: 1},
			{Token: "frog", Trader: "carol", Side: "sell", SellAll: true},
		},
		Payouts: []ScenarioPayout{{Creator: "alice", Amount: 0.01}},
	}
}

// RunScenario создает токены и проводит сделки по порядку. Отклоненная сделка не
// прерывает сценарий; прерывают только ошибки сервиса.
func (s *Service) RunScenario(ctx context.Context, sc *Scenario) ([]StepResult, error) {
	for _, t := range sc.Tokens {
		if _, err := s.CreateToken(ctx, t); err != nil {
			return nil, fmt.Errorf("scenario token %s: %w", t.Symbol, err)
		}
	}

	// позиции трейдеров по токенам для SellAll
	holdings := make(map[string]float64)
	position := func(tr ScenarioTrade) string { return tr.Token + "/" + tr.Trader }

	results := make([]StepResult, 0, len(sc.Trades))
	for i, tr := range sc.Trades {
		req := TradeRequest{Token: tr.Token, Trader: tr.Trader, Amount: tr.Amount, MinOut: tr.MinOut}

		var (
			st  *Settlement
			err error
		)
		switch tr.Side {
		case "buy":
			st, err = s.Buy(ctx, req)
		case "sell":
			if tr.SellAll {
				req.Amount = holdings[position(tr)]
			}
			st, err = s.Sell(ctx, req)
		default:
			err = fmt.Errorf("%w: side %q", ErrInvalidRequest, tr.Side)
		}

		if err != nil && !IsClientError(err) {
			return results, fmt.Errorf("scenario step %d: %w", i+1, err)
		}
		if err == nil {
			if tr.Side == "buy" {
				holdings[position(tr)] += st.Result.AmountOut
			} else {
				holdings[position(tr)] -= st.Result.AmountIn
			}
		}
		results = append(results, StepResult{Step: i + 1, Trade: tr, Settlement: st, Err: err})
	}

	for _, p := range sc.Payouts {
		if _, err := s.MarkPaid(ctx, p.Creator, p.Amount); err != nil && !IsClientError(err) {
			return results, fmt.Errorf("scenario payout to %s: %w", p.Creator, err)
		}
	}
	return results, nil
}

// cmd/curvectl/simulate.go
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/rovshanmuradov/launchpad/internal/export"
	"github.com/rovshanmuradov/launchpad/internal/launchpad"
	"github.com/rovshanmuradov/launchpad/internal/model"
	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/rovshanmuradov/launchpad/internal/storage/memory"
	"github.com/rovshanmuradov/launchpad/internal/ui/render"
	"github.com/rovshanmuradov/launchpad/internal/utils/metrics"
	"go.uber.org/zap"
)

// harness: лаунчпад в памяти для одного прогона сценария
type harness struct {
	svc      *launchpad.Service
	bus      *events.Bus
	registry *prometheus.Registry

	mu     sync.Mutex
	events []events.Event
}

// newHarness собирает сервис; в журнал попадают события, прошедшие follow
func (a *app) newHarness(follow events.Filter) (*harness, error) {
	policy, err := a.cfg.ToRewardPolicy()
	if err != nil {
		return nil, err
	}

	h := &harness{
		bus:      events.NewBus(a.log.Logger, a.cfg.Service.EventBuffer),
		registry: prometheus.NewRegistry(),
	}
	record := func(_ context.Context, e events.Event) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.events = append(h.events, e)
		return nil
	}
	h.bus.SubscribeFunc(follow, record)

	h.svc, err = launchpad.NewService(launchpad.Options{
		Store:     memory.New(a.log.Logger),
		Policy:    policy,
		Publisher: h.bus,
		Metrics:   metrics.NewCollector(h.registry),
		Logger:    a.log.Logger,
		Retry:     a.cfg.Service,
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// drain останавливает шину и возвращает события в порядке публикации
func (h *harness) drain(ctx context.Context) []events.Event {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.bus.Shutdown(ctx); err != nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.events
}

func (a *app) loadScenario(path string) (*launchpad.Scenario, error) {
	if path == "" {
		return launchpad.DefaultScenario(), nil
	}
	return launchpad.LoadScenario(path)
}

type simulationReport struct {
	Steps  []stepView            `json:"steps"`
	Tokens []model.CurveSnapshot `json:"tokens"`
	// PricePaths: цена после каждой сделки, по символу токена
	PricePaths map[string][]float64     `json:"price_paths"`
	Rewards    []model.RewardView       `json:"rewards"`
	Replay     []launchpad.ReplayReport `json:"replay"`
	Metrics    map[string]float64       `json:"metrics"`
	Bus        events.Stats             `json:"bus"`
}

type stepView struct {
	Step  int               `json:"step"`
	Token string            `json:"token"`
	Side  string            `json:"side"`
	Quote *model.TradeQuote `json:"quote,omitempty"`
	Error string            `json:"error,omitempty"`
}

func (a *app) simulate(ctx context.Context, args []string) error {
	fs := newFlags("simulate")
	scenarioPath := fs.String("scenario", "", "scenario JSON (built-in scenario when empty)")
	follow := fs.String("token", "", "only log events about this token")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	sc, err := a.loadScenario(*scenarioPath)
	if err != nil {
		return err
	}
	h, err := a.newHarness(events.ForToken(*follow))
	if err != nil {
		return err
	}

	results, err := h.svc.RunScenario(ctx, sc)
	if err != nil {
		return err
	}
	evs := h.drain(ctx)

	report, err := a.buildReport(ctx, h, results)
	if err != nil {
		return err
	}
	report.Bus = h.bus.Stats()

	return a.print(report, func(r *render.Renderer) string {
		var out string
		out += "Events\n"
		for _, e := range evs {
			out += r.Event(e) + "\n"
		}
		for _, s := range report.Steps {
			if s.Error != "" {
				out += fmt.Sprintf("step %d %s %s rejected: %s\n", s.Step, s.Side, s.Token, s.Error)
			}
		}
		for _, snap := range report.Tokens {
			out += r.Snapshot(snap) + "\n"
			out += r.PricePath(snap.Symbol, report.PricePaths[snap.Symbol]) + "\n"
		}
		for _, v := range report.Rewards {
			out += r.Rewards(v) + "\n"
		}
		for _, rep := range report.Replay {
			status := "consistent"
			if !rep.Matches {
				status = "DIVERGED"
			}
			out += fmt.Sprintf("replay %s: %s\n", rep.Creator, status)
		}
		out += fmt.Sprintf("trades settled %.0f, conflicts %.0f, graduations %.0f",
			report.Metrics["launchpad_trades_total"],
			report.Metrics["launchpad_commit_conflicts_total"],
			report.Metrics["launchpad_graduations_total"])
		return out
	})
}

func (a *app) buildReport(ctx context.Context, h *harness, results []launchpad.StepResult) (*simulationReport, error) {
	report := &simulationReport{PricePaths: make(map[string][]float64)}

	for _, r := range results {
		v := stepView{Step: r.Step, Token: r.Trade.Token, Side: r.Trade.Side}
		if r.Err != nil {
			v.Error = r.Err.Error()
		} else {
			q := model.NewTradeQuote(r.Settlement.Result)
			v.Quote = &q
		}
		report.Steps = append(report.Steps, v)
	}

	tokens, err := h.svc.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tokens {
		st, err := h.svc.State(ctx, t.Address)
		if err != nil {
			return nil, err
		}
		report.Tokens = append(report.Tokens, model.NewCurveSnapshot(t, st))

		trades, err := h.svc.Trades(ctx, storage.TradeFilter{TokenAddress: t.Address})
		if err != nil {
			return nil, err
		}
		for _, tr := range trades {
			report.PricePaths[t.Symbol] = append(report.PricePaths[t.Symbol], tr.PriceAfter)
		}
	}

	summaries, err := h.svc.RewardSummaries(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range summaries {
		report.Rewards = append(report.Rewards, model.NewRewardView(s, h.svc.Policy()))
	}

	report.Replay, err = h.svc.ReplayRewards(ctx)
	if err != nil {
		return nil, err
	}

	report.Metrics, err = gatherTotals(h.registry)
	if err != nil {
		a.log.Warn("Failed to gather metrics", zap.Error(err))
	}
	return report, nil
}

// gatherTotals суммирует счетчики по всем меткам
func gatherTotals(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64, len(families))
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range mf.GetMetric() {
			if mf.GetName() == "launchpad_trades_total" && !hasLabel(m, "status", "success") {
				continue
			}
			totals[mf.GetName()] += m.GetCounter().GetValue()
		}
	}
	return totals, nil
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := newFlags("export")
	scenarioPath := fs.String("scenario", "", "scenario JSON (built-in scenario when empty)")
	format := fs.String("format", "csv", "csv or json")
	outDir := fs.String("out", "", "output directory (stdout when empty)")
	token := fs.String("token", "", "only trades of this token")
	side := fs.String("side", "", "only buy or sell trades")
	creator := fs.String("creator", "", "only trades on tokens of this creator")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	sc, err := a.loadScenario(*scenarioPath)
	if err != nil {
		return err
	}
	h, err := a.newHarness(events.Filter{})
	if err != nil {
		return err
	}
	if _, err := h.svc.RunScenario(ctx, sc); err != nil {
		return err
	}
	h.drain(ctx)

	trades, err := h.svc.Trades(ctx, storage.TradeFilter{})
	if err != nil {
		return err
	}

	exporter := export.NewTradeExporter(a.log.Logger)
	opts := export.ExportOptions{
		Format:    export.ExportFormat(*format),
		Filter:    storage.TradeFilter{TokenAddress: *token, Side: *side, Creator: *creator},
		OutputDir: *outDir,
	}
	if *outDir == "" {
		return exporter.WriteTrades(os.Stdout, trades, opts)
	}
	path, err := exporter.ExportTrades(trades, opts)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

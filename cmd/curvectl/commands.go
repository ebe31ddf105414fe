// cmd/curvectl/commands.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rovshanmuradov/launchpad/internal/model"
	"github.com/rovshanmuradov/launchpad/internal/ui/render"
	"github.com/rovshanmuradov/launchpad/pkg/bondingcurve"
	"github.com/shopspring/decimal"
)

func (a *app) curve() (bondingcurve.Curve, error) {
	return a.cfg.ToCurveConfig()
}

func (a *app) print(v interface{}, styled func(*render.Renderer) string) error {
	if a.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Println(styled(render.New()))
	return nil
}

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func (a *app) price(args []string) error {
	fs := newFlags("price")
	supply := fs.Float64("supply", 0, "tokens sold")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	c, err := a.curve()
	if err != nil {
		return err
	}
	p, err := c.Price(*supply)
	if err != nil {
		return err
	}
	mcap, err := c.MarketCap(*supply)
	if err != nil {
		return err
	}

	out := struct {
		Supply    decimal.Decimal `json:"supply"`
		Price     decimal.Decimal `json:"price"`
		MarketCap decimal.Decimal `json:"market_cap"`
	}{
		Supply:    decimal.NewFromFloat(*supply).Round(model.TokenPrecision),
		Price:     decimal.NewFromFloat(p).Round(model.BasePrecision),
		MarketCap: decimal.NewFromFloat(mcap).Round(model.BasePrecision),
	}
	return a.print(out, func(*render.Renderer) string {
		return fmt.Sprintf("supply %s  price %s  market cap %s", out.Supply, out.Price, out.MarketCap)
	})
}

func (a *app) buy(args []string) error {
	fs := newFlags("buy")
	amount := fs.Float64("amount", 1, "base currency to spend, fees included")
	supply := fs.Float64("supply", 0, "tokens sold before the trade")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	c, err := a.curve()
	if err != nil {
		return err
	}
	res, err := c.SimulateBuy(*amount, *supply)
	if err != nil {
		return err
	}
	q := model.NewTradeQuote(res)
	return a.print(q, func(r *render.Renderer) string { return r.Quote(q) })
}

func (a *app) sell(args []string) error {
	fs := newFlags("sell")
	tokens := fs.Float64("tokens", 0, "tokens to sell")
	supply := fs.Float64("supply", 0, "tokens sold before the trade")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	c, err := a.curve()
	if err != nil {
		return err
	}
	res, err := c.SimulateSell(*tokens, *supply)
	if err != nil {
		return err
	}
	q := model.NewTradeQuote(res)
	return a.print(q, func(r *render.Renderer) string { return r.Quote(q) })
}

func (a *app) state(args []string) error {
	fs := newFlags("state")
	raised := fs.Float64("raised", 0, "net base currency raised")
	supply := fs.Float64("supply", 0, "tokens sold")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	c, err := a.curve()
	if err != nil {
		return err
	}
	st, err := c.State(*raised, *supply)
	if err != nil {
		return err
	}
	snap := model.NewCurveSnapshot(nil, st)
	return a.print(snap, func(r *render.Renderer) string { return r.Snapshot(snap) })
}

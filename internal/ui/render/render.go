// internal/ui/render/render.go
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/rovshanmuradov/launchpad/internal/model"
	"github.com/rovshanmuradov/launchpad/internal/ui/style"
)

const gaugeWidth = 30

// Renderer форматирует DTO для терминала
type Renderer struct {
	styles style.Styles
}

// New creates a renderer with the default palette
func New() *Renderer {
	return &Renderer{styles: style.NewStyles(style.DefaultPalette())}
}

func (r *Renderer) row(label, value string) string {
	return r.styles.Label.Render(label) + r.styles.Value.Render(value)
}

func (r *Renderer) box(title string, rows ...string) string {
	body := lipgloss.JoinVertical(lipgloss.Left, append([]string{r.styles.Title.Render(title)}, rows...)...)
	return r.styles.Box.Render(body)
}

func (r *Renderer) side(side string) string {
	switch side {
	case "buy":
		return r.styles.Buy.Render("BUY")
	case "sell":
		return r.styles.Sell.Render("SELL")
	default:
		return strings.ToUpper(side)
	}
}

// Quote renders a trade quote or settled trade
func (r *Renderer) Quote(q model.TradeQuote) string {
	inUnit, outUnit := "base", "tokens"
	if q.Side == "sell" {
		inUnit, outUnit = "tokens", "base"
	}

	rows := []string{
		r.row("Amount in", q.AmountIn.String()+" "+inUnit),
		r.row("Amount out", q.AmountOut.String()+" "+outUnit),
		r.row("Fee", fmt.Sprintf("%s (platform %s, creator %s)", q.TotalFee, q.PlatformFee, q.CreatorFee)),
		r.row("Net amount", q.NetAmount.String()),
		r.row("Price", q.PriceBefore.String()+" → "+q.PriceAfter.String()),
		r.row("Average price", q.AveragePrice.String()),
		r.row("Price impact", q.PriceImpactPercent.String()+"%"),
		r.row("Supply after", q.SupplyAfter.String()),
	}
	if q.Approximated {
		rows = append(rows, r.styles.Warning.Render("small trade: priced at the spot price"))
	}
	return r.box(r.side(q.Side)+" quote", rows...)
}

// Snapshot renders the curve state with a graduation gauge
func (r *Renderer) Snapshot(s model.CurveSnapshot) string {
	title := "Curve state"
	if s.Symbol != "" {
		title = s.Symbol + " " + title
	}

	progress, _ := s.ProgressPercent.Float64()
	gauge := NewProgressGauge(gaugeWidth).SetPercent(progress).SetGraduated(s.IsGraduated)

	rows := []string{
		r.row("Supply", s.CurrentSupply.String()),
		r.row("Price", s.CurrentPrice.String()),
		r.row("Market cap", s.MarketCap.String()),
		r.row("Raised", s.RaisedAmount.String()),
		r.row("Remaining", s.RemainingToGraduate.String()),
		r.row("Pools (curve/LP)", s.CurvePoolAmount.String()+" / "+s.LiquidityPoolAmount.String()),
		gauge.View(),
	}
	if s.IsGraduated {
		status := "GRADUATED"
		if s.GraduatedAt != nil {
			status += " at " + s.GraduatedAt.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, r.styles.Graduated.Render(status))
	}
	return r.box(title, rows...)
}

// PricePath renders the price after each trade of a token
func (r *Renderer) PricePath(symbol string, prices []float64) string {
	line := NewSparkline(gaugeWidth, prices).View()
	return r.styles.Label.Render(symbol+" price path") + line
}

// Rewards renders a creator reward summary
func (r *Renderer) Rewards(v model.RewardView) string {
	rows := []string{
		r.row("Tier", fmt.Sprintf("%s (x%s)", v.Tier, v.Multiplier)),
		r.row("Volume", v.TotalVolume.String()),
		r.row("Trades", fmt.Sprintf("%d", v.TradeCount)),
		r.row("Earned", v.TotalRewardsEarned.String()),
		r.row("Paid", v.TotalRewardsPaid.String()),
		r.row("Pending", v.PendingRewards.String()),
	}
	if v.NextTier != "" {
		rows = append(rows, r.row("Next tier", fmt.Sprintf("%s in %s", v.NextTier, v.VolumeToNextTier)))
	} else {
		rows = append(rows, r.styles.Muted.Render("top tier reached"))
	}
	return r.box("Creator "+v.Creator, rows...)
}

// Event renders a one-line event log entry
func (r *Renderer) Event(e events.Event) string {
	ts := r.styles.Muted.Render(e.Timestamp().Format("15:04:05.000"))

	var msg string
	switch ev := e.(type) {
	case events.TokenCreatedEvent:
		msg = fmt.Sprintf("token %s (%s) created by %s", ev.Subject.Token, ev.Symbol, ev.Subject.Creator)
	case events.TradeSettledEvent:
		msg = fmt.Sprintf("%s %s in=%g out=%g raised=%g", r.side(ev.Side), ev.Subject.Token, ev.AmountIn, ev.AmountOut, ev.RaisedAfter)
		if ev.Attempts > 1 {
			msg += r.styles.Warning.Render(fmt.Sprintf(" (%d attempts)", ev.Attempts))
		}
	case events.TokenGraduatedEvent:
		text := fmt.Sprintf("%s graduated with %g raised", ev.Subject.Token, ev.RaisedAmount)
		if ev.Pools != nil {
			text += fmt.Sprintf(", pools %g / %g", ev.Pools.Curve, ev.Pools.Liquidity)
		}
		msg = r.styles.Graduated.Render(text)
	case events.TierUpgradedEvent:
		msg = fmt.Sprintf("%s tier %s → %s", ev.Change.Creator, ev.Change.From.Name, ev.Change.To.Name)
	case events.AchievementUnlockedEvent:
		msg = fmt.Sprintf("%s unlocked %s at volume %g", ev.Achievement.Creator, ev.Achievement.Milestone.Name, ev.Achievement.Volume)
	case events.RewardPaidEvent:
		msg = fmt.Sprintf("%s paid %g, pending %g", ev.Subject.Creator, ev.Amount, ev.Pending)
	default:
		msg = string(e.Type())
	}
	return ts + " " + msg
}

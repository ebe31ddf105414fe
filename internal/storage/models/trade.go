// internal/storage/models/trade.go
package models

import (
	"fmt"
	"strconv"
	"time"
)

// Trade: зафиксированная сделка по кривой
type Trade struct {
	ID                 string    `json:"id"`
	TokenAddress       string    `json:"token_address"`
	Creator            string    `json:"creator"`
	Trader             string    `json:"trader"`
	Side               string    `json:"side"` // "buy" или "sell"
	AmountIn           float64   `json:"amount_in"`
	AmountOut          float64   `json:"amount_out"`
	TotalFee           float64   `json:"total_fee"`
	PlatformFee        float64   `json:"platform_fee"`
	CreatorFee         float64   `json:"creator_fee"`
	NetAmount          float64   `json:"net_amount"`
	BaseVolume         float64   `json:"base_volume"`
	PriceBefore        float64   `json:"price_before"`
	PriceAfter         float64   `json:"price_after"`
	PriceImpactPercent float64   `json:"price_impact_percent"`
	SupplyAfter        float64   `json:"supply_after"`
	RaisedAfter        float64   `json:"raised_after"`
	Graduated          bool      `json:"graduated"`
	Timestamp          time.Time `json:"timestamp"`
}

// CSVHeaders возвращает заголовки для экспорта сделок
func CSVHeaders() []string {
	return []string{
		"ID", "Timestamp", "Token", "Creator", "Trader", "Side",
		"AmountIn", "AmountOut", "TotalFee", "PlatformFee", "CreatorFee",
		"NetAmount", "BaseVolume", "PriceBefore", "PriceAfter", "PriceImpact%",
		"SupplyAfter", "RaisedAfter", "Graduated",
	}
}

// ToCSV конвертирует сделку в CSV-запись
func (t *Trade) ToCSV() []string {
	return []string{
		t.ID,
		t.Timestamp.Format(time.RFC3339Nano),
		t.TokenAddress,
		t.Creator,
		t.Trader,
		t.Side,
		formatFloat(t.AmountIn),
		formatFloat(t.AmountOut),
		formatFloat(t.TotalFee),
		formatFloat(t.PlatformFee),
		formatFloat(t.CreatorFee),
		formatFloat(t.NetAmount),
		formatFloat(t.BaseVolume),
		formatFloat(t.PriceBefore),
		formatFloat(t.PriceAfter),
		fmt.Sprintf("%.4f", t.PriceImpactPercent),
		formatFloat(t.SupplyAfter),
		formatFloat(t.RaisedAfter),
		strconv.FormatBool(t.Graduated),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

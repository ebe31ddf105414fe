// internal/export/export.go
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"go.uber.org/zap"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ErrNoTrades is returned when the filter leaves nothing to export.
var ErrNoTrades = errors.New("no trades match the export criteria")

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format    ExportFormat
	Filter    storage.TradeFilter
	OutputDir string
}

// TradeExporter handles trade export functionality
type TradeExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewTradeExporter creates a new trade exporter
func NewTradeExporter(logger *zap.Logger) *TradeExporter {
	return &TradeExporter{
		logger: logger.Named("exporter"),
		now:    time.Now,
	}
}

// ExportTrades writes the matching trades into a new file under options.OutputDir
// and returns its path.
func (te *TradeExporter) ExportTrades(trades []models.Trade, options ExportOptions) (string, error) {
	filtered := te.filterTrades(trades, options.Filter)
	if len(filtered) == 0 {
		return "", ErrNoTrades
	}

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(options.OutputDir, te.generateFilename(options))

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	if err := te.write(file, filtered, options.Format); err != nil {
		return "", err
	}

	te.logger.Info("Trades exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// WriteTrades writes the matching trades to w, for stdout and HTTP responses.
func (te *TradeExporter) WriteTrades(w io.Writer, trades []models.Trade, options ExportOptions) error {
	filtered := te.filterTrades(trades, options.Filter)
	if len(filtered) == 0 {
		return ErrNoTrades
	}
	return te.write(w, filtered, options.Format)
}

func (te *TradeExporter) write(w io.Writer, trades []models.Trade, format ExportFormat) error {
	switch format {
	case FormatCSV:
		return te.exportToCSV(w, trades)
	case FormatJSON:
		return te.exportToJSON(w, trades)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// filterTrades applies the filter and sorts the result by timestamp
func (te *TradeExporter) filterTrades(trades []models.Trade, filter storage.TradeFilter) []models.Trade {
	var filtered []models.Trade
	for i := range trades {
		if filter.Match(&trades[i]) {
			filtered = append(filtered, trades[i])
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.Before(filtered[j].Timestamp)
	})

	if filter.Limit > 0 && len(filtered) > filter.Limit {
		filtered = filtered[:filter.Limit]
	}
	return filtered
}

// generateFilename creates a filename based on export options
func (te *TradeExporter) generateFilename(options ExportOptions) string {
	timestamp := te.now().Format("20060102_150405")

	prefix := "trades_all"
	if options.Filter.Side != "" {
		prefix = "trades_" + options.Filter.Side
	}
	if token := options.Filter.TokenAddress; token != "" {
		if len(token) > 8 {
			token = token[:8]
		}
		prefix += "_" + token
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

func (te *TradeExporter) exportToCSV(w io.Writer, trades []models.Trade) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(models.CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for i := range trades {
		if err := writer.Write(trades[i].ToCSV()); err != nil {
			return fmt.Errorf("failed to write trade: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (te *TradeExporter) exportToJSON(w io.Writer, trades []models.Trade) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time      `json:"export_time"`
		TradeCount int            `json:"trade_count"`
		Trades     []models.Trade `json:"trades"`
		Summary    ExportSummary  `json:"summary"`
	}{
		ExportTime: te.now(),
		TradeCount: len(trades),
		Trades:     trades,
		Summary:    calculateSummary(trades),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ExportSummary contains summary statistics for exported trades
type ExportSummary struct {
	TotalTrades      int       `json:"total_trades"`
	BuyCount         int       `json:"buy_count"`
	SellCount        int       `json:"sell_count"`
	UniqueTokens     int       `json:"unique_tokens"`
	UniqueTraders    int       `json:"unique_traders"`
	TotalVolume      float64   `json:"total_volume"`
	TotalBuyVolume   float64   `json:"total_buy_volume"`
	TotalSellVolume  float64   `json:"total_sell_volume"`
	TotalFees        float64   `json:"total_fees"`
	PlatformFees     float64   `json:"platform_fees"`
	CreatorFees      float64   `json:"creator_fees"`
	GraduatingTrades int       `json:"graduating_trades"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
}

// calculateSummary expects trades sorted by timestamp
func calculateSummary(trades []models.Trade) ExportSummary {
	summary := ExportSummary{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return summary
	}

	summary.StartDate = trades[0].Timestamp
	summary.EndDate = trades[len(trades)-1].Timestamp

	tokenSet := make(map[string]struct{})
	traderSet := make(map[string]struct{})

	for _, trade := range trades {
		tokenSet[trade.TokenAddress] = struct{}{}
		if trade.Trader != "" {
			traderSet[trade.Trader] = struct{}{}
		}

		switch trade.Side {
		case "buy":
			summary.BuyCount++
			summary.TotalBuyVolume += trade.BaseVolume
		case "sell":
			summary.SellCount++
			summary.TotalSellVolume += trade.BaseVolume
		}

		summary.TotalFees += trade.TotalFee
		summary.PlatformFees += trade.PlatformFee
		summary.CreatorFees += trade.CreatorFee
		if trade.Graduated {
			summary.GraduatingTrades++
		}
	}

	summary.UniqueTokens = len(tokenSet)
	summary.UniqueTraders = len(traderSet)
	summary.TotalVolume = summary.TotalBuyVolume + summary.TotalSellVolume

	return summary
}

// DailyReport represents a daily trading report
type DailyReport struct {
	Date            time.Time      `json:"date"`
	TradeCount      int            `json:"trade_count"`
	Summary         ExportSummary  `json:"summary"`
	HourlyBreakdown []HourlyStats  `json:"hourly_breakdown"`
	Trades          []models.Trade `json:"trades"`
}

// HourlyStats represents trading statistics for an hour
type HourlyStats struct {
	Hour       int     `json:"hour"`
	TradeCount int     `json:"trade_count"`
	BuyCount   int     `json:"buy_count"`
	SellCount  int     `json:"sell_count"`
	Volume     float64 `json:"volume"`
	Fees       float64 `json:"fees"`
}

// ExportDailyReport exports a daily summary report. It returns an empty path when the
// day has no trades.
func (te *TradeExporter) ExportDailyReport(trades []models.Trade, date time.Time, outputDir string) (string, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24*time.Hour - time.Nanosecond)

	filtered := te.filterTrades(trades, storage.TradeFilter{Since: startOfDay, Until: endOfDay})
	if len(filtered) == 0 {
		te.logger.Info("No trades for daily report", zap.Time("date", startOfDay))
		return "", nil
	}

	report := DailyReport{
		Date:            startOfDay,
		TradeCount:      len(filtered),
		Trades:          filtered,
		Summary:         calculateSummary(filtered),
		HourlyBreakdown: calculateHourlyBreakdown(filtered),
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(outputDir, fmt.Sprintf("daily_report_%s.json", startOfDay.Format("20060102")))

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	te.logger.Info("Daily report exported",
		zap.String("file", outputPath),
		zap.Time("date", startOfDay),
		zap.Int("trades", len(filtered)))

	return outputPath, nil
}

func calculateHourlyBreakdown(trades []models.Trade) []HourlyStats {
	hourlyMap := make(map[int]*HourlyStats)

	for _, trade := range trades {
		hour := trade.Timestamp.Hour()

		stats, exists := hourlyMap[hour]
		if !exists {
			stats = &HourlyStats{Hour: hour}
			hourlyMap[hour] = stats
		}

		stats.TradeCount++
		stats.Volume += trade.BaseVolume
		stats.Fees += trade.TotalFee

		switch trade.Side {
		case "buy":
			stats.BuyCount++
		case "sell":
			stats.SellCount++
		}
	}

	var breakdown []HourlyStats
	for hour := 0; hour < 24; hour++ {
		if stats, exists := hourlyMap[hour]; exists {
			breakdown = append(breakdown, *stats)
		}
	}
	return breakdown
}

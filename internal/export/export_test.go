package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var day = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func generateTestTrades() []models.Trade {
	return []models.Trade{
		{ID: "trade3", Timestamp: day.Add(11 * time.Hour), TokenAddress: "token2-abcdefgh", Creator: "bob",
			Trader: "carol", Side: "buy", AmountIn: 2, BaseVolume: 2, TotalFee: 0.025, PlatformFee: 0.02, CreatorFee: 0.005},
		{ID: "trade1", Timestamp: day.Add(10 * time.Hour), TokenAddress: "token1", Creator: "alice",
			Trader: "carol", Side: "buy", AmountIn: 1, BaseVolume: 1, TotalFee: 0.0125, PlatformFee: 0.01, CreatorFee: 0.0025},
		{ID: "trade2", Timestamp: day.Add(10*time.Hour + 30*time.Minute), TokenAddress: "token1", Creator: "alice",
			Trader: "dave", Side: "sell", AmountIn: 1e6, BaseVolume: 0.5, TotalFee: 0.00625, PlatformFee: 0.005, CreatorFee: 0.00125},
		{ID: "trade4", Timestamp: day.Add(26 * time.Hour), TokenAddress: "token1", Creator: "alice",
			Trader: "dave", Side: "buy", AmountIn: 30, BaseVolume: 30, TotalFee: 0.375, PlatformFee: 0.3, CreatorFee: 0.075, Graduated: true},
	}
}

func TestTradeExportCSV(t *testing.T) {
	exporter := NewTradeExporter(zap.NewNop())
	tempDir := t.TempDir()

	outputPath, err := exporter.ExportTrades(generateTestTrades(), ExportOptions{Format: FormatCSV, OutputDir: tempDir})
	require.NoError(t, err)
	assert.Equal(t, tempDir, filepath.Dir(outputPath))
	assert.True(t, strings.HasPrefix(filepath.Base(outputPath), "trades_all_"))

	f, err := os.Open(outputPath)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, models.CSVHeaders(), records[0])
	// Rows come out in time order.
	assert.Equal(t, "trade1", records[1][0])
	assert.Equal(t, "trade4", records[4][0])
}

func TestTradeExportJSON(t *testing.T) {
	exporter := NewTradeExporter(zap.NewNop())

	var buf bytes.Buffer
	err := exporter.WriteTrades(&buf, generateTestTrades(), ExportOptions{
		Format: FormatJSON,
		Filter: storage.TradeFilter{TokenAddress: "token1"},
	})
	require.NoError(t, err)

	var decoded struct {
		TradeCount int            `json:"trade_count"`
		Trades     []models.Trade `json:"trades"`
		Summary    ExportSummary  `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.TradeCount)
	assert.Equal(t, 1, decoded.Summary.GraduatingTrades)
	assert.Equal(t, 1, decoded.Summary.UniqueTokens)
}

func TestTradeExportFilters(t *testing.T) {
	exporter := NewTradeExporter(zap.NewNop())
	trades := generateTestTrades()

	tests := []struct {
		name   string
		filter storage.TradeFilter
		want   int
	}{
		{"Time window", storage.TradeFilter{Since: day.Add(10 * time.Hour), Until: day.Add(12 * time.Hour)}, 3},
		{"Token", storage.TradeFilter{TokenAddress: "token1"}, 3},
		{"Side", storage.TradeFilter{Side: "sell"}, 1},
		{"Creator", storage.TradeFilter{Creator: "bob"}, 1},
		{"Limit", storage.TradeFilter{Limit: 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, exporter.filterTrades(trades, tt.filter), tt.want)
		})
	}

	_, err := exporter.ExportTrades(trades, ExportOptions{
		Format: FormatCSV, Filter: storage.TradeFilter{TokenAddress: "none"}, OutputDir: t.TempDir(),
	})
	assert.ErrorIs(t, err, ErrNoTrades)

	err = exporter.WriteTrades(&bytes.Buffer{}, trades, ExportOptions{Format: "xml"})
	assert.Error(t, err)
}

func TestGenerateFilename(t *testing.T) {
	exporter := NewTradeExporter(zap.NewNop())
	exporter.now = func() time.Time { return day }

	name := exporter.generateFilename(ExportOptions{
		Format: FormatJSON,
		Filter: storage.TradeFilter{Side: "buy", TokenAddress: "token2-abcdefgh"},
	})
	assert.Equal(t, "trades_buy_token2-a_20260314_000000.json", name)

	// Short addresses are not truncated.
	name = exporter.generateFilename(ExportOptions{Format: FormatCSV, Filter: storage.TradeFilter{TokenAddress: "t1"}})
	assert.Equal(t, "trades_all_t1_20260314_000000.csv", name)
}

func TestDailyReportExport(t *testing.T) {
	exporter := NewTradeExporter(zap.NewNop())
	tempDir := t.TempDir()

	outputPath, err := exporter.ExportDailyReport(generateTestTrades(), day.Add(5*time.Hour), tempDir)
	require.NoError(t, err)
	require.NotEmpty(t, outputPath)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var report DailyReport
	require.NoError(t, json.Unmarshal(content, &report))
	assert.Equal(t, 3, report.TradeCount)
	require.Len(t, report.HourlyBreakdown, 2)
	assert.Equal(t, 10, report.HourlyBreakdown[0].Hour)
	assert.Equal(t, 2, report.HourlyBreakdown[0].TradeCount)

	outputPath, err = exporter.ExportDailyReport(generateTestTrades(), day.Add(-48*time.Hour), tempDir)
	require.NoError(t, err)
	assert.Empty(t, outputPath)
}

func TestExportSummaryCalculation(t *testing.T) {
	trades := generateTestTrades()[:3]
	exporter := NewTradeExporter(zap.NewNop())
	sorted := exporter.filterTrades(trades, storage.TradeFilter{})

	summary := calculateSummary(sorted)

	assert.Equal(t, 3, summary.TotalTrades)
	assert.Equal(t, 2, summary.BuyCount)
	assert.Equal(t, 1, summary.SellCount)
	assert.Equal(t, 2, summary.UniqueTokens)
	assert.Equal(t, 2, summary.UniqueTraders)
	assert.InDelta(t, 3.5, summary.TotalVolume, 1e-12)
	assert.InDelta(t, 0.04375, summary.TotalFees, 1e-12)
	assert.InDelta(t, summary.TotalFees, summary.PlatformFees+summary.CreatorFees, 1e-12)
	assert.Equal(t, day.Add(10*time.Hour), summary.StartDate)
	assert.Equal(t, day.Add(11*time.Hour), summary.EndDate)
}

package chart

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grafico/internal/core"
)

func tx(t *testing.T, day string, amount string, category string) core.Transaction {
	t.Helper()
	ts, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	return core.Transaction{OccurredAt: ts, Amount: amt, Category: category}
}

func TestCategoryBreakdown(t *testing.T) {
	records := []core.Transaction{
		tx(t, "2025-03-01", "-50", "food"),
		tx(t, "2025-03-02", "-30", "food"),
		tx(t, "2025-03-03", "-20", "transport"),
		tx(t, "2025-03-04", "200", "salary"), // inflow, excluded
	}

	series, err := Aggregate(records, IntentCategoryBreakdown)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, []core.SeriesPoint{
		{Label: "food", Value: 80},
		{Label: "transport", Value: 20},
	}, series[0].Points)
}

func TestCategoryBreakdownUncategorizedBucket(t *testing.T) {
	records := []core.Transaction{
		tx(t, "2025-03-01", "-10", ""),
		tx(t, "2025-03-02", "-5", "food"),
		tx(t, "2025-03-03", "-15", ""),
	}

	series, err := Aggregate(records, IntentCategoryBreakdown)
	require.NoError(t, err)
	assert.Equal(t, []core.SeriesPoint{
		{Label: UncategorizedBucket, Value: 25},
		{Label: "food", Value: 5},
	}, series[0].Points)
}

func TestCategoryBreakdownNoOutflows(t *testing.T) {
	records := []core.Transaction{
		tx(t, "2025-03-01", "100", "salary"),
		tx(t, "2025-03-02", "50", ""),
	}

	_, err := Aggregate(records, IntentCategoryBreakdown)
	assert.ErrorIs(t, err, core.ErrUnsupportedAggregation)
}

func TestTrendOverTimeDailyBuckets(t *testing.T) {
	var records []core.Transaction
	for day := 1; day <= 10; day++ {
		date := time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC).Format("2006-01-02")
		records = append(records, tx(t, date, "-10", "food"), tx(t, date, "3", ""))
	}

	series, err := Aggregate(records, IntentTrendOverTime)
	require.NoError(t, err)
	require.Len(t, series, 1)
	require.Len(t, series[0].Points, 10)
	for i, p := range series[0].Points {
		assert.Equal(t, time.Date(2025, 3, i+1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), p.Label)
		assert.Equal(t, -7.0, p.Value)
	}
}

func TestTrendOverTimeBucketPolicy(t *testing.T) {
	tests := []struct {
		name      string
		lastDay   string
		wantLabel string // bucket label of the first record (2025-03-03, a Monday)
	}{
		{"within a month stays daily", "2025-03-20", "2025-03-03"},
		{"within a year goes weekly", "2025-08-01", "2025-03-03"},
		{"beyond a year goes monthly", "2027-01-01", "2025-03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []core.Transaction{
				tx(t, "2025-03-03", "5", ""),
				tx(t, tt.lastDay, "5", ""),
			}
			series, err := Aggregate(records, IntentTrendOverTime)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, series[0].Points[0].Label)
		})
	}
}

func TestIncomeVsExpenseAlignedBuckets(t *testing.T) {
	// Activity only on days 1, 3 and 5; the aligned series must still carry
	// all five daily buckets, zero-filled where one side is silent.
	records := []core.Transaction{
		tx(t, "2025-03-01", "100", "salary"),
		tx(t, "2025-03-03", "-40", "food"),
		tx(t, "2025-03-05", "20", ""),
		tx(t, "2025-03-05", "-5", "transport"),
	}

	series, err := Aggregate(records, IntentIncomeVsExpense)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "inflow", series[0].Name)
	assert.Equal(t, "outflow", series[1].Name)

	wantLabels := []string{"2025-03-01", "2025-03-02", "2025-03-03", "2025-03-04", "2025-03-05"}
	for _, s := range series {
		require.Len(t, s.Points, len(wantLabels), "series %s", s.Name)
		for i, p := range s.Points {
			assert.Equal(t, wantLabels[i], p.Label, "series %s", s.Name)
		}
	}

	assert.Equal(t, []float64{100, 0, 0, 0, 20}, pointValues(series[0]))
	assert.Equal(t, []float64{0, 0, 40, 0, 5}, pointValues(series[1]))
}

func TestBalanceTrendCumulative(t *testing.T) {
	records := []core.Transaction{
		tx(t, "2025-03-01", "100", "salary"),
		tx(t, "2025-03-02", "-40", "food"),
		tx(t, "2025-03-03", "10", ""),
	}

	series, err := Aggregate(records, IntentBalanceTrend)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 60, 70}, pointValues(series[0]))
}

func TestBalanceTrendCollapsesSameDay(t *testing.T) {
	records := []core.Transaction{
		tx(t, "2025-03-01", "100", ""),
		tx(t, "2025-03-01", "-40", ""),
		tx(t, "2025-03-02", "10", ""),
	}

	series, err := Aggregate(records, IntentBalanceTrend)
	require.NoError(t, err)
	assert.Equal(t, []core.SeriesPoint{
		{Label: "2025-03-01", Value: 60},
		{Label: "2025-03-02", Value: 70},
	}, series[0].Points)
}

// The last balance point must equal the exact signed sum of all amounts, even
// for values that drift under binary floating point accumulation.
func TestBalanceTrendNoDrift(t *testing.T) {
	var records []core.Transaction
	for day := 1; day <= 28; day++ {
		date := time.Date(2025, 2, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		for i := 0; i < 30; i++ {
			records = append(records, tx(t, date, "0.10", ""))
		}
	}

	series, err := Aggregate(records, IntentBalanceTrend)
	require.NoError(t, err)
	points := series[0].Points
	assert.Equal(t, 84.0, points[len(points)-1].Value) // 28 * 30 * 0.10 exactly
}

func TestAggregateFallbackBehavesAsTrend(t *testing.T) {
	records := []core.Transaction{
		tx(t, "2025-03-01", "10", ""),
		tx(t, "2025-03-02", "-4", ""),
	}

	fallback, err := Aggregate(records, IntentDefault)
	require.NoError(t, err)
	trend, err := Aggregate(records, IntentTrendOverTime)
	require.NoError(t, err)
	assert.Equal(t, trend, fallback)
}

func pointValues(s core.Series) []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

package chart

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"grafico/internal/core"
)

// UncategorizedBucket is the reserved label for outflows the upstream parser
// left without a category.
const UncategorizedBucket = "uncategorized"

// balancePointLimit is the display threshold for balance-trend: above it, the
// running balance is reported per time bucket instead of per record.
const balancePointLimit = 366

type bucketUnit int

const (
	bucketDaily bucketUnit = iota
	bucketWeekly
	bucketMonthly
)

// Bucket size selection by span of the record range. Table-driven so the
// thresholds can be tuned in one place; anything beyond the last row is
// monthly.
var bucketPolicy = []struct {
	maxSpanDays int
	unit        bucketUnit
}{
	{31, bucketDaily},
	{365, bucketWeekly},
}

// Aggregate reduces an ordered, non-empty, pre-bounded transaction slice into
// the series the intent needs. The caller enforces ordering and the row cap;
// Aggregate only reports the documented per-intent precondition failures.
func Aggregate(records []core.Transaction, intent Intent) ([]core.Series, error) {
	switch intent {
	case IntentCategoryBreakdown:
		return categoryBreakdown(records)
	case IntentIncomeVsExpense:
		return incomeVsExpense(records), nil
	case IntentBalanceTrend:
		return balanceTrend(records), nil
	default:
		// trend-over-time, and the fallback intent behaves the same way
		return trendOverTime(records), nil
	}
}

// categoryBreakdown groups outflows by category, summing magnitudes per group.
// The resulting single series is ordered by descending sum, ties broken by
// label so the output is reproducible.
func categoryBreakdown(records []core.Transaction) ([]core.Series, error) {
	sums := make(map[string]decimal.Decimal)
	for _, tx := range records {
		if tx.Direction() != core.Outflow {
			continue
		}
		label := tx.Category
		if label == "" {
			label = UncategorizedBucket
		}
		sums[label] = sums[label].Add(tx.Magnitude())
	}
	if len(sums) == 0 {
		return nil, fmt.Errorf("%w: category breakdown needs at least one outflow", core.ErrUnsupportedAggregation)
	}

	labels := make([]string, 0, len(sums))
	for label := range sums {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		cmp := sums[labels[i]].Cmp(sums[labels[j]])
		if cmp != 0 {
			return cmp > 0
		}
		return labels[i] < labels[j]
	})

	points := make([]core.SeriesPoint, len(labels))
	for i, label := range labels {
		points[i] = core.SeriesPoint{Label: label, Value: core.Present(sums[label])}
	}
	return []core.Series{{Name: "spending", Points: points}}, nil
}

// trendOverTime sums signed amounts per calendar bucket, emitting observed
// buckets in chronological order. Records arrive ordered, so first-seen
// bucket order is already chronological.
func trendOverTime(records []core.Transaction) []core.Series {
	unit := pickUnit(records[0].OccurredAt, records[len(records)-1].OccurredAt)

	var order []string
	sums := make(map[string]decimal.Decimal)
	for _, tx := range records {
		label := bucketLabel(tx.OccurredAt, unit)
		if _, seen := sums[label]; !seen {
			order = append(order, label)
		}
		sums[label] = sums[label].Add(tx.Amount)
	}

	points := make([]core.SeriesPoint, len(order))
	for i, label := range order {
		points[i] = core.SeriesPoint{Label: label, Value: core.Present(sums[label])}
	}
	return []core.Series{{Name: "net", Points: points}}
}

// incomeVsExpense emits an inflow and an outflow series over the same bucket
// policy as trendOverTime. The two series share the complete bucket sequence
// of the range: buckets with no activity carry zero rather than being omitted,
// so the label sets stay fully aligned.
func incomeVsExpense(records []core.Transaction) []core.Series {
	first := records[0].OccurredAt
	last := records[len(records)-1].OccurredAt
	unit := pickUnit(first, last)
	labels := bucketSequence(first, last, unit)

	inflows := make(map[string]decimal.Decimal, len(labels))
	outflows := make(map[string]decimal.Decimal, len(labels))
	for _, tx := range records {
		label := bucketLabel(tx.OccurredAt, unit)
		if tx.Direction() == core.Inflow {
			inflows[label] = inflows[label].Add(tx.Magnitude())
		} else {
			outflows[label] = outflows[label].Add(tx.Magnitude())
		}
	}

	inPoints := make([]core.SeriesPoint, len(labels))
	outPoints := make([]core.SeriesPoint, len(labels))
	for i, label := range labels {
		inPoints[i] = core.SeriesPoint{Label: label, Value: core.Present(inflows[label])}
		outPoints[i] = core.SeriesPoint{Label: label, Value: core.Present(outflows[label])}
	}
	return []core.Series{
		{Name: "inflow", Points: inPoints},
		{Name: "outflow", Points: outPoints},
	}
}

// balanceTrend emits the running cumulative signed sum. One point per record,
// except that records sharing a day collapse to the day's closing balance so
// labels stay unique; past the display threshold the bucket policy applies
// instead, keeping each bucket's last cumulative value. Either way the final
// point carries the exact signed total.
func balanceTrend(records []core.Transaction) []core.Series {
	unit := bucketDaily
	if len(records) > balancePointLimit {
		unit = pickUnit(records[0].OccurredAt, records[len(records)-1].OccurredAt)
	}

	running := decimal.Zero
	var points []core.SeriesPoint
	for _, tx := range records {
		running = running.Add(tx.Amount)
		label := bucketLabel(tx.OccurredAt, unit)
		value := core.Present(running)
		if n := len(points); n > 0 && points[n-1].Label == label {
			points[n-1].Value = value
			continue
		}
		points = append(points, core.SeriesPoint{Label: label, Value: value})
	}
	return []core.Series{{Name: "balance", Points: points}}
}

func pickUnit(first, last time.Time) bucketUnit {
	span := int(last.Sub(first).Hours() / 24)
	for _, p := range bucketPolicy {
		if span <= p.maxSpanDays {
			return p.unit
		}
	}
	return bucketMonthly
}

func bucketLabel(ts time.Time, unit bucketUnit) string {
	switch unit {
	case bucketDaily:
		return ts.Format("2006-01-02")
	case bucketWeekly:
		return weekStart(ts).Format("2006-01-02")
	default:
		return ts.Format("2006-01")
	}
}

// bucketSequence returns every bucket label between first and last inclusive,
// in chronological order.
func bucketSequence(first, last time.Time, unit bucketUnit) []string {
	var cursor, end time.Time
	var step func(time.Time) time.Time
	switch unit {
	case bucketDaily:
		cursor = dayStart(first)
		end = dayStart(last)
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	case bucketWeekly:
		cursor = weekStart(first)
		end = weekStart(last)
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	default:
		cursor = monthStart(first)
		end = monthStart(last)
		step = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	}

	var labels []string
	for !cursor.After(end) {
		labels = append(labels, bucketLabel(cursor, unit))
		cursor = step(cursor)
	}
	return labels
}

func dayStart(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}

// weekStart returns the Monday of the ISO week containing ts.
func weekStart(ts time.Time) time.Time {
	offset := (int(ts.Weekday()) + 6) % 7
	return dayStart(ts).AddDate(0, 0, -offset)
}

func monthStart(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, ts.Location())
}

package chart

import "grafico/internal/core"

// Rendering shape and title per intent. Titles come from the intent, never
// from the raw prompt: the prompt is unvalidated text and belongs only in the
// persisted ChartRequest.
var intentPresentation = map[Intent]struct {
	chartType ChartType
	title     string
}{
	IntentCategoryBreakdown: {ChartTypePie, "Spending by category"},
	IntentTrendOverTime:     {ChartTypeLine, "Net flow over time"},
	IntentIncomeVsExpense:   {ChartTypeBar, "Income vs expense"},
	IntentBalanceTrend:      {ChartTypeLine, "Balance over time"},
	IntentDefault:           {ChartTypeLine, "Transactions over time"},
}

// BuildSpec assembles aggregated series into a declarative specification.
// Pure transform: the mapping from intent to rendering type is fixed, axis
// labels come from the bucket or category labels, and legend entries come
// from the series names (slice labels for pie).
func BuildSpec(series []core.Series, intent Intent) Spec {
	pres, ok := intentPresentation[intent]
	if !ok {
		pres = intentPresentation[IntentDefault]
	}

	if pres.chartType == ChartTypePie {
		return buildPie(series, pres.title)
	}
	return buildAxisChart(series, pres.chartType, pres.title)
}

func buildPie(series []core.Series, title string) Spec {
	var labels []string
	var data []float64
	var name string
	if len(series) > 0 {
		name = series[0].Name
		labels = make([]string, len(series[0].Points))
		data = make([]float64, len(series[0].Points))
		for i, p := range series[0].Points {
			labels[i] = p.Label
			data[i] = p.Value
		}
	}
	return Spec{
		Type:   ChartTypePie,
		Title:  title,
		Legend: labels,
		Series: []SpecSeries{{Name: name, Labels: labels, Data: data}},
	}
}

func buildAxisChart(series []core.Series, chartType ChartType, title string) Spec {
	spec := Spec{
		Type:  chartType,
		Title: title,
		YAxis: &Axis{Title: "Amount"},
	}

	// Bucket labels are aligned across series by the aggregator; the first
	// series supplies the shared axis.
	var axisLabels []string
	if len(series) > 0 {
		axisLabels = make([]string, len(series[0].Points))
		for i, p := range series[0].Points {
			axisLabels[i] = p.Label
		}
	}
	spec.XAxis = &Axis{Title: "Period", Labels: axisLabels}

	spec.Legend = make([]string, len(series))
	spec.Series = make([]SpecSeries, len(series))
	for i, s := range series {
		data := make([]float64, len(s.Points))
		for j, p := range s.Points {
			data[j] = p.Value
		}
		spec.Legend[i] = s.Name
		spec.Series[i] = SpecSeries{Name: s.Name, Data: data}
	}
	return spec
}

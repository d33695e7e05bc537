package chart

import "encoding/json"

const (
	ChartTypePie  ChartType = "pie"
	ChartTypeLine ChartType = "line"
	ChartTypeBar  ChartType = "bar"
)

type (
	ChartType string

	// Spec is the declarative, renderer-independent chart specification. It
	// is validated once at the pipeline boundary, then stored and shipped as
	// opaque JSON.
	Spec struct {
		Type   ChartType    `json:"type"`
		Title  string       `json:"title"`
		XAxis  *Axis        `json:"xAxis,omitempty"`
		YAxis  *Axis        `json:"yAxis,omitempty"`
		Legend []string     `json:"legend,omitempty"`
		Series []SpecSeries `json:"series"`
	}

	Axis struct {
		Title  string   `json:"title,omitempty"`
		Labels []string `json:"labels,omitempty"`
	}

	// SpecSeries carries one chart dimension. Axis-based types (line, bar)
	// align Data with the shared XAxis labels; the pie type labels each slice
	// directly through Labels.
	SpecSeries struct {
		Name   string    `json:"name"`
		Labels []string  `json:"labels,omitempty"`
		Data   []float64 `json:"data"`
	}
)

// Encode serializes the specification for storage and transport.
func (s Spec) Encode() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeSpec parses a stored specification back into its structured form.
func DecodeSpec(text string) (Spec, error) {
	var s Spec
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return Spec{}, err
	}
	return s, nil
}

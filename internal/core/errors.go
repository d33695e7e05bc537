package core

import "errors"

// Pipeline failure taxonomy. The first three are user-correctable conditions:
// the caller can render a specific message and the user can adjust the filter
// or the prompt. ErrSpecInvalid indicates a pipeline defect and is surfaced as
// a generic generation failure. ErrPersistence marks storage trouble after a
// chart was already computed.
var (
	ErrEmptyDataset           = errors.New("no transactions match the requested filter")
	ErrDatasetTooLarge        = errors.New("transaction set exceeds the aggregation limit")
	ErrUnsupportedAggregation = errors.New("dataset cannot support the requested aggregation")
	ErrSpecInvalid            = errors.New("chart specification failed validation")
	ErrPersistence            = errors.New("chart request could not be persisted")
)

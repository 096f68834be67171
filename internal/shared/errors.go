package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingToken  = fmt.Errorf("missing API token")

	// Data file errors
	ErrMissingDataFile = fmt.Errorf("data file not found")
	ErrInvalidDataFile = fmt.Errorf("invalid data file")

	// API and run errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrRunAborted = fmt.Errorf("run aborted")
)

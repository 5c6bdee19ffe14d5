package dataset

import "fmt"

// ErrDataUnavailable means the dataset is missing, unreadable or empty.
type ErrDataUnavailable struct {
	Location string
	Err      error
}

func (e *ErrDataUnavailable) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("dataset unavailable: %v", e.Err)
	}
	return fmt.Sprintf("dataset %s unavailable: %v", e.Location, e.Err)
}

func (e *ErrDataUnavailable) Unwrap() error { return e.Err }

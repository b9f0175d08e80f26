package git

import "fmt"

// PushError is returned when every push attempt failed
type PushError struct {
	Attempts int
	Err      error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("failed to push after %d attempts: %v", e.Attempts, e.Err)
}

func (e *PushError) Unwrap() error {
	return e.Err
}

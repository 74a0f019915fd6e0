package compute

import "fmt"

// FatalError reports an engine failure. It is never visible to scripts.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

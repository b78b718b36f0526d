package dedupe

// StoreError wraps a failure of a graph database operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return "store operation failed: " + e.Op
	}
	return "store operation failed: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support for StoreError.
func (e *StoreError) Is(target error) bool {
	_, ok := target.(*StoreError)
	return ok
}

// NewStoreError creates a new store error wrapping err.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

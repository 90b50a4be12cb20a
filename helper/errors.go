package helper

import "fmt"

// NewError wraps an error with the operation that failed
func NewError(operation string, err error) error {
	return fmt.Errorf("failed to %v: %w", operation, err)
}

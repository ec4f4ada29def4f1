package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned before any computation when a solve or
	// config value is out of its domain.
	ErrInvalidParameter = errors.New("calculator: invalid parameter")

	// ErrEmptyGrid is returned by Summarize for a grid with no rows or columns.
	ErrEmptyGrid = errors.New("calculator: empty temperature grid")
)

// ParameterError names the offending parameter. It unwraps to ErrInvalidParameter.
type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s=%v %s", ErrInvalidParameter, e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

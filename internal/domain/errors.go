package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData is returned when a required input (the current price) is missing
	ErrInsufficientData = errors.New("insufficient data")
	// ErrIndicatorUnavailable marks an indicator that could not be produced
	ErrIndicatorUnavailable = errors.New("indicator unavailable")
	// ErrUpstreamProvider wraps failures of a required upstream provider
	ErrUpstreamProvider = errors.New("upstream provider failed")
	// ErrInvalidInput is returned for malformed holdings or allocations
	ErrInvalidInput = errors.New("invalid input")
)

// InsufficientDataError names the missing field
type InsufficientDataError struct {
	Symbol string
	Field  string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: missing %s", e.Symbol, e.Field)
}

// Is matches ErrInsufficientData
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// UpstreamProviderError wraps a provider failure
type UpstreamProviderError struct {
	Provider string
	Symbol   string
	Err      error
}

func (e *UpstreamProviderError) Error() string {
	return fmt.Sprintf("%s provider failed for %s: %v", e.Provider, e.Symbol, e.Err)
}

func (e *UpstreamProviderError) Unwrap() error {
	return e.Err
}

// Is matches ErrUpstreamProvider
func (e *UpstreamProviderError) Is(target error) bool {
	return target == ErrUpstreamProvider
}

// IndicatorUnavailableError names an indicator that could not be produced
type IndicatorUnavailableError struct {
	Indicator string
	Reason    string
}

func (e *IndicatorUnavailableError) Error() string {
	return fmt.Sprintf("indicator %s unavailable: %s", e.Indicator, e.Reason)
}

// Is matches ErrIndicatorUnavailable
func (e *IndicatorUnavailableError) Is(target error) bool {
	return target == ErrIndicatorUnavailable
}

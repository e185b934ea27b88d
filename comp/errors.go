/*
errors.go - Centralized error types for the compensation engine

PURPOSE:
  All error types in one place. The engine distinguishes two severities:

  1. Configuration errors - inconsistent or missing configuration (bad
     weight sums, missing role scale, missing budget). Fatal to the run
     for the affected rep/bucket. MUST be surfaced, never defaulted: a
     quarter must not silently compute against broken configuration.

  2. Record skips - per-order lookups that miss (unknown customer, no
     rate row). Recoverable: the record is skipped, counted under a named
     reason, and the run completes.

USAGE:
  Domain packages wrap sentinels with context:

    if errors.Is(err, comp.ErrRoleScaleMissing) { ... }

    var cfgErr *comp.ConfigError
    if errors.As(err, &cfgErr) { ... }
*/
package comp

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidWeights is returned when active weights fail the weight
	// validator. Wrapped by ConfigError with the offending scope.
	ErrInvalidWeights = errors.New("weights do not sum to 1.0")

	// ErrRoleScaleMissing is returned when a rep's title has no role scale.
	ErrRoleScaleMissing = errors.New("no role scale for title")

	// ErrBudgetMissing is returned when a rep's title has no budget record.
	ErrBudgetMissing = errors.New("no budget for title")

	// ErrConfigNotFound is returned when no configuration document exists
	// for the requested period.
	ErrConfigNotFound = errors.New("configuration not found for period")

	// ErrRecordNotFound is returned by store reads that miss.
	ErrRecordNotFound = errors.New("record not found")
)

// =============================================================================
// CONFIG ERROR - Fatal, surfaced configuration problems
// =============================================================================

// ConfigError reports inconsistent configuration. Scope names the offending
// piece ("bucket weights", `title "AE"`), Err is the wrapped sentinel.
type ConfigError struct {
	Scope  string
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("configuration error (%s): %v: %s", e.Scope, e.Err, e.Detail)
	}
	return fmt.Sprintf("configuration error (%s): %v", e.Scope, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError builds a ConfigError wrapping the given sentinel.
func NewConfigError(scope string, err error, detail string) *ConfigError {
	return &ConfigError{Scope: scope, Detail: detail, Err: err}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// =============================================================================
// SKIP REASONS - Recoverable per-record failures, counted not raised
// =============================================================================

// SkipReason names why an order record produced no commission record.
// Skips are reported in run summaries, never silently dropped.
type SkipReason string

const (
	SkipMissingCustomer SkipReason = "missing_customer"
	SkipMissingRate     SkipReason = "missing_rate"
	SkipExcludedProduct SkipReason = "excluded_product"
	SkipOutsidePeriod   SkipReason = "outside_period"
)

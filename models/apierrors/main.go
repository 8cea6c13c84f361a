package apierrors

import (
	"errors"
	"fmt"
)

// AcceptedFormats is appended to every query parsing failure.
const AcceptedFormats = "Try providing either one variant per line or all variants in one line separated by space or comma. " +
	"Or variant, beta, and optionally any custom value separated by space or comma on each line. " +
	"Variants are given as chr:pos:ref:alt (or chr-pos-ref-alt)."

type (
	// ParseError is malformed user input
	ParseError struct {
		Message string
	}

	GeneNotFoundError struct {
		Gene string
	}

	// VariantNotFoundError means the query succeeded but matched nothing
	VariantNotFoundError struct {
		Message string
	}

	// NotFoundError is an unknown id in any other lookup
	NotFoundError struct {
		Message string
	}

	// DataAccessError wraps a failure reading an external store. Error()
	// never exposes the underlying cause; use Unwrap for logging.
	DataAccessError struct {
		Resource string
		Err      error
	}

	// ResourceInitError is fatal and only raised at startup
	ResourceInitError struct {
		Resource string
		Reason   string
	}

	QueryTooLargeError struct {
		Max       int
		Requested int
	}

	// RegionTooLargeError rejects a padding or region length above the limit.
	RegionTooLargeError struct {
		What      string
		Max       int
		Requested int
	}
)

func NewParseError(format string, args ...interface{}) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *GeneNotFoundError) Error() string {
	return fmt.Sprintf("Gene %s not found", e.Gene)
}

func (e *VariantNotFoundError) Error() string {
	if e.Message == "" {
		return "No variants found"
	}
	return e.Message
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *DataAccessError) Error() string {
	return "failed to read data"
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// Detail is meant for logs only.
func (e *DataAccessError) Detail() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: unknown failure", e.Resource)
	}
	return fmt.Sprintf("%s: %v", e.Resource, e.Err)
}

func (e *ResourceInitError) Error() string {
	return fmt.Sprintf("resource %s could not be initialized: %s", e.Resource, e.Reason)
}

func (e *QueryTooLargeError) Error() string {
	return fmt.Sprintf("Too many variants in the query (%d). The maximum is %d.", e.Requested, e.Max)
}

func (e *RegionTooLargeError) Error() string {
	return fmt.Sprintf("The %s (%d) is too large. The maximum is %d.", e.What, e.Requested, e.Max)
}

// IsTooLarge reports a request rejected for its size.
func IsTooLarge(err error) bool {
	var query *QueryTooLargeError
	var region *RegionTooLargeError
	return errors.As(err, &query) || errors.As(err, &region)
}

func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var gene *GeneNotFoundError
	var variant *VariantNotFoundError
	var other *NotFoundError
	return errors.As(err, &gene) || errors.As(err, &variant) || errors.As(err, &other)
}

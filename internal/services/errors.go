package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks inconsistent or malformed manifest data that should
	// have been rejected upstream. Non-retryable.
	ErrValidation = errors.New("validation error")
	// ErrUnsupported marks programmer/data errors such as an unknown codec or
	// an untranslatable language code. Fatal, non-retryable.
	ErrUnsupported = errors.New("unsupported configuration")
	// ErrConfiguration marks unusable application configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks a missing record or file.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks store or network faults that are safe to retry.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error to a stable category string for logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTransient):
		return "transient"
	default:
		return "unknown"
	}
}

// Retryable reports whether the error belongs to the transient class.
// Validation and unsupported-configuration errors never qualify.
func Retryable(err error) bool {
	return err != nil && errors.Is(err, ErrTransient)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

package analysis

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks structural defects found in a unified analysis
	// document while running in strict mode.
	ErrValidation = errors.New("validation error")
	// ErrExtraction marks a context-extraction failure.
	ErrExtraction = errors.New("extraction error")
	// ErrConfiguration marks invalid or missing configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrExternalService marks failures from the LLM collaborator.
	ErrExternalService = errors.New("external service error")
	// ErrNotFound marks a missing document or stored report.
	ErrNotFound = errors.New("not found")
	// ErrTimeout marks an operation that exceeded its deadline.
	ErrTimeout = errors.New("timeout")
)

// Wrap tags err with a marker and component/operation context. The marker
// should be one of the exported sentinels above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExtraction
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
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
		return "analysis failure"
	}
	return strings.Join(parts, ": ")
}

package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks invalid stage parameters or construction input
	// (zero sources, bad mode, out-of-range threshold). Fatal to the
	// invocation, never to the process.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks malformed input data (bad descriptors, malformed
	// dropout specs).
	ErrValidation = errors.New("validation error")
	// ErrSource marks failures reading from an upstream field source.
	ErrSource = errors.New("source error")
	// ErrNotFound marks missing stages, fields, or files.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrSource
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsConfiguration reports whether the error chain carries a configuration or
// validation marker, i.e. the caller should fail the whole invocation rather
// than degrade.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrValidation)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}

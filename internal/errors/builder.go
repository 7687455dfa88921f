package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorBuilder accumulates a cause, a user facing hint and reportable details
// before the error is marked with a sentinel.
type ErrorBuilder struct {
	err     error
	hint    string
	details map[string]any
}

// NewError starts a builder from a fresh error message
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepth(1, msg)}
}

// NewErrorf starts a builder from a formatted error message
func NewErrorf(format string, args ...any) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepthf(1, format, args...)}
}

// WithError starts a builder wrapping an existing error
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.NewWithDepth(1, "unknown error")
	}
	return &ErrorBuilder{err: err}
}

func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.hint = hint
	return b
}

func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches details that are safe to return to the caller
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	if b.details == nil {
		b.details = make(map[string]any, len(details))
	}
	for k, v := range details {
		b.details[k] = v
	}
	return b
}

// Mark finalizes the builder and marks the resulting error with reference.
func (b *ErrorBuilder) Mark(reference error) error {
	err := b.err
	if b.hint != "" {
		err = errors.WithHint(err, b.hint)
	}
	if len(b.details) > 0 {
		err = &reportableError{cause: err, details: b.details}
	}
	return errors.Mark(err, reference)
}

// reportableError carries details meant for the API response.
type reportableError struct {
	cause   error
	details map[string]any
}

func (e *reportableError) Error() string { return e.cause.Error() }
func (e *reportableError) Cause() error  { return e.cause }
func (e *reportableError) Unwrap() error { return e.cause }

// GetHint returns the outermost hint attached to err, if any
func GetHint(err error) string {
	hints := errors.GetAllHints(err)
	if len(hints) == 0 {
		return ""
	}
	return hints[len(hints)-1]
}

// GetReportableDetails merges every detail map found on the chain.
func GetReportableDetails(err error) map[string]any {
	var out map[string]any
	for err != nil {
		if re, ok := err.(*reportableError); ok {
			if out == nil {
				out = make(map[string]any)
			}
			for k, v := range re.details {
				if _, seen := out[k]; !seen {
					out[k] = v
				}
			}
		}
		err = errors.UnwrapOnce(err)
	}
	return out
}

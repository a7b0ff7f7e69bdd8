// internal/errors/errors.go - Detection error taxonomy
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Category classifies a detection error by which stage produced it.
type Category string

const (
	// CategoryInput covers malformed or unusable caller input.
	CategoryInput Category = "input"
	// CategoryExtraction covers network and parsing failures while
	// gathering metadata.
	CategoryExtraction Category = "extraction"
	// CategoryConfig covers invalid configuration and rule files.
	CategoryConfig Category = "config"
	// CategoryLogic covers internal failures, including recovered panics.
	CategoryLogic Category = "logic"
)

// DetectionError carries the category and originating operation alongside
// the underlying error.
type DetectionError struct {
	Category Category
	Op       string
	URL      string
	Err      error
}

// Error implements the error interface.
func (e *DetectionError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Category))
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, " (%s)", e.URL)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error for errors.Is / errors.As chains.
func (e *DetectionError) Unwrap() error {
	return e.Err
}

// New creates a DetectionError with a formatted message.
func New(category Category, op string, format string, args ...interface{}) *DetectionError {
	return &DetectionError{
		Category: category,
		Op:       op,
		Err:      fmt.Errorf(format, args...),
	}
}

// Wrap annotates err with a category and operation. Returns nil when err
// is nil.
func Wrap(category Category, op string, err error) *DetectionError {
	if err == nil {
		return nil
	}
	return &DetectionError{
		Category: category,
		Op:       op,
		Err:      err,
	}
}

// WithURL attaches the offending URL to the error.
func (e *DetectionError) WithURL(url string) *DetectionError {
	e.URL = url
	return e
}

// CategoryOf extracts the category from an error chain, or CategoryLogic
// when the chain carries no DetectionError.
func CategoryOf(err error) Category {
	var de *DetectionError
	if errors.As(err, &de) {
		return de.Category
	}
	return CategoryLogic
}

// IsCategory reports whether the error chain carries the given category.
func IsCategory(err error, category Category) bool {
	var de *DetectionError
	return errors.As(err, &de) && de.Category == category
}

// UserMessage converts an error into a message safe to show end users.
// Technical detail stays in logs.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch CategoryOf(err) {
	case CategoryInput:
		return "The URL could not be processed. Check that it is well formed."
	case CategoryExtraction:
		return "Metadata could not be fetched for this URL. Partial results were returned."
	case CategoryConfig:
		return "The detection configuration is invalid. Contact the operator."
	default:
		return "An internal error occurred while processing the URL."
	}
}

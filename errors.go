package logcolor

import (
	"fmt"
	"strings"
)

// CircularReferenceError reports a pattern reference that leads back to a
// token already being expanded.
type CircularReferenceError struct {
	Chain []string // Expansion stack ending with the repeated name
}

// Error implements the error interface.
func (e *CircularReferenceError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("circular reference: %s", strings.Join(e.Chain, " -> "))
}

// UnknownTokenError reports a reference to a token that cannot supply a pattern.
type UnknownTokenError struct {
	Name     string
	Referrer string
	Reason   string // Empty when the name does not exist at all
}

// Error implements the error interface.
func (e *UnknownTokenError) Error() string {
	if e == nil {
		return "<nil>"
	}
	reason := e.Reason
	if reason == "" {
		reason = "is not defined"
	}
	if e.Referrer == "" {
		return fmt.Sprintf("token %q %s", e.Name, reason)
	}
	return fmt.Sprintf("token %q referenced by %q %s", e.Name, e.Referrer, reason)
}

// DuplicateTokenError reports two definitions with the same name.
type DuplicateTokenError struct {
	Name string
}

// Error implements the error interface.
func (e *DuplicateTokenError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("duplicate token %q", e.Name)
}

// InvalidPatternError reports an expanded pattern the regex engine rejected.
type InvalidPatternError struct {
	Name    string
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("token %q: invalid pattern %q: %v", e.Name, e.Pattern, e.Err)
}

// Unwrap returns the underlying regex error.
func (e *InvalidPatternError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

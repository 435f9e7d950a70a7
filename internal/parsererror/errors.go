// Package parsererror defines the typed errors shared by the parsing pipeline,
// the coach service and the HTTP surface.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyReply is returned by oracle backends when a completion carries no text.
var ErrEmptyReply = errors.New("empty response from oracle")

// ParseError represents a failure to parse one field of one input record.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LineError tags a validation failure with the 1-based line (or record) number it came from.
type LineError struct {
	Line   int
	Reason string
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("第 %d 行: %s", e.Line, e.Reason)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// InputValidationError is reported to the caller with enough detail to correct the
// input. It is never forwarded to the oracle.
type InputValidationError struct {
	Message string
	Lines   []*LineError
}

func (e *InputValidationError) Error() string {
	if len(e.Lines) == 0 {
		return e.Message
	}
	return e.Message + "\n" + strings.Join(e.Details(), "\n")
}

// Details returns one human-readable message per failing line, in input order.
func (e *InputValidationError) Details() []string {
	details := make([]string, 0, len(e.Lines))
	for _, line := range e.Lines {
		details = append(details, line.Error())
	}
	return details
}

// OracleError wraps a failure of the text-completion backend: transport errors,
// rejected requests and empty replies alike.
type OracleError struct {
	Provider  string
	Operation string
	Err       error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s %s failed: %v", e.Provider, e.Operation, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// CategorizationError represents a failure to load or apply category rules.
type CategorizationError struct {
	Source string
	Err    error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("category rules from %s: %v", e.Source, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) an InputValidationError.
func IsValidation(err error) bool {
	var target *InputValidationError
	return errors.As(err, &target)
}

// IsOracle reports whether err is (or wraps) an OracleError.
func IsOracle(err error) bool {
	var target *OracleError
	return errors.As(err, &target)
}

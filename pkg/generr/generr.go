// Package generr provides structured errors for the generators.
//
// Every failure carries a machine-readable Code. Codes fall into three
// classes: data-integrity failures (a broken content catalogue), invalid
// arguments (a caller mistake), and state conflicts (an operation that is
// not allowed in the aggregate's current state).
package generr

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an error that did not originate here.
	CodeUnknown Code = "UNKNOWN"

	// Data-integrity errors
	CodeRangeOverlap          Code = "RANGE_OVERLAP"
	CodeRangeGap              Code = "RANGE_GAP"
	CodeRangeOutOfDomain      Code = "RANGE_OUT_OF_DOMAIN"
	CodeNoStructuralBeat      Code = "NO_STRUCTURAL_BEAT"
	CodeNoBlankSentinel       Code = "NO_BLANK_SENTINEL"
	CodeNoSettledEntry        Code = "NO_SETTLED_ENTRY"
	CodeEmptyCandidateSet     Code = "EMPTY_CANDIDATE_SET"
	CodeUndersizedSideArcs    Code = "UNDERSIZED_SIDE_CATALOGUE"
	CodeInvalidCatalogueEntry Code = "INVALID_CATALOGUE_ENTRY"

	// Internal errors
	CodeSamplerExhausted Code = "SAMPLER_EXHAUSTED"

	// Caller-input errors
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeUnknownReference Code = "UNKNOWN_REFERENCE"

	// State errors
	CodeStoryConcluded        Code = "STORY_CONCLUDED"
	CodeTurningPointFrozen    Code = "TURNING_POINT_FROZEN"
	CodeNoTurningPoint        Code = "NO_TURNING_POINT"
	CodeAwaitingCharacter     Code = "AWAITING_CHARACTER"
	CodeNotAwaitingCharacter  Code = "NOT_AWAITING_CHARACTER"
	CodePlotLineConcluded     Code = "PLOT_LINE_CONCLUDED"
	CodeTurningPointRemaining Code = "TURNING_POINT_REMAINING"
)

var dataIntegrity = map[Code]bool{
	CodeRangeOverlap:          true,
	CodeRangeGap:              true,
	CodeRangeOutOfDomain:      true,
	CodeNoStructuralBeat:      true,
	CodeNoBlankSentinel:       true,
	CodeNoSettledEntry:        true,
	CodeEmptyCandidateSet:     true,
	CodeUndersizedSideArcs:    true,
	CodeInvalidCatalogueEntry: true,
}

var invalidArgument = map[Code]bool{
	CodeInvalidArgument:  true,
	CodeUnknownReference: true,
}

var stateConflict = map[Code]bool{
	CodeStoryConcluded:        true,
	CodeTurningPointFrozen:    true,
	CodeNoTurningPoint:        true,
	CodeAwaitingCharacter:     true,
	CodeNotAwaitingCharacter:  true,
	CodePlotLineConcluded:     true,
	CodeTurningPointRemaining: true,
}

// Error is a domain error with a code and optional metadata.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// With returns the error with key=value added to its metadata.
func (e *Error) With(key string, value any) *Error {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = fmt.Sprint(value)
	return e
}

// Wrap attaches an underlying cause.
func (e *Error) Wrap(cause error) *Error {
	e.Cause = cause
	return e
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if len(e.Metadata) > 0 {
		keys := slices.Sorted(maps.Keys(e.Metadata))
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+e.Metadata[k])
		}
		sb.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}
	if e.Cause != nil {
		sb.WriteString(": " + e.Cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// IsDataIntegrity reports whether err signals a broken catalogue.
func IsDataIntegrity(err error) bool {
	return dataIntegrity[GetCode(err)]
}

// IsInvalidArgument reports whether err signals a caller mistake.
func IsInvalidArgument(err error) bool {
	return invalidArgument[GetCode(err)]
}

// IsStateConflict reports whether err was caused by the aggregate's state.
func IsStateConflict(err error) bool {
	return stateConflict[GetCode(err)]
}

// InvalidArgument is shorthand for an INVALID_ARGUMENT error.
func InvalidArgument(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

// Package diagnostics carries the typer's error taxonomy. Errors have a
// stable code, a position and a message; Display and TypePath are control
// transfer signals for editor integration, not errors, and must never be
// rendered as diagnostics.
package diagnostics

import (
	"fmt"

	"github.com/cinderlang/cinder/internal/token"
	"github.com/cinderlang/cinder/internal/typesystem"
)

// ErrorCode is a stable diagnostic code.
type ErrorCode string

const (
	// ErrT001: identifier lookup exhausted.
	ErrT001 ErrorCode = "T001"
	// ErrT002: module resolution failed.
	ErrT002 ErrorCode = "T002"
	// ErrT003: type unification failure.
	ErrT003 ErrorCode = "T003"
	// ErrT004: composed diagnostic.
	ErrT004 ErrorCode = "T004"
	// ErrT005: call arity mismatch.
	ErrT005 ErrorCode = "T005"
	// ErrT006: illegal access (property mode, visibility, keywords).
	ErrT006 ErrorCode = "T006"
	// ErrT007: switch/match errors (exhaustiveness, duplicate cases).
	ErrT007 ErrorCode = "T007"
)

// DiagnosticError is a typed compiler diagnostic.
type DiagnosticError struct {
	Code    ErrorCode
	Pos     token.Position
	Message string
	Nested  error // e.g. the unifier trace under a T003
}

func (e *DiagnosticError) Error() string {
	msg := e.Message
	if e.Nested != nil {
		msg = fmt.Sprintf("%s\n%s", msg, e.Nested.Error())
	}
	if e.Pos.IsZero() {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, msg)
}

func (e *DiagnosticError) Unwrap() error { return e.Nested }

// NewError builds a diagnostic with a fixed message.
func NewError(code ErrorCode, pos token.Position, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Pos: pos, Message: msg}
}

// Errorf builds a diagnostic with a formatted message.
func Errorf(code ErrorCode, pos token.Position, format string, args ...any) *DiagnosticError {
	return &DiagnosticError{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// WrapUnify attaches a unifier trace to a T003 with context, the
// "Stack(Unify, Custom(...))" composition of the argument matcher.
func WrapUnify(pos token.Position, context string, cause error) *DiagnosticError {
	return &DiagnosticError{Code: ErrT003, Pos: pos, Message: context, Nested: cause}
}

// DisplaySignal aborts typing at an editor display query. It carries the
// synthesized field set of the queried expression.
type DisplaySignal struct {
	T typesystem.Type
}

func (s *DisplaySignal) Error() string { return "display" }

// TypePathSignal aborts typing at an editor type-path query.
type TypePathSignal struct {
	Path string
}

func (s *TypePathSignal) Error() string { return "type path " + s.Path }

// IsSignal reports whether err is a control-transfer signal rather than a
// diagnostic.
func IsSignal(err error) bool {
	switch err.(type) {
	case *DisplaySignal, *TypePathSignal:
		return true
	}
	return false
}

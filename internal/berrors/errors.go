// Package berrors implements the structured error types the lowering
// pass reports: semantic errors that abort a single compilation, and
// internal errors that indicate a compiler bug rather than bad BASIC
// source.
package berrors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies a semantic error category (spec.md §7).
type Kind string

const (
	DataTypeMismatch           Kind = "DATA_TYPE_MISMATCH"
	BadAssignment              Kind = "BAD_ASSIGNMENT"
	BadArgument                Kind = "BAD_ARGUMENT"
	ScalarCannotBeIndexed      Kind = "SCALAR_VARIABLE_CANNOT_BE_INDEXED"
	InsufficientUDFArgs        Kind = "INSUFFICIENT_UDF_ARGS"
	ForWithoutNext             Kind = "FOR_WITHOUT_NEXT"
	NextWithoutFor             Kind = "NEXT_WITHOUT_FOR"
	WhileWithoutWend           Kind = "WHILE_WITHOUT_WEND"
	WendWithoutWhile           Kind = "WEND_WITHOUT_WHILE"
	MismatchedElseBegin        Kind = "MISMATCHED_ELSEBEGIN"
	MismatchedEndIf            Kind = "MISMATCHED_ENDIF"
	NotDefined                 Kind = "NOT_DEFINED"
	UnknownFunction            Kind = "UNKNOWN_FUNCTION"
)

// SourceLoc pinpoints a position in the original BASIC source.
type SourceLoc struct {
	File   string
	Line   int
	Column int
}

func (l SourceLoc) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// SemanticError is raised by lowering for a malformed-but-parseable
// program. It carries the offending source excerpt and a short reason,
// per spec.md §7.
type SemanticError struct {
	Kind    Kind
	Message string
	Loc     SourceLoc
	Excerpt string
}

func New(kind Kind, loc SourceLoc, excerpt, format string, args ...interface{}) *SemanticError {
	return &SemanticError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Loc:     loc,
		Excerpt: excerpt,
	}
}

func (e *SemanticError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s\n", e.Kind, e.Message))
	sb.WriteString(fmt.Sprintf("  at %s\n", e.Loc))
	if e.Excerpt != "" {
		sb.WriteString(fmt.Sprintf("\n  %d | %s\n", e.Loc.Line, e.Excerpt))
		if e.Loc.Column > 0 {
			pad := strings.Repeat(" ", len(fmt.Sprintf("%d | ", e.Loc.Line))+e.Loc.Column-1)
			sb.WriteString(pad + "^\n")
		}
	}
	return sb.String()
}

// InternalError indicates a compiler bug: an unexpected tree shape, a
// missing instruction binding, or an unreachable arm in a typed
// switch. Unlike SemanticError it is never expected in correct
// operation and is always wrapped with a stack trace so a panic
// recovered at the front door still points at the offending lowering
// rule.
type InternalError struct {
	cause error
}

func Internal(format string, args ...interface{}) *InternalError {
	return &InternalError{cause: errors.WithStack(fmt.Errorf(format, args...))}
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error: %+v", e.cause)
}

func (e *InternalError) Unwrap() error { return e.cause }

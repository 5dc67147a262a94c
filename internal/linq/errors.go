package linq

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/idxc/internal/expr"
)

// ErrorCode categorizes compile errors.
type ErrorCode string

const (
	// ErrCodeAmbiguousRoot indicates zero or several distinct roots where
	// exactly one is required.
	ErrCodeAmbiguousRoot ErrorCode = "AMBIGUOUS_ROOT"

	// ErrCodeNotARoot indicates a SelectMany element argument that is not a
	// bare root reference.
	ErrCodeNotARoot ErrorCode = "NOT_A_ROOT"

	// ErrCodeUnsupportedOperator indicates an operator with no template.
	ErrCodeUnsupportedOperator ErrorCode = "UNSUPPORTED_OPERATOR"

	// ErrCodeDuplicateRewrite indicates a root absorbed twice by transparent
	// identifiers.
	ErrCodeDuplicateRewrite ErrorCode = "DUPLICATE_REWRITE"

	// ErrCodeElementTypeMismatch indicates a SelectMany element variable whose
	// declared type differs from the collection's element type.
	ErrCodeElementTypeMismatch ErrorCode = "ELEMENT_TYPE_MISMATCH"

	// ErrCodeInvalidField indicates a projection field name that cannot be
	// emitted (empty or dotted).
	ErrCodeInvalidField ErrorCode = "INVALID_FIELD"
)

// Error is returned by every failing compile step.
//
// Errors are raised synchronously while the tree is built or rendered and
// are never retried. No partial query text accompanies an Error.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Roots lists the distinct roots found (AMBIGUOUS_ROOT).
	Roots []string

	// Operator is the operator without a template (UNSUPPORTED_OPERATOR).
	Operator expr.Operator

	// Root is the offending root name (DUPLICATE_REWRITE, NOT_A_ROOT).
	Root string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Roots) > 0 {
		return fmt.Sprintf("%s: %s (roots=%s)", e.Code, e.Message, strings.Join(e.Roots, ","))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches sentinel errors by code, so errors.Is(err, ErrAmbiguousRoot)
// works for any *Error with that code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// Sentinels for errors.Is.
var (
	ErrAmbiguousRoot       = &Error{Code: ErrCodeAmbiguousRoot}
	ErrNotARoot            = &Error{Code: ErrCodeNotARoot}
	ErrUnsupportedOperator = &Error{Code: ErrCodeUnsupportedOperator}
	ErrDuplicateRewrite    = &Error{Code: ErrCodeDuplicateRewrite}
	ErrElementTypeMismatch = &Error{Code: ErrCodeElementTypeMismatch}
	ErrInvalidField        = &Error{Code: ErrCodeInvalidField}
)

// IsAmbiguousRoot returns true if the error is an ambiguous root error.
// Uses errors.As to handle wrapped errors.
func IsAmbiguousRoot(err error) bool {
	return hasCode(err, ErrCodeAmbiguousRoot)
}

// IsNotARoot returns true if the error is a not-a-root error.
func IsNotARoot(err error) bool {
	return hasCode(err, ErrCodeNotARoot)
}

// IsUnsupportedOperator returns true if the error is an unsupported operator error.
func IsUnsupportedOperator(err error) bool {
	return hasCode(err, ErrCodeUnsupportedOperator)
}

// IsDuplicateRewrite returns true if the error is a duplicate rewrite error.
func IsDuplicateRewrite(err error) bool {
	return hasCode(err, ErrCodeDuplicateRewrite)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// NewAmbiguousRootError creates an Error for a root count other than one.
func NewAmbiguousRootError(roots []string) *Error {
	msg := "expected exactly one root variable"
	if len(roots) == 0 {
		msg = "expression references no root variable"
	}
	return &Error{
		Code:    ErrCodeAmbiguousRoot,
		Message: msg,
		Roots:   roots,
	}
}

// NewNotARootError creates an Error for a non-root SelectMany element.
func NewNotARootError(n expr.Node) *Error {
	desc := fmt.Sprintf("%T", n)
	if p, ok := n.(*expr.Path); ok {
		desc = p.String()
	}
	return &Error{
		Code:    ErrCodeNotARoot,
		Message: fmt.Sprintf("SelectMany element must be a bare root variable, got %s", desc),
		Root:    desc,
	}
}

// NewUnsupportedOperatorError creates an Error for an operator with no template.
func NewUnsupportedOperatorError(op expr.Operator) *Error {
	return &Error{
		Code:     ErrCodeUnsupportedOperator,
		Message:  fmt.Sprintf("no template registered for operator %q", op),
		Operator: op,
	}
}

// NewDuplicateRewriteError creates an Error for a root absorbed twice.
func NewDuplicateRewriteError(root string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateRewrite,
		Message: fmt.Sprintf("root %q is already absorbed by a transparent identifier", root),
		Root:    root,
	}
}

// NewElementTypeMismatchError creates an Error for a SelectMany element of
// the wrong declared type.
func NewElementTypeMismatchError(root, want, got string) *Error {
	return &Error{
		Code:    ErrCodeElementTypeMismatch,
		Message: fmt.Sprintf("element variable %q has type %s, collection holds %s", root, got, want),
		Root:    root,
	}
}

// NewInvalidFieldError creates an Error for an unusable projection field name.
func NewInvalidFieldError(name string) *Error {
	return &Error{
		Code:    ErrCodeInvalidField,
		Message: fmt.Sprintf("projection field name %q must be a non-empty simple identifier", name),
	}
}

// Package pverr defines the error taxonomy shared by the codec and the edit
// session: decode failures, encode failures, and deliberately unsupported
// operations. History boundary conditions are not errors and are signaled by
// ok booleans instead.
package pverr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an operation failure.
type Kind string

const (
	KindDecode      Kind = "decode"
	KindEncode      Kind = "encode"
	KindUnsupported Kind = "unsupported"
	KindValidation  Kind = "validation"
)

// OpError is a classified failure from a single decode/transform/encode step.
type OpError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *OpError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *OpError) Unwrap() error { return e.Cause }

// Decode wraps an unreadable/corrupt/unreachable source error.
func Decode(message string, cause error) *OpError {
	return &OpError{Kind: KindDecode, Message: message, Cause: cause}
}

// Encode wraps an invalid-output error (e.g. zero dimensions).
func Encode(message string, cause error) *OpError {
	return &OpError{Kind: KindEncode, Message: message, Cause: cause}
}

// Unsupported marks a feature-gated operation. It is not a crash: callers
// surface it as a silent no-op.
func Unsupported(message string) *OpError {
	return &OpError{Kind: KindUnsupported, Message: message}
}

// Validation marks a rejected parameter set.
func Validation(message string) *OpError {
	return &OpError{Kind: KindValidation, Message: message}
}

// IsKind reports whether err is an *OpError of the given kind.
func IsKind(err error, kind Kind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// BulkError aggregates per-item failures from a bulk fan-out. The batch
// itself still completed: failed indices kept their input reference.
type BulkError struct {
	Items map[int]error
}

func (e *BulkError) Error() string {
	idx := make([]int, 0, len(e.Items))
	for i := range e.Items {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	parts := make([]string, 0, len(idx))
	for _, i := range idx {
		parts = append(parts, fmt.Sprintf("item %d: %v", i, e.Items[i]))
	}
	return fmt.Sprintf("%d of batch failed: %s", len(e.Items), strings.Join(parts, "; "))
}

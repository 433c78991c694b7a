// Package sqlerr contains the error taxonomy of the driver core: a single
// Error type tagged with a Kind, non-fatal warnings and the ordered warning
// chain they are collected into.
package sqlerr

import (
	"errors"
	"fmt"
	"strconv"
)

// Error is the only error type returned by public operations of the core.
//
// Two errors match under errors.Is when their kinds are equal, so the
// sentinels below may be used as targets.
type Error struct {
	Kind       Kind
	Reason     string
	SQLState   string
	VendorCode int32

	// Truncation is set for KindTruncation errors.
	Truncation *Truncation

	err error
}

var (
	ErrConnectionLost           = &Error{Kind: KindConnectionLost}
	ErrConnectionAlreadyClosed  = &Error{Kind: KindConnectionAlreadyClosed}
	ErrConnectionBusy           = &Error{Kind: KindConnectionBusy}
	ErrResourceClosed           = &Error{Kind: KindResourceClosed}
	ErrResourceFreed            = &Error{Kind: KindResourceFreed}
	ErrInvalidParameterIndex    = &Error{Kind: KindInvalidParameterIndex}
	ErrParameterNotSet          = &Error{Kind: KindParameterNotSet}
	ErrTypeMismatch             = &Error{Kind: KindTypeMismatch}
	ErrColumnIndexOutOfRange    = &Error{Kind: KindColumnIndexOutOfRange}
	ErrNoCurrentRow             = &Error{Kind: KindNoCurrentRow}
	ErrUnknownTypeCode          = &Error{Kind: KindUnknownTypeCode}
	ErrUnknownSavepoint         = &Error{Kind: KindUnknownSavepoint}
	ErrTransactionAlreadyActive = &Error{Kind: KindTransactionAlreadyActive}
	ErrNoActiveTransaction      = &Error{Kind: KindNoActiveTransaction}
	ErrCursorExhausted          = &Error{Kind: KindCursorExhausted}
	ErrTruncation               = &Error{Kind: KindTruncation}
	ErrCancelled                = &Error{Kind: KindCancelled}
	ErrUnsupported              = &Error{Kind: KindUnsupported}
	ErrInvalidArgument          = &Error{Kind: KindInvalidArgument}
	ErrServer                   = &Error{Kind: KindServer}
)

func New(kind Kind, reason string) *Error {
	return &Error{
		Kind:     kind,
		Reason:   reason,
		SQLState: kind.defaultState(),
	}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Server makes an error reported by the database server.
func Server(state string, vendorCode int32, reason string) *Error {
	return &Error{
		Kind:       KindServer,
		Reason:     reason,
		SQLState:   state,
		VendorCode: vendorCode,
	}
}

// WriteTruncation makes the hard failure raised when a value does not fit
// the negotiated transfer size on a write path.
func WriteTruncation(t Truncation) *Error {
	t.Read = false

	return &Error{
		Kind: KindTruncation,
		Reason: fmt.Sprintf("value of %s %d truncated from %d to %d",
			t.target(), t.Index, t.DataSize, t.TransferSize,
		),
		SQLState:   StateWriteTruncation,
		Truncation: &t,
	}
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.err = cause

	return &cp
}

func (e *Error) Error() string {
	b := make([]byte, 0, 64)
	b = append(b, "sqlcore: "...)
	b = append(b, e.Kind.String()...)
	if e.Reason != "" {
		b = append(b, ": "...)
		b = append(b, e.Reason...)
	}
	if e.SQLState != "" {
		b = append(b, " (SQLSTATE "...)
		b = append(b, e.SQLState...)
		if e.VendorCode != 0 {
			b = append(b, ", code "...)
			b = strconv.AppendInt(b, int64(e.VendorCode), 10)
		}
		b = append(b, ')')
	}
	if e.err != nil {
		b = append(b, ": "...)
		b = append(b, e.err.Error()...)
	}

	return string(b)
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// Category classifies the error by its SQL state and kind.
func (e *Error) Category() Category {
	switch e.Kind {
	case KindConnectionBusy, KindCancelled:
		return CategoryTransient
	case KindConnectionLost:
		return CategoryNonTransientConnection
	}

	return CategoryOf(e.SQLState)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUndefined
}

// StateOf returns the SQL state of the first *Error in err's chain.
func StateOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.SQLState
	}

	return ""
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsTransient reports whether err is a taxonomy error of a transient category.
func IsTransient(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category().IsTransient()
	}

	return false
}

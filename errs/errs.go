// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package errs defines the typed error kinds shared across the engine.
// Failure is always a returned error, never a panic or exception: every
// package wraps one of these kinds with fmt.Errorf's %w so callers can
// recover the kind with errors.Is/errors.As while still getting a
// human-readable message.
package errs

import "fmt"

// Kind is one of the error categories the engine can surface.
type Kind int

const (
	// UnsupportedOp is returned when an operation is invoked on a type
	// that does not implement it (e.g. arithmetic on a string column).
	UnsupportedOp Kind = iota
	// InvalidCast is returned for a numeric cast across non-coercible
	// types.
	InvalidCast
	// ParseError is returned for a malformed expression or literal.
	ParseError
	// ManagementError is returned for duplicate/missing names, bad
	// fields, or bad periodicities in management operations.
	ManagementError
	// InvalidOp is returned for a semantic misuse at runtime, such as
	// comparing values of mismatched types.
	InvalidOp
	// NotFound is returned when a name lookup fails.
	NotFound
	// NotYetCommitted is returned when a read targets an offset at or
	// past the read tail.
	NotYetCommitted
	// Overflow is returned when an append exceeds the maximum block
	// count of a log.
	Overflow
	// IllegalState is returned when an optional value is read while
	// absent, or an invariant is violated.
	IllegalState
)

func (k Kind) String() string {
	switch k {
	case UnsupportedOp:
		return "UnsupportedOp"
	case InvalidCast:
		return "InvalidCast"
	case ParseError:
		return "ParseError"
	case ManagementError:
		return "ManagementError"
	case InvalidOp:
		return "InvalidOp"
	case NotFound:
		return "NotFound"
	case NotYetCommitted:
		return "NotYetCommitted"
	case Overflow:
		return "Overflow"
	case IllegalState:
		return "IllegalState"
	default:
		return "UnknownError"
	}
}

// Error is a Kind paired with a formatted message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Is reports whether target is an *Error with the same Kind, so that
// errors.Is(err, errs.New(errs.NotFound, "")) style checks work without
// comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs an *Error with a formatted message, matching fmt.Errorf's
// verb handling.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf("%s: %s", k, fmt.Sprintf(format, args...))}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, and reports whether it found one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if asError(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// asError is a small helper so this package doesn't need to import
// errors just for errors.As in one place.
func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

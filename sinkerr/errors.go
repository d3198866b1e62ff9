// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package sinkerr implements an error type that defines standard
// interpretable error codes for the failure modes of the unsorted-data
// sink: I/O failure, on-disk/on-wire integrity failure, invalid
// configuration, and cancellation. Errors can be chained: thus
// attributing one error to another. It is adapted from
// github.com/grailbio/base/errors, trimmed to the kinds this system
// actually produces.
//
// Errors are safely serialized with Gob, and can thus retain
// semantics across process boundaries.
package sinkerr

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/grailbio/streamsort/log"
	"v.io/v23/verror"
)

func init() {
	gob.Register(new(Error))
}

// Separator defines the separation string inserted between
// chained errors in error messages.
var Separator = ":\n\t"

// Kind defines the type of error. Kinds are semantically meaningful,
// and may be interpreted by the receiver of an error (e.g., to decide
// whether the sink should be restarted).
type Kind int

const (
	// Other indicates an unknown error, typically a bare I/O failure
	// (open/read/write/seek/flush/create) from the spill or output layer.
	Other Kind = iota
	// Canceled indicates an operation was canceled; E assigns it to
	// errors that wrap context.Canceled. A departed notification
	// consumer is not reported as an error: fanin.Loop.Run returns nil.
	Canceled
	// Invalid indicates the caller supplied invalid arguments, e.g. an
	// argument of unsupported type passed to E.
	Invalid
	// Integrity indicates corruption was detected in a spill file or the
	// output stream (a checksum mismatch in package wire). Always fatal.
	Integrity

	maxKind
)

var kinds = map[Kind]string{
	Other:     "unknown error",
	Canceled:  "operation was canceled",
	Invalid:   "invalid argument",
	Integrity: "integrity error",
}

// kindStdErrs maps some Kinds to the standard library's equivalent.
var kindStdErrs = map[Kind]error{
	Canceled: context.Canceled,
	Invalid:  errors.New("invalid argument"),
}

// String returns a human-readable explanation of the error kind k.
func (k Kind) String() string {
	return kinds[k]
}

// Severity defines an Error's severity. An Error's severity determines
// whether an error-producing operation may be retried or not.
type Severity int

const (
	// Temporary indicates the underlying error condition is likely
	// temporary.
	Temporary Severity = -1
	// Unknown indicates the error's severity is unknown. This is the
	// default severity level.
	Unknown Severity = 0
	// Fatal indicates the underlying error condition is unrecoverable;
	// the sink stops making progress.
	Fatal Severity = 1
)

var severities = map[Severity]string{
	Temporary: "temporary",
	Unknown:   "unknown",
	Fatal:     "fatal",
}

// String returns a human-readable explanation of the error severity s.
func (s Severity) String() string {
	return severities[s]
}

// Error is the standard error type, carrying a kind (error code),
// message (error message), and potentially an underlying error.
// Errors should be constructed by sinkerr.E, which interprets
// arguments according to a set of rules.
type Error struct {
	// Kind is the error's type.
	Kind Kind
	// Severity is an optional severity.
	Severity Severity
	// Message is an optional error message associated with this error.
	Message string
	// Err is the error that caused this error, if any. Errors can form
	// chains through Err: the full chain is printed by Error().
	Err error
}

// E constructs a new error from the provided arguments. It is meant as
// a convenient way to construct, annotate, and wrap errors.
//
// Arguments are interpreted according to their types:
//
//   - Kind: sets the Error's kind
//   - Severity: sets the Error's severity
//   - string: sets the Error's message; multiple strings are
//     separated by a single space
//   - *Error: copies the error and sets the error's cause
//   - error: sets the Error's cause
//
// If an unrecognized argument type is encountered, an error with kind
// Invalid is returned.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("no args")
	}
	e := new(Error)
	var msg strings.Builder
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case Severity:
			e.Severity = arg
		case string:
			if msg.Len() > 0 {
				msg.WriteString(" ")
			}
			msg.WriteString(arg)
		case *Error:
			cp := *arg
			if len(args) == 1 {
				return &cp
			}
			e.Err = &cp
		case error:
			e.Err = arg
		default:
			_, file, line, _ := runtime.Caller(1)
			log.Error.Printf("sinkerr.E: bad call (type %T) from %s:%d: %v", arg, file, line, arg)
			return &Error{
				Kind:    Invalid,
				Message: fmt.Sprintf("unknown type %T, value %v in error call", arg, arg),
			}
		}
	}
	e.Message = msg.String()
	if e.Err == nil {
		return e
	}
	switch prev := e.Err.(type) {
	case *Error:
		if prev.Kind == e.Kind || e.Kind == Other {
			e.Kind = prev.Kind
			prev.Kind = Other
		}
		if prev.Severity == e.Severity || e.Severity == Unknown {
			e.Severity = prev.Severity
			prev.Severity = Unknown
		}
	default:
		if e.Kind != Other {
			break
		}
		for kind := Kind(0); kind < maxKind; kind++ {
			stdErr := kindStdErrs[kind]
			if stdErr != nil && errors.Is(e.Err, stdErr) {
				e.Kind = kind
				break
			}
		}
		if e.Kind != Other {
			break
		}
		if err, ok := asVerrorE(e.Err); ok {
			if errors.Is(err, verror.ErrNoAccess) ||
				strings.Contains(err.Error(), string(verror.ErrNoAccess.ID)) {
				e.Kind = Invalid
			}
		}
	}
	return e
}

// Recover recovers any error into an *Error. If the passed-in error is
// already an *Error, it is simply returned; otherwise it is wrapped.
func Recover(err error) *Error {
	if err == nil {
		return nil
	}
	if err, ok := err.(*Error); ok {
		return err
	}
	return E(err).(*Error)
}

// Error returns a human readable string describing this error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b bytes.Buffer
	e.writeError(&b)
	return b.String()
}

func (e *Error) writeError(b *bytes.Buffer) {
	if e.Message != "" {
		pad(b, ": ")
		b.WriteString(e.Message)
	}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Severity != Unknown {
		pad(b, " ")
		b.WriteByte('(')
		b.WriteString(e.Severity.String())
		b.WriteByte(')')
	}
	if e.Err == nil {
		return
	}
	if err, ok := e.Err.(*Error); ok {
		pad(b, Separator)
		b.WriteString(err.Error())
	} else {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}
}

// Temporary tells whether this error is temporary.
func (e *Error) Temporary() bool {
	return e.Severity <= Temporary
}

// Unwrap returns e's cause, if any, or nil. It lets the standard
// library's errors.Unwrap work with *Error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is tells whether e.Kind is equivalent to err.
func (e *Error) Is(err error) bool {
	if err == nil {
		return false
	}
	return err == kindStdErrs[e.Kind]
}

type gobError struct {
	Kind     Kind
	Severity Severity
	Message  string
	Next     *gobError
	Err      string
}

func (ge *gobError) toError() *Error {
	e := &Error{
		Kind:     ge.Kind,
		Severity: ge.Severity,
		Message:  ge.Message,
	}
	if ge.Next != nil {
		e.Err = ge.Next.toError()
	} else if ge.Err != "" {
		e.Err = errors.New(ge.Err)
	}
	return e
}

func (e *Error) toGobError() *gobError {
	ge := &gobError{
		Kind:     e.Kind,
		Severity: e.Severity,
		Message:  e.Message,
	}
	if e.Err == nil {
		return ge
	}
	switch arg := e.Err.(type) {
	case *Error:
		ge.Next = arg.toGobError()
	default:
		ge.Err = arg.Error()
	}
	return ge
}

// GobEncode encodes the error for gob.
func (e *Error) GobEncode() ([]byte, error) {
	var b bytes.Buffer
	err := gob.NewEncoder(&b).Encode(e.toGobError())
	return b.Bytes(), err
}

// GobDecode decodes an error encoded by GobEncode.
func (e *Error) GobDecode(p []byte) error {
	var ge gobError
	if err := gob.NewDecoder(bytes.NewBuffer(p)).Decode(&ge); err != nil {
		return err
	}
	*e = *ge.toError()
	return nil
}

// Is tells whether an error has a specified kind, except for the
// indeterminate kind Other. In that case the chain is traversed until
// a non-Other error is encountered.
func Is(kind Kind, err error) bool {
	if err == nil {
		return false
	}
	return is(kind, Recover(err))
}

func is(kind Kind, e *Error) bool {
	if e.Kind != Other {
		return e.Kind == kind
	}
	if e.Err != nil {
		if e2, ok := e.Err.(*Error); ok {
			return is(kind, e2)
		}
	}
	return false
}

// New is synonymous with errors.New, provided here so that users need
// only import one errors package.
func New(msg string) error {
	return errors.New(msg)
}

func pad(b *bytes.Buffer, s string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(s)
}

func asVerrorE(err error) (verror.E, bool) {
	switch e := err.(type) {
	case verror.E:
		return e, true
	case *verror.E:
		if e != nil {
			return *e, true
		}
	}
	return verror.E{}, false
}

/*
 * errors.go, part of assemble.
 *
 * Copyright 2024 Matteo Degiacomi and the assemble contributors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package assemble

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies the errors produced while building polymers and systems.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	MissingMonomer
	MalformedTemplate
	InconsistentTopology
	MissingBond
	NoAngleMatch
	NoDihedralMatch
	UnknownBondedType
	InvalidLatticeSpec
	CompositionUnderflow
	UnknownPolymer
	MalformedForceField
	MalformedFile
)

var kindNames = map[ErrorKind]string{
	KindUnknown:          "unknown",
	MissingMonomer:       "missing monomer",
	MalformedTemplate:    "malformed template",
	InconsistentTopology: "inconsistent topology",
	MissingBond:          "missing bond",
	NoAngleMatch:         "no angle match",
	NoDihedralMatch:      "no dihedral match",
	UnknownBondedType:    "unknown bonded type",
	InvalidLatticeSpec:   "invalid lattice spec",
	CompositionUnderflow: "composition underflow",
	UnknownPolymer:       "unknown polymer",
	MalformedForceField:  "malformed force field",
	MalformedFile:        "malformed file",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the error type of the assemble packages. Besides the message it carries
// a kind, which errors.Is matches against the Err* sentinels, and a list of
// decorations naming the functions the error went through.
type Error struct {
	message  string
	deco     []string
	kind     ErrorKind
	critical bool
}

// NewError returns a critical error of the given kind.
func NewError(kind ErrorKind, format string, a ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, a...), kind: kind, critical: true}
}

func (err *Error) Error() string {
	var b strings.Builder
	b.WriteString(err.kind.String())
	b.WriteString(": ")
	b.WriteString(err.message)
	if len(err.deco) > 0 {
		b.WriteString(" (in ")
		b.WriteString(strings.Join(err.deco, " < "))
		b.WriteString(")")
	}
	return b.String()
}

// Kind returns the kind of the error.
func (err *Error) Kind() ErrorKind { return err.kind }

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err *Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err *Error) Critical() bool { return err.critical }

// Is reports whether target is an *Error of the same kind.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind != KindUnknown && t.kind == err.kind
}

// Sentinels for errors.Is.
var (
	ErrMissingMonomer       = &Error{message: "sentinel", kind: MissingMonomer}
	ErrMalformedTemplate    = &Error{message: "sentinel", kind: MalformedTemplate}
	ErrInconsistentTopology = &Error{message: "sentinel", kind: InconsistentTopology}
	ErrMissingBond          = &Error{message: "sentinel", kind: MissingBond}
	ErrNoAngleMatch         = &Error{message: "sentinel", kind: NoAngleMatch}
	ErrNoDihedralMatch      = &Error{message: "sentinel", kind: NoDihedralMatch}
	ErrUnknownBondedType    = &Error{message: "sentinel", kind: UnknownBondedType}
	ErrInvalidLatticeSpec   = &Error{message: "sentinel", kind: InvalidLatticeSpec}
	ErrCompositionUnderflow = &Error{message: "sentinel", kind: CompositionUnderflow}
	ErrUnknownPolymer       = &Error{message: "sentinel", kind: UnknownPolymer}
	ErrMalformedForceField  = &Error{message: "sentinel", kind: MalformedForceField}
	ErrMalformedFile        = &Error{message: "sentinel", kind: MalformedFile}
)

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// ErrDecorate adds caller to the decorations of err if err is, or wraps,
// an *Error, and returns err.
func ErrDecorate(err error, caller string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}

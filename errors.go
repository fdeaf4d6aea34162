/*
 * errors.go, part of gobalance.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package balance

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies the errors produced while balancing. A Kind is itself an
// error, so errors.Is(err, MalformedFormula) works on any error returned by this package.
type Kind int

const (
	MalformedEquation Kind = iota + 1
	MalformedFormula
	UnconservableReaction
	AmbiguousBalance
)

var kindNames = map[Kind]string{
	MalformedEquation:     "malformed equation",
	MalformedFormula:      "malformed formula",
	UnconservableReaction: "unconservable reaction",
	AmbiguousBalance:      "ambiguous balance",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("unknown error kind %d", int(k))
}

func (k Kind) Error() string { return k.String() }

// Error is the error type returned by every function in this package. It
// fulfills Decorator and Kinder.
type Error struct {
	kind    Kind
	message string
	cause   error
	deco    []string
}

func newError(kind Kind, caller string, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...), deco: []string{caller}}
}

func (err *Error) Error() string {
	msg := err.kind.String() + ": " + err.message
	if err.cause != nil {
		msg += ": " + err.cause.Error()
	}
	return msg
}

// Kind returns the kind of the error.
func (err *Error) Kind() Kind { return err.kind }

// Message returns the error message without the kind prefix.
func (err *Error) Message() string { return err.message }

func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Trail returns the decoration trail as a single string, innermost call first.
func (err *Error) Trail() string {
	return strings.Join(err.deco, " <- ")
}

func (err *Error) Unwrap() error { return err.cause }

// Is reports whether target is err's Kind, or an *Error of the same Kind.
func (err *Error) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return t == err.kind
	case *Error:
		return t.kind == err.kind
	}
	return false
}

// KindOf returns the Kind of err, or 0 if err doesn't carry one.
func KindOf(err error) Kind {
	var k Kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return 0
}

// errDecorate adds caller to the trail of err if err is a Decorator, and returns it.
// Other errors are returned untouched.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var d Decorator
	if errors.As(err, &d) {
		d.Decorate(caller)
	}
	return err
}

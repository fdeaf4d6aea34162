/*
 * json.go, part of gobalance.
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

package baljson

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strings"

	balance "github.com/rmera/gobalance"
)

// Request asks for one equation to be balanced.
type Request struct {
	Equation string `json:"equation"`
	Integers bool   `json:"integers,omitempty"`
	Pivot    *int   `json:"pivot,omitempty"` //nil means the last species
	Strict   bool   `json:"strict,omitempty"`
}

// Options returns the balancing options for the request, starting from base.
// Integers and Strict are turned on if either the request or base asks for them.
func (R *Request) Options(base balance.Options) *balance.Options {
	o := base
	o.Integers = o.Integers || R.Integers
	o.Strict = o.Strict || R.Strict
	if R.Pivot != nil {
		o.Pivot = *R.Pivot
	}
	return &o
}

// Species is a ready-to-serialize container for one species of a balanced equation.
type Species struct {
	Formula     string  `json:"formula"`
	Coefficient string  `json:"coefficient"` //exact, "1/2", "3"
	Hill        string  `json:"hill"`
	MolarMass   float64 `json:"molar_mass,omitempty"` //0 if the formula has unknown elements
}

// Result is a ready-to-serialize container for a balanced equation, or for the error
// that prevented the balance.
type Result struct {
	Input         string    `json:"input"`
	Balanced      string    `json:"balanced,omitempty"`
	Reactants     []Species `json:"reactants,omitempty"`
	Products      []Species `json:"products,omitempty"`
	System        []string  `json:"system,omitempty"` //one conservation equation per element
	Pivot         int       `json:"pivot"`
	MassReactants float64   `json:"mass_reactants,omitempty"`
	MassProducts  float64   `json:"mass_products,omitempty"`
	Error         *Error    `json:"error,omitempty"`
}

// An easily JSON-serializable error type.
type Error struct {
	deco     []string
	IsError  bool   `json:"is_error"` //If this is false (no error) all the other fields will be at their zero-values.
	InParse  bool   `json:"in_parse"` //was it in reading the equation or formulas?
	InSolve  bool   `json:"in_solve"` //was the equation impossible or ambiguous to balance?
	InIO     bool   `json:"in_io"`    //reading or writing JSON
	Kind     string `json:"kind,omitempty"`
	Function string `json:"function"` //which go function gave the error
	Message  string `json:"message"`  //the error itself
}

// Error implements the error interface
func (J *Error) Error() string {
	return J.Message
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (J *Error) Decorate(dec string) []string {
	if dec == "" {
		return J.deco
	}
	J.deco = append(J.deco, dec)
	return J.deco
}

// Serializes the error. Panics on failure.
func (J *Error) Marshal() []byte {
	ret, err2 := json.Marshal(J)
	if err2 != nil {
		panic(strings.Join([]string{J.Error(), err2.Error()}, " - "))
	}
	return ret
}

// NewError takes an error and the name of the function that got it, and creates a
// json-marshal-able error. Errors from the balance package are classified by their Kind,
// anything else is taken as an I/O error.
func NewError(function string, err error) *Error {
	jerr := &Error{IsError: true, Function: function, Message: err.Error()}
	jerr.deco = []string{function}
	switch k := balance.KindOf(err); k {
	case balance.MalformedEquation, balance.MalformedFormula:
		jerr.InParse = true
		jerr.Kind = k.String()
	case balance.UnconservableReaction, balance.AmbiguousBalance:
		jerr.InSolve = true
		jerr.Kind = k.String()
	default:
		jerr.InIO = true
	}
	return jerr
}

// NewResult packs a balance result (or the error from the balance) for serialization.
// If err is not nil, R is ignored.
func NewResult(input string, R *balance.Result, err error) *Result {
	ret := &Result{Input: input}
	if err != nil {
		ret.Error = NewError("Balance", err)
		return ret
	}
	ret.Balanced = R.Text
	ret.Pivot = R.Pivot
	eff := R.Effective()
	for i, s := range R.Equation.Species() {
		js := Species{Formula: s.Formula, Coefficient: eff[i].RatString(), Hill: s.Counts.Hill()}
		js.MolarMass, _ = balance.MolarMass(s.Counts) //0 is fine for exotic symbols
		if s.Side == balance.Product {
			ret.Products = append(ret.Products, js)
		} else {
			ret.Reactants = append(ret.Reactants, js)
		}
	}
	if sys := R.System.String(); sys != "" {
		ret.System = strings.Split(sys, "\n")
	}
	if r, p, err := R.MassBalance(); err == nil {
		ret.MassReactants, ret.MassProducts = r, p
	}
	return ret
}

// Send Marshals the result and writes it, followed by a newline, to out.
func (J *Result) Send(out io.Writer) *Error {
	enc := json.NewEncoder(out)
	if err := enc.Encode(J); err != nil {
		return NewError("Result.Send", err)
	}
	return nil
}

// DecodeRequest reads the next non-blank line from stdin and unmarshals it into a Request.
// At the end of the stream it returns io.EOF. Bad requests give an *Error; errors
// reading the stream are returned as they are.
func DecodeRequest(stdin *bufio.Reader) (*Request, error) {
	var line []byte
	for {
		var err error
		line, err = stdin.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err //the stream is broken, not the request
		}
		if len(strings.TrimSpace(string(line))) != 0 {
			break
		}
		if err != nil {
			return nil, io.EOF
		}
	}
	ret := new(Request)
	if err := json.Unmarshal(line, ret); err != nil {
		return nil, NewError("DecodeRequest", err)
	}
	if strings.TrimSpace(ret.Equation) == "" {
		return nil, NewError("DecodeRequest", errors.New("request without equation"))
	}
	return ret, nil
}

// Serve reads requests from in until the end of the stream, balances each with a Balancer
// built from base and the request, and writes one Result per request to out. Requests that
// can't be decoded produce a Result with only the error. It returns the number of requests
// processed, and an error only if reading the stream or writing fails.
func Serve(in io.Reader, out io.Writer, base balance.Options, newBalancer func(*balance.Options) *balance.Balancer) (int, error) {
	stdin := bufio.NewReader(in)
	n := 0
	for {
		req, err := DecodeRequest(stdin)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		var jerr *Error
		if err != nil && !errors.As(err, &jerr) {
			return n, err
		}
		n++
		var res *Result
		if err != nil {
			res = &Result{Error: jerr}
		} else {
			R, berr := newBalancer(req.Options(base)).Balance(req.Equation)
			res = NewResult(req.Equation, R, berr)
		}
		if serr := res.Send(out); serr != nil {
			return n, serr
		}
	}
}

/*
 * balance.go, part of gobalance.
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
	"math/big"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Options control a Balancer. The zero value is not the default: use DefaultOptions.
type Options struct {
	//Integers scales the coefficients to the smallest positive integers
	//instead of fixing the pivot to 1.
	Integers bool
	//Pivot is the index (in reactants-then-products order) of the unknown fixed to 1.
	//A negative value means the last species.
	Pivot int
	//Strict rejects element symbols that are not in the periodic table.
	Strict bool
	//Solver defaults to GaussJordan.
	Solver Solver
}

// DefaultOptions returns the options used when NewBalancer gets nil: rational
// coefficients, with the last species fixed to 1.
func DefaultOptions() *Options {
	return &Options{Pivot: -1}
}

// Balancer balances chemical equations. A Balancer keeps no state between calls,
// so it can be used from several goroutines at once.
type Balancer struct {
	opts   Options
	solver Solver
	log    *zap.Logger
}

// NewBalancer returns a Balancer with the given options (nil means DefaultOptions()).
// A nil logger disables logging.
func NewBalancer(opts *Options, log *zap.Logger) *Balancer {
	if opts == nil {
		opts = DefaultOptions()
	}
	if log == nil {
		log = zap.NewNop()
	}
	B := &Balancer{opts: *opts, solver: opts.Solver, log: log}
	if B.solver == nil {
		B.solver = GaussJordan{}
	}
	return B
}

// Options returns a copy of the options of B.
func (B *Balancer) Options() Options {
	return B.opts
}

// Result is a balanced equation.
type Result struct {
	Equation *Equation
	System   *System
	//Coefficients holds the solved value of each unknown, in the order of Equation.Species().
	//The coefficient written for a species is this value times its multiplier (see Effective).
	Coefficients []*big.Rat
	//Pivot is the index of the unknown that was fixed to 1.
	Pivot int
	Text  string
}

func (R *Result) String() string {
	return R.Text
}

// Effective returns the coefficients as written in Text, in the order of Equation.Species().
func (R *Result) Effective() []*big.Rat {
	sp := R.Equation.Species()
	ret := make([]*big.Rat, len(sp))
	for i, s := range sp {
		ret[i] = Effective(s, R.Coefficients[i])
	}
	return ret
}

// Verify checks the result exactly (see the Verify function).
func (R *Result) Verify() error {
	return Verify(R.Equation, R.Coefficients)
}

// AtomTotals returns the elements of the equation and, for each of them, the number of
// atoms in the reactants and in the products of the balanced equation, as floats.
func (R *Result) AtomTotals() (elements []string, reactants, products []float64) {
	A := R.System.Dense()
	elements = R.System.Elements()
	if A == nil {
		return elements, nil, nil
	}
	n := len(R.Coefficients)
	xr := mat.NewVecDense(n, nil)
	xp := mat.NewVecDense(n, nil)
	for i, c := range R.Coefficients {
		f, _ := c.Float64()
		if i < len(R.Equation.Reactants) {
			xr.SetVec(i, f)
		} else {
			xp.SetVec(i, -f) //product columns are negative in A
		}
	}
	var tr, tp mat.VecDense
	tr.MulVec(A, xr)
	tp.MulVec(A, xp)
	reactants = make([]float64, len(elements))
	products = make([]float64, len(elements))
	for i := range elements {
		reactants[i] = tr.AtVec(i)
		products[i] = tp.AtVec(i)
	}
	return elements, reactants, products
}

// MassBalance returns the total mass, in grams per "mol of reaction", of the reactants and
// the products. Fails if a species contains an unknown element.
func (R *Result) MassBalance() (reactants, products float64, err error) {
	for i, s := range R.Equation.Species() {
		m, err := MolarMass(s.Counts)
		if err != nil {
			return 0, 0, errDecorate(err, "MassBalance: "+s.Formula)
		}
		f, _ := Effective(s, R.Coefficients[i]).Float64()
		if s.Side == Product {
			products += m * f
		} else {
			reactants += m * f
		}
	}
	return reactants, products, nil
}

// Balance balances equation and returns the result. The error, if any, is an *Error
// of one of the Kinds of this package.
func (B *Balancer) Balance(equation string) (*Result, error) {
	log := B.log.With(zap.String("equation", equation))
	E, err := Split(equation)
	if err != nil {
		log.Debug("split failed", zap.Error(err))
		return nil, errDecorate(err, "Balance")
	}
	log.Debug("split", zap.Int("reactants", len(E.Reactants)), zap.Int("products", len(E.Products)))
	if B.opts.Strict {
		for _, s := range E.Species() {
			if err := checkSymbols(s.Formula); err != nil {
				return nil, errDecorate(err, "Balance")
			}
		}
	}
	sys, err := BuildSystem(E)
	if err != nil {
		return nil, errDecorate(err, "Balance")
	}
	log.Debug("system built", zap.Int("unknowns", len(sys.Unknowns)), zap.Strings("elements", sys.Elements()), zap.Stringer("system", sys))
	pivot := B.opts.Pivot
	if pivot < 0 {
		pivot = len(sys.Unknowns) - 1
	}
	if pivot >= len(sys.Unknowns) {
		return nil, newError(MalformedEquation, "Balance", "pivot %d out of range, the equation has %d species", pivot, len(sys.Unknowns))
	}
	coefs, err := B.solver.Solve(sys, pivot, big.NewRat(1, 1))
	if err != nil {
		log.Debug("solve failed", zap.Error(err))
		return nil, errDecorate(B.explain(E, err), "Balance")
	}
	for i, c := range coefs {
		if c.Sign() <= 0 {
			s := sys.Unknowns[i].Species
			return nil, newError(UnconservableReaction, "Balance", "%s %s would need the coefficient %s", s.Side, s.Formula, c.RatString())
		}
	}
	if B.opts.Integers {
		coefs = integerCoefficients(E, coefs)
	}
	R := &Result{Equation: E, System: sys, Coefficients: coefs, Pivot: pivot}
	R.Text, err = Render(E, coefs)
	if err != nil {
		return nil, errDecorate(err, "Balance")
	}
	if err := R.Verify(); err != nil {
		//if this happens, the solver is broken.
		return nil, errDecorate(err, "Balance")
	}
	log.Debug("balanced", zap.String("result", R.Text))
	return R, nil
}

// explain adds the independent subsystems of E to an AmbiguousBalance error, when there are
// several. Other errors are returned unchanged.
func (B *Balancer) explain(E *Equation, err error) error {
	var e *Error
	if !errors.As(err, &e) || e.kind != AmbiguousBalance {
		return err
	}
	subs := Subsystems(E)
	if len(subs) < 2 {
		return err
	}
	s := make([]string, len(subs))
	for i, v := range subs {
		s[i] = v.String()
	}
	e.message = fmt.Sprintf("%s; %d independent subsystems: %s", e.message, len(subs), strings.Join(s, " "))
	return e
}

// integerCoefficients scales coefs so the effective coefficients (with the multipliers)
// are the smallest positive integers, and returns the new coefficients.
func integerCoefficients(E *Equation, coefs []*big.Rat) []*big.Rat {
	sp := E.Species()
	eff := make([]*big.Rat, len(coefs))
	for i, c := range coefs {
		eff[i] = Effective(sp[i], c)
	}
	eff = ToIntegers(eff)
	for i, e := range eff {
		if sp[i].Multiplier != nil {
			e.Quo(e, sp[i].Multiplier)
		}
	}
	return eff
}

// Balance balances equation with the default options and returns the balanced equation as text.
func Balance(equation string) (string, error) {
	R, err := NewBalancer(nil, nil).Balance(equation)
	if err != nil {
		return "", err
	}
	return R.Text, nil
}

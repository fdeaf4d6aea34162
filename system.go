/*
 * system.go, part of gobalance.
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
	"fmt"
	"math/big"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Inventory returns every element that appears in any of the counts, in Hill order.
func Inventory(counts ...ElementCount) []string {
	all := make(ElementCount)
	for _, c := range counts {
		for s, n := range c {
			if n != 0 {
				all[s] = 1
			}
		}
	}
	return all.Symbols()
}

// Unknown is the variable for the coefficient of one species.
type Unknown struct {
	Index   int
	Name    string
	Species *Species
}

// Term is coefficient*unknown in a linear equation.
type Term struct {
	Unknown int //index in System.Unknowns
	Coef    *big.Rat
}

// LinearEquation is the conservation equation for one element: the sum of its terms is zero.
// Reactant terms are positive and product terms negative.
type LinearEquation struct {
	Element string
	Terms   []Term
}

// System is the homogeneous linear system for an equation, one unknown per species
// and one LinearEquation per element.
type System struct {
	Unknowns  []Unknown
	Equations []LinearEquation
}

// BuildSystem assigns an unknown to each species of E (reactants first, then products,
// names x1, x2, ...) and builds the conservation equation for every element present.
// A species contributes count*multiplier*unknown to the equation of each of its elements,
// with a positive sign for reactants and a negative sign for products.
func BuildSystem(E *Equation) (*System, error) {
	if E == nil || len(E.Reactants) == 0 || len(E.Products) == 0 {
		return nil, newError(MalformedEquation, "BuildSystem", "equation needs at least one reactant and one product")
	}
	species := E.Species()
	S := &System{Unknowns: make([]Unknown, len(species))}
	counts := make([]ElementCount, len(species))
	for i, sp := range species {
		S.Unknowns[i] = Unknown{Index: i, Name: unknownName(i), Species: sp}
		counts[i] = sp.Counts
	}
	for _, el := range Inventory(counts...) {
		eq := LinearEquation{Element: el, Terms: make([]Term, 0, len(species))}
		for i, sp := range species {
			n := sp.Counts[el]
			if n == 0 {
				continue
			}
			c := new(big.Rat).SetInt64(int64(n))
			if sp.Multiplier != nil {
				c.Mul(c, sp.Multiplier)
			}
			if sp.Side == Product {
				c.Neg(c)
			}
			eq.Terms = append(eq.Terms, Term{Unknown: i, Coef: c})
		}
		S.Equations = append(S.Equations, eq)
	}
	return S, nil
}

func unknownName(i int) string {
	return fmt.Sprintf("x%d", i+1)
}

// Matrix returns the coefficient matrix of the system, one row per equation and
// one column per unknown. The entries are fresh copies.
func (S *System) Matrix() [][]*big.Rat {
	ret := make([][]*big.Rat, len(S.Equations))
	for i, eq := range S.Equations {
		row := make([]*big.Rat, len(S.Unknowns))
		for j := range row {
			row[j] = new(big.Rat)
		}
		for _, t := range eq.Terms {
			row[t.Unknown].Add(row[t.Unknown], t.Coef)
		}
		ret[i] = row
	}
	return ret
}

// Dense returns a floating point copy of the coefficient matrix, for analysis and
// plotting with gonum. It must not be used for the balance itself.
func (S *System) Dense() *mat.Dense {
	r, c := len(S.Equations), len(S.Unknowns)
	if r == 0 || c == 0 {
		return nil
	}
	ret := mat.NewDense(r, c, nil)
	for i, row := range S.Matrix() {
		for j, v := range row {
			f, _ := v.Float64()
			ret.Set(i, j, f)
		}
	}
	return ret
}

// Elements returns the element of each equation, in order.
func (S *System) Elements() []string {
	ret := make([]string, len(S.Equations))
	for i, eq := range S.Equations {
		ret[i] = eq.Element
	}
	return ret
}

func (S *System) String() string {
	lines := make([]string, len(S.Equations))
	for i, eq := range S.Equations {
		lines[i] = eq.Element + ": " + eq.format(S.Unknowns)
	}
	return strings.Join(lines, "\n")
}

// format writes the equation as, e.g., "2x1 - 2x3 = 0".
func (L LinearEquation) format(unknowns []Unknown) string {
	if len(L.Terms) == 0 {
		return "0 = 0"
	}
	var b strings.Builder
	for i, t := range L.Terms {
		c := new(big.Rat).Set(t.Coef)
		switch {
		case i == 0 && c.Sign() < 0:
			b.WriteString("-")
			c.Neg(c)
		case i > 0 && c.Sign() < 0:
			b.WriteString(" - ")
			c.Neg(c)
		case i > 0:
			b.WriteString(" + ")
		}
		switch {
		case isOne(c):
		case c.IsInt():
			b.WriteString(c.RatString())
		default:
			b.WriteString("(" + c.RatString() + ")")
		}
		b.WriteString(unknowns[t.Unknown].Name)
	}
	b.WriteString(" = 0")
	return b.String()
}

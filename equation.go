/*
 * equation.go, part of gobalance.
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
	"regexp"
	"strings"
)

const (
	equationSplitter = "="
	speciesSplitter  = "+"
)

// Side tells whether a species is a reactant or a product.
type Side int

const (
	Reactant Side = iota
	Product
)

func (s Side) String() string {
	if s == Product {
		return "product"
	}
	return "reactant"
}

//a leading integer or fraction, followed by the rest of the token.
var leadingCoefficient = regexp.MustCompile(`^(\d+(?:/\d+)?)\s*(.*)$`)

// Species is one reactant or product of an equation. Two species with the same formula
// are still different species if they are in different positions.
// Species are created by Split and should not be modified afterwards.
type Species struct {
	Formula    string       //Canonical form, always starting with "(", e.g. "(H2O)" or "(NH4)2SO4"
	Side       Side         //Reactant or Product
	Position   int          //index in its side of the equation
	Counts     ElementCount //atoms per formula unit
	Multiplier *big.Rat     //coefficient written in the input in front of the formula, 1 if none
}

func (S *Species) String() string {
	return S.Formula
}

// Equation is a chemical equation split into its species.
type Equation struct {
	Reactants []*Species
	Products  []*Species
}

// Len returns the total number of species.
func (E *Equation) Len() int {
	return len(E.Reactants) + len(E.Products)
}

// Species returns all species, reactants first, in input order.
// The index of a species in this slice is the index of its unknown.
func (E *Equation) Species() []*Species {
	ret := make([]*Species, 0, E.Len())
	ret = append(ret, E.Reactants...)
	return append(ret, E.Products...)
}

// String returns the equation in canonical form, with the input multipliers.
func (E *Equation) String() string {
	s, err := Render(E, nil)
	if err != nil {
		panic(err.Error()) //nil coefficients never fail
	}
	return s
}

// Split splits a chemical equation into reactants and products. The equation must
// contain exactly one "=", and each side one or more species separated by "+".
// Each species is trimmed and, unless it already starts with "(", wrapped in a pair of
// parentheses. A species may start with a positive integer or fraction, which is kept
// as its Multiplier. The element counts of every species are computed here, so a
// bad formula fails Split with a MalformedFormula error.
func Split(equation string) (*Equation, error) {
	sides := strings.Split(equation, equationSplitter)
	if len(sides) != 2 {
		return nil, newError(MalformedEquation, "Split", "expected exactly one %q, found %d in %q", equationSplitter, len(sides)-1, equation)
	}
	E := new(Equation)
	var err error
	E.Reactants, err = splitSide(sides[0], Reactant)
	if err != nil {
		return nil, errDecorate(err, "Split")
	}
	E.Products, err = splitSide(sides[1], Product)
	if err != nil {
		return nil, errDecorate(err, "Split")
	}
	return E, nil
}

func splitSide(side string, which Side) ([]*Species, error) {
	if strings.TrimSpace(side) == "" {
		return nil, newError(MalformedEquation, "splitSide", "no %ss", which)
	}
	tokens := strings.Split(side, speciesSplitter)
	ret := make([]*Species, 0, len(tokens))
	for i, tok := range tokens {
		S, err := newSpecies(strings.TrimSpace(tok), which, i)
		if err != nil {
			return nil, errDecorate(err, fmt.Sprintf("splitSide: %s %d", which, i+1))
		}
		ret = append(ret, S)
	}
	return ret, nil
}

func newSpecies(token string, side Side, position int) (*Species, error) {
	if token == "" {
		return nil, newError(MalformedEquation, "newSpecies", "empty species")
	}
	mult := big.NewRat(1, 1)
	if m := leadingCoefficient.FindStringSubmatch(token); m != nil {
		if _, ok := mult.SetString(m[1]); !ok {
			return nil, newError(MalformedEquation, "newSpecies", "bad coefficient %q", m[1])
		}
		if mult.Sign() == 0 {
			return nil, newError(MalformedEquation, "newSpecies", "zero coefficient in %q", token)
		}
		token = m[2]
		if token == "" {
			return nil, newError(MalformedEquation, "newSpecies", "coefficient %s without a formula", m[1])
		}
	}
	formula := token
	if !strings.HasPrefix(formula, "(") {
		formula = "(" + formula + ")"
	}
	counts, err := CountElements(formula)
	if err != nil {
		return nil, errDecorate(err, "newSpecies: "+formula)
	}
	return &Species{Formula: formula, Side: side, Position: position, Counts: counts, Multiplier: mult}, nil
}

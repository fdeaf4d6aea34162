/*
 * verify.go, part of gobalance.
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
	"math/big"
	"strings"
)

// Totals returns, for each element, the number of atoms on each side of E when every species
// is multiplied by its effective coefficient (see Effective). coefs may be nil.
func Totals(E *Equation, coefs []*big.Rat) (reactants, products map[string]*big.Rat) {
	reactants = make(map[string]*big.Rat)
	products = make(map[string]*big.Rat)
	for i, s := range E.Species() {
		var c *big.Rat
		if coefs != nil {
			c = coefs[i]
		}
		eff := Effective(s, c)
		side := reactants
		if s.Side == Product {
			side = products
		}
		for el, n := range s.Counts {
			if _, ok := side[el]; !ok {
				side[el] = new(big.Rat)
			}
			t := new(big.Rat).SetInt64(int64(n))
			side[el].Add(side[el], t.Mul(t, eff))
		}
	}
	return reactants, products
}

// Verify checks exactly that E, with the coefficients coefs (in the order of E.Species(), nil
// meaning all 1), has the same number of atoms of every element on both sides and that every
// effective coefficient is positive. It returns an UnconservableReaction error naming the
// offending elements otherwise.
func Verify(E *Equation, coefs []*big.Rat) error {
	if coefs != nil && len(coefs) != E.Len() {
		return newError(MalformedEquation, "Verify", "%d coefficients for %d species", len(coefs), E.Len())
	}
	for i, s := range E.Species() {
		var c *big.Rat
		if coefs != nil {
			c = coefs[i]
		}
		if Effective(s, c).Sign() <= 0 {
			return newError(UnconservableReaction, "Verify", "%s %s has a non-positive coefficient", s.Side, s.Formula)
		}
	}
	r, p := Totals(E, coefs)
	zero := new(big.Rat)
	var bad []string
	for _, el := range Inventory(ratKeys(r), ratKeys(p)) {
		rv, pv := r[el], p[el]
		if rv == nil {
			rv = zero
		}
		if pv == nil {
			pv = zero
		}
		if rv.Cmp(pv) != 0 {
			bad = append(bad, el+" ("+rv.RatString()+" vs "+pv.RatString()+")")
		}
	}
	if len(bad) > 0 {
		return newError(UnconservableReaction, "Verify", "elements not conserved: %s", strings.Join(bad, ", "))
	}
	return nil
}

// IsBalanced parses equation, taking any coefficients written in it as given, and reports whether
// it is balanced. The error is non-nil only if the equation can't be parsed.
func IsBalanced(equation string) (bool, error) {
	E, err := Split(equation)
	if err != nil {
		return false, errDecorate(err, "IsBalanced")
	}
	return Verify(E, nil) == nil, nil
}

//ratKeys turns the keys of m into an ElementCount, so they can go through Inventory.
func ratKeys(m map[string]*big.Rat) ElementCount {
	ret := make(ElementCount, len(m))
	for k := range m {
		ret[k] = 1
	}
	return ret
}

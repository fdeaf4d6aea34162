/*
 * render.go, part of gobalance.
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

const (
	speciesJoin = " + "
	sidesJoin   = " = "
)

// Render writes E with the coefficients coefs, given in the order of E.Species().
// The coefficient written for each species is its coefficient times its Multiplier,
// in lowest terms ("1/2", "3"). Coefficients equal to 1 are omitted.
// If coefs is nil, only the multipliers are used.
func Render(E *Equation, coefs []*big.Rat) (string, error) {
	if coefs != nil && len(coefs) != E.Len() {
		return "", newError(MalformedEquation, "Render", "%d coefficients for %d species", len(coefs), E.Len())
	}
	var b strings.Builder
	renderSide(&b, E.Reactants, coefs, 0)
	b.WriteString(sidesJoin)
	renderSide(&b, E.Products, coefs, len(E.Reactants))
	return b.String(), nil
}

func renderSide(b *strings.Builder, species []*Species, coefs []*big.Rat, offset int) {
	for i, s := range species {
		if i > 0 {
			b.WriteString(speciesJoin)
		}
		var c *big.Rat
		if coefs != nil {
			c = coefs[offset+i]
		}
		if eff := Effective(s, c); !isOne(eff) {
			b.WriteString(eff.RatString())
			b.WriteString(" ")
		}
		b.WriteString(s.Formula)
	}
}

// Effective returns the coefficient of S as written: coef times S.Multiplier.
// A nil coef counts as 1.
func Effective(S *Species, coef *big.Rat) *big.Rat {
	ret := big.NewRat(1, 1)
	if coef != nil {
		ret.Set(coef)
	}
	if S.Multiplier != nil {
		ret.Mul(ret, S.Multiplier)
	}
	return ret
}

/*
 * handy.go, part of gobalance.
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

import "math/big"

//Some internal convenience functions.

var ratOne = big.NewRat(1, 1)

func isOne(r *big.Rat) bool {
	return r.Cmp(ratOne) == 0
}

// ToIntegers scales coefs by the smallest positive factor that turns all of them into
// integers with no common divisor. The ratios between coefficients don't change.
// A nil or all-zero slice is returned as a copy.
func ToIntegers(coefs []*big.Rat) []*big.Rat {
	ret := copyRats(coefs)
	lcm := big.NewInt(1)
	gcd := new(big.Int)
	tmp := new(big.Int)
	for _, c := range ret {
		if c.Sign() == 0 {
			continue
		}
		d := c.Denom()
		tmp.GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, d)
		lcm.Quo(lcm, tmp)
	}
	factor := new(big.Rat).SetInt(lcm)
	for _, c := range ret {
		c.Mul(c, factor)
		if c.Sign() == 0 {
			continue
		}
		n := new(big.Int).Abs(c.Num())
		if gcd.Sign() == 0 {
			gcd.Set(n)
		} else {
			gcd.GCD(nil, nil, gcd, n)
		}
	}
	if gcd.Sign() == 0 {
		return ret
	}
	div := new(big.Rat).SetInt(gcd)
	for _, c := range ret {
		c.Quo(c, div)
	}
	return ret
}

func copyRats(r []*big.Rat) []*big.Rat {
	if r == nil {
		return nil
	}
	ret := make([]*big.Rat, len(r))
	for i, v := range r {
		ret[i] = new(big.Rat).Set(v)
	}
	return ret
}

//isInInt returns true if test is in container, false otherwise.
func isInInt(container []int, test int) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

//Same as the previous, but with strings.
func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

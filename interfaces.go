/*
 * interfaces.go, part of gobalance.
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

// Solver solves the homogeneous system sys with the unknown of index pivot
// fixed to value. It returns one exact value per unknown, in the order of
// sys.Unknowns; the pivot entry equals value.
// Implementations must report an inconsistent system (no solution with the
// pivot fixed) as UnconservableReaction and a solution space with more than
// one dimension as AmbiguousBalance. They must not keep state between calls.
type Solver interface {
	Solve(sys *System, pivot int, value *big.Rat) ([]*big.Rat, error)
}

//Errors

// Decorator is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing its type or wrapping it around something else.
type Decorator interface {
	Error() string
	//Decorate adds a function name (and, optionally, ": extra info") to the error's trail
	//and returns the trail. An empty string just returns the current trail.
	Decorate(string) []string
}

// Kinder is implemented by errors that belong to one of the balancing error kinds.
type Kinder interface {
	Kind() Kind
}

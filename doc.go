/*
 * doc.go, part of gobalance.
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

/*
Package balance is the main package of the goBalance library. It balances
chemical equations: given something like "H2 + O2 = H2O" it finds the
stoichiometric coefficients that conserve every element and writes the
balanced equation back as text.

	**goBalance Capabilities**

	Parses chemical formulas with nested parenthetical groups, like (NH4)2SO4
	or Ca3(PO4)2, into element counts.

	Splits equations into reactants and products. Species can carry a
	coefficient already (2 H2O, 1/2 (O2)), so the output of the library is
	valid input.

	Builds one conservation equation per element and solves the system
	exactly over the rationals (math/big), with one unknown fixed to 1.
	No floating point is involved in the balance itself.

	Reports reactions that can't be balanced (an element in only one side)
	and reactions whose balance is ambiguous (two or more independent
	subsystems, found with the gonum graph package).

	Optionally scales the result to the smallest integers.

	Verifies balanced equations, and computes molar masses and mass totals
	for each side.

The pipeline is Split -> CountElements -> Inventory -> BuildSystem ->
Solver.Solve -> Render. A Balancer runs all of it:

	res, err := balance.NewBalancer(nil, nil).Balance("H2 + O2 = H2O")
	fmt.Println(res) // (H2) + 1/2 (O2) = (H2O)

Subpackages: baljson (JSON containers), balplot (atom balance plots, using
gonum/plot) and eqf (compressed files with lists of equations).*/
package balance

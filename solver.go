/*
 * solver.go, part of gobalance.
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
)

// GaussJordan is an exact Solver. It reduces the coefficient matrix to reduced row echelon
// form over the rationals and reads the one-dimensional null space from it.
// The zero value is ready to use and can be shared, as it holds no state.
type GaussJordan struct{}

// Solve implements Solver.
func (GaussJordan) Solve(sys *System, pivot int, value *big.Rat) ([]*big.Rat, error) {
	n := len(sys.Unknowns)
	if n == 0 {
		return nil, newError(MalformedEquation, "GaussJordan.Solve", "system without unknowns")
	}
	if pivot < 0 || pivot >= n {
		return nil, newError(MalformedEquation, "GaussJordan.Solve", "pivot %d out of range for %d unknowns", pivot, n)
	}
	if value == nil || value.Sign() == 0 {
		return nil, newError(UnconservableReaction, "GaussJordan.Solve", "the pivot must be fixed to a non-zero value")
	}
	m := sys.Matrix()
	leads := rref(m, n)
	rank := len(leads)
	nullity := n - rank
	switch {
	case nullity == 0:
		return nil, newError(UnconservableReaction, "GaussJordan.Solve", "only the trivial solution exists (rank %d, %d unknowns)", rank, n)
	case nullity > 1:
		return nil, &Error{kind: AmbiguousBalance, message: ambiguousMessage(rank, n), deco: []string{"GaussJordan.Solve"}}
	}
	//the only column without a leading 1 is the free variable.
	free := freeColumn(leads, n)
	x := make([]*big.Rat, n)
	for i := range x {
		x[i] = new(big.Rat)
	}
	x[free].SetInt64(1)
	for row, col := range leads {
		x[col].Neg(m[row][free])
	}
	if x[pivot].Sign() == 0 {
		return nil, newError(UnconservableReaction, "GaussJordan.Solve", "%s (%s) must be zero in every solution", sys.Unknowns[pivot].Name, sys.Unknowns[pivot].Species)
	}
	scale := new(big.Rat).Quo(value, x[pivot])
	for _, v := range x {
		v.Mul(v, scale)
	}
	return x, nil
}

func ambiguousMessage(rank, n int) string {
	return fmt.Sprintf("solution space has %d dimensions (rank %d, %d unknowns)", n-rank, rank, n)
}

// rref reduces m in place to reduced row echelon form and returns, for each
// non-zero row, the column of its leading 1. cols is the number of columns.
func rref(m [][]*big.Rat, cols int) []int {
	leads := make([]int, 0, cols)
	tmp := new(big.Rat)
	row := 0
	for col := 0; col < cols && row < len(m); col++ {
		p := -1
		for r := row; r < len(m); r++ {
			if m[r][col].Sign() != 0 {
				p = r
				break
			}
		}
		if p < 0 {
			continue
		}
		m[row], m[p] = m[p], m[row]
		inv := new(big.Rat).Inv(m[row][col])
		for c := col; c < cols; c++ {
			m[row][c].Mul(m[row][c], inv)
		}
		for r := range m {
			if r == row || m[r][col].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Set(m[r][col])
			for c := col; c < cols; c++ {
				tmp.Mul(f, m[row][c])
				m[r][c].Sub(m[r][c], tmp)
			}
		}
		leads = append(leads, col)
		row++
	}
	return leads
}

func freeColumn(leads []int, cols int) int {
	for c := 0; c < cols; c++ {
		if !isInInt(leads, c) {
			return c
		}
	}
	return -1
}

// Rank returns the exact rank of the coefficient matrix of sys.
func Rank(sys *System) int {
	return len(rref(sys.Matrix(), len(sys.Unknowns)))
}

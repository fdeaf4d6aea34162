/*
 * equation_test.go, part of gobalance.
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
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formulas(sp []*Species) []string {
	ret := make([]string, len(sp))
	for i, s := range sp {
		ret[i] = s.Formula
	}
	return ret
}

func TestSplit(Te *testing.T) {
	E, err := Split("(NH4)2SO4 + Ba(OH)2 = BaSO4 + NH3 + H2O")
	require.NoError(Te, err)
	assert.Equal(Te, []string{"(NH4)2SO4", "(Ba(OH)2)"}, formulas(E.Reactants))
	assert.Equal(Te, []string{"(BaSO4)", "(NH3)", "(H2O)"}, formulas(E.Products))
	assert.Equal(Te, 5, E.Len())
	assert.Equal(Te, ElementCount{"N": 2, "H": 8, "S": 1, "O": 4}, E.Reactants[0].Counts)
	for i, s := range E.Products {
		assert.Equal(Te, Product, s.Side)
		assert.Equal(Te, i, s.Position)
		assert.Equal(Te, 0, s.Multiplier.Cmp(big.NewRat(1, 1)))
	}
	assert.Equal(Te, "(NH4)2SO4 + (Ba(OH)2) = (BaSO4) + (NH3) + (H2O)", E.String())
}

func TestSplitKeepsDuplicates(Te *testing.T) {
	E, err := Split("H2 + H2 = H4")
	require.NoError(Te, err)
	require.Len(Te, E.Reactants, 2)
	assert.Equal(Te, E.Reactants[0].Formula, E.Reactants[1].Formula)
	assert.NotSame(Te, E.Reactants[0], E.Reactants[1])
	assert.Equal(Te, 1, E.Reactants[1].Position)
}

func TestSplitCoefficients(Te *testing.T) {
	E, err := Split("(H2) + 1/2 (O2) = 2H2O")
	require.NoError(Te, err)
	assert.Equal(Te, "(O2)", E.Reactants[1].Formula)
	assert.Equal(Te, "1/2", E.Reactants[1].Multiplier.RatString())
	assert.Equal(Te, "(H2O)", E.Products[0].Formula)
	assert.Equal(Te, "2", E.Products[0].Multiplier.RatString())
	assert.Equal(Te, "(H2) + 1/2 (O2) = 2 (H2O)", E.String())
}

func TestSplitMalformed(Te *testing.T) {
	tests := []struct {
		eq   string
		kind Kind
	}{
		{"H2 + O2", MalformedEquation},
		{"H2 + O2 = H2O = H2O", MalformedEquation},
		{"= H2O", MalformedEquation},
		{"H2 + O2 =   ", MalformedEquation},
		{"H2 + = H2O", MalformedEquation},
		{"H2 + O2 = H2O +", MalformedEquation},
		{"0 H2 + O2 = H2O", MalformedEquation},
		{"1/0 H2 + O2 = H2O", MalformedEquation},
		{"2 + O2 = H2O", MalformedEquation},
		{"H2 + O2 = H2O)", MalformedFormula},
		{"H2 + o2 = H2O", MalformedFormula},
		{"H2 + O2 = H_2O", MalformedFormula},
	}
	for _, tt := range tests {
		Te.Run(tt.eq, func(t *testing.T) {
			_, err := Split(tt.eq)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestErrorTrail(Te *testing.T) {
	_, err := Split("H2 + O2 = H2O)")
	var e *Error
	require.True(Te, errors.As(err, &e))
	assert.Equal(Te, "CountElements", e.Decorate("")[0])
	assert.Contains(Te, e.Trail(), "Split")
	assert.Contains(Te, e.Error(), "malformed formula")
	assert.False(Te, errors.Is(err, MalformedEquation))
}

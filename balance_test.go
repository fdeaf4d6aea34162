/*
 * balance_test.go, part of gobalance.
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
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var balanceTests = []struct {
	eq       string
	rational string
	integers string
}{
	{"H2 + O2 = H2O", "(H2) + 1/2 (O2) = (H2O)", "2 (H2) + (O2) = 2 (H2O)"},
	{"N2 + H2 = NH3", "1/2 (N2) + 3/2 (H2) = (NH3)", "(N2) + 3 (H2) = 2 (NH3)"},
	{"(NH4)2SO4 + Ba(OH)2 = BaSO4 + NH3 + H2O",
		"1/2 (NH4)2SO4 + 1/2 (Ba(OH)2) = 1/2 (BaSO4) + (NH3) + (H2O)",
		"(NH4)2SO4 + (Ba(OH)2) = (BaSO4) + 2 (NH3) + 2 (H2O)"},
	{"CH4 + O2 = CO2 + H2O", "1/2 (CH4) + (O2) = 1/2 (CO2) + (H2O)", "(CH4) + 2 (O2) = (CO2) + 2 (H2O)"},
	{"Fe + O2 = Fe2O3", "2 (Fe) + 3/2 (O2) = (Fe2O3)", "4 (Fe) + 3 (O2) = 2 (Fe2O3)"},
	{"C6H12O6 + O2 = CO2 + H2O", "1/6 (C6H12O6) + (O2) = (CO2) + (H2O)", "(C6H12O6) + 6 (O2) = 6 (CO2) + 6 (H2O)"},
	{"KMnO4 + HCl = KCl + MnCl2 + H2O + Cl2",
		"2/5 (KMnO4) + 16/5 (HCl) = 2/5 (KCl) + 2/5 (MnCl2) + 8/5 (H2O) + (Cl2)",
		"2 (KMnO4) + 16 (HCl) = 2 (KCl) + 2 (MnCl2) + 8 (H2O) + 5 (Cl2)"},
	{"Ca3(PO4)2 + SiO2 + C = CaSiO3 + P4 + CO",
		"1/5 (Ca3(PO4)2) + 3/5 (SiO2) + (C) = 3/5 (CaSiO3) + 1/10 (P4) + (CO)",
		"2 (Ca3(PO4)2) + 6 (SiO2) + 10 (C) = 6 (CaSiO3) + (P4) + 10 (CO)"},
}

func TestBalance(Te *testing.T) {
	for _, tt := range balanceTests {
		Te.Run(tt.eq, func(t *testing.T) {
			got, err := Balance(tt.eq)
			require.NoError(t, err)
			assert.Equal(t, tt.rational, got)

			R, err := NewBalancer(&Options{Integers: true, Pivot: -1}, nil).Balance(tt.eq)
			require.NoError(t, err)
			assert.Equal(t, tt.integers, R.Text)
		})
	}
}

// the conservation round trip, for every equation in balanceTests.
func TestBalanceConserves(Te *testing.T) {
	B := NewBalancer(nil, nil)
	for _, tt := range balanceTests {
		R, err := B.Balance(tt.eq)
		require.NoError(Te, err)
		require.NoError(Te, R.Verify())
		E, err := Split(R.Text)
		require.NoError(Te, err)
		r, p := Totals(E, nil)
		require.Equal(Te, len(r), len(p))
		for el, v := range r {
			assert.Equal(Te, 0, v.Cmp(p[el]), "%s in %s", el, R.Text)
		}
	}
}

var oneCoefficient = regexp.MustCompile(`(^|[+=] )1 \(`)
var lowestTerms = regexp.MustCompile(`(^|[+=] )(\d+)(/(\d+))? \(`)

func TestBalanceCoefficientFormat(Te *testing.T) {
	for _, tt := range balanceTests {
		for _, s := range []string{tt.rational, tt.integers} {
			assert.False(Te, oneCoefficient.MatchString(s), s)
			for _, m := range lowestTerms.FindAllStringSubmatch(s, -1) {
				c, ok := new(big.Rat).SetString(m[2] + m[3])
				require.True(Te, ok)
				assert.Equal(Te, 1, c.Sign())
				assert.Equal(Te, m[2]+m[3], c.RatString(), "not in lowest terms")
			}
		}
	}
}

// Balancing the output again gives the same output.
func TestBalanceIdempotent(Te *testing.T) {
	for _, tt := range balanceTests {
		for _, opts := range []*Options{{Pivot: -1}, {Pivot: -1, Integers: true}} {
			B := NewBalancer(opts, nil)
			R, err := B.Balance(tt.eq)
			require.NoError(Te, err)
			R2, err := B.Balance(R.Text)
			require.NoError(Te, err)
			assert.Equal(Te, R.Text, R2.Text)
			for _, c := range R2.Coefficients {
				if !opts.Integers {
					assert.Equal(Te, "1", c.RatString())
				}
			}
			ok, err := IsBalanced(R.Text)
			require.NoError(Te, err)
			assert.True(Te, ok)
		}
	}
}

// The pivot only changes the scale of the coefficients.
func TestBalancePivotInvariance(Te *testing.T) {
	for _, tt := range balanceTests {
		E, err := Split(tt.eq)
		require.NoError(Te, err)
		var ref []string
		for p := 0; p < E.Len(); p++ {
			R, err := NewBalancer(&Options{Pivot: p}, nil).Balance(tt.eq)
			require.NoError(Te, err)
			assert.Equal(Te, "1", R.Coefficients[p].RatString())
			assert.Equal(Te, p, R.Pivot)
			got := ratStrings(ToIntegers(R.Effective()))
			if ref == nil {
				ref = got
			}
			assert.Equal(Te, ref, got, "pivot %d in %s", p, tt.eq)
		}
	}
	R, err := NewBalancer(&Options{Pivot: 0}, nil).Balance("N2 + H2 = NH3")
	require.NoError(Te, err)
	assert.Equal(Te, "(N2) + 3 (H2) = 2 (NH3)", R.Text)
	_, err = NewBalancer(&Options{Pivot: 3}, nil).Balance("N2 + H2 = NH3")
	assert.ErrorIs(Te, err, MalformedEquation)
}

func TestBalanceErrors(Te *testing.T) {
	tests := []struct {
		eq   string
		kind Kind
	}{
		{"H2 + O2", MalformedEquation},
		{"H2 = O2 = H2O", MalformedEquation},
		{"H2 + O2 = H2O)", MalformedFormula},
		{"H2 + O2 = H2O + He", UnconservableReaction},
		{"H2 + He + O2 = H2O", UnconservableReaction},
		{"H2 = O2", UnconservableReaction},
		{"NaCl = Na", UnconservableReaction},
		{"H2 + O2 = H2O + H2O2", AmbiguousBalance},
		{"H2 + H2 = H4", AmbiguousBalance},
		{"H2 + O2 + Na + Cl2 = H2O + NaCl", AmbiguousBalance},
	}
	for _, tt := range tests {
		Te.Run(tt.eq, func(t *testing.T) {
			R, err := Balance(tt.eq)
			assert.Empty(t, R)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestBalanceSubsystemsInError(Te *testing.T) {
	_, err := Balance("H2 + O2 + Na + Cl2 = H2O + NaCl")
	require.ErrorIs(Te, err, AmbiguousBalance)
	assert.Contains(Te, err.Error(), "2 independent subsystems: {(H2), (O2), (H2O)} {(Na), (Cl2), (NaCl)}")
}

func TestBalanceStrict(Te *testing.T) {
	_, err := Balance("Xx2 + O2 = Xx2O")
	require.NoError(Te, err)
	_, err = NewBalancer(&Options{Pivot: -1, Strict: true}, nil).Balance("Xx2 + O2 = Xx2O")
	require.ErrorIs(Te, err, MalformedFormula)
	assert.Contains(Te, err.Error(), "Xx")
}

func TestResultTotalsAndMass(Te *testing.T) {
	R, err := NewBalancer(&Options{Pivot: -1, Integers: true}, nil).Balance("CH4 + O2 = CO2 + H2O")
	require.NoError(Te, err)
	els, r, p := R.AtomTotals()
	assert.Equal(Te, []string{"C", "H", "O"}, els)
	assert.InDeltaSlice(Te, []float64{1, 4, 4}, r, 1e-12)
	assert.InDeltaSlice(Te, []float64{1, 4, 4}, p, 1e-12)

	mr, mp, err := R.MassBalance()
	require.NoError(Te, err)
	assert.InDelta(Te, mr, mp, 1e-9)
	assert.InDelta(Te, 80.0, mr, 0.1)
}

func TestBalancerLogs(Te *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	B := NewBalancer(nil, zap.New(core))
	_, err := B.Balance("H2 + O2 = H2O")
	require.NoError(Te, err)
	entries := logs.FilterMessage("balanced").All()
	require.Len(Te, entries, 1)
	assert.Equal(Te, "(H2) + 1/2 (O2) = (H2O)", entries[0].ContextMap()["result"])
	assert.NotEmpty(Te, logs.FilterMessage("system built").All())
}

// one Balancer shared by many goroutines gives the same results as serial calls.
func TestBalancerConcurrent(Te *testing.T) {
	core, _ := observer.New(zap.DebugLevel)
	B := NewBalancer(&Options{Integers: true, Pivot: -1}, zap.New(core))
	want := make([]string, len(balanceTests))
	for i, tt := range balanceTests {
		R, err := B.Balance(tt.eq)
		require.NoError(Te, err)
		want[i] = R.Text
	}
	const workers = 16
	got := make([][]string, workers)
	errs := make([][]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		got[w] = make([]string, len(balanceTests))
		errs[w] = make([]error, len(balanceTests))
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for k := range balanceTests {
				//each worker starts somewhere else in the table
				i := (k + w) % len(balanceTests)
				R, err := B.Balance(balanceTests[i].eq)
				errs[w][i] = err
				if err == nil {
					got[w][i] = R.Text
				}
			}
		}(w)
	}
	wg.Wait()
	for w := 0; w < workers; w++ {
		for i := range balanceTests {
			require.NoError(Te, errs[w][i])
			assert.Equal(Te, want[i], got[w][i], "worker %d, %s", w, balanceTests[i].eq)
		}
	}
}

func TestBalancerOptions(Te *testing.T) {
	assert.Equal(Te, *DefaultOptions(), NewBalancer(nil, nil).Options())
	o := &Options{Integers: true, Pivot: 2, Strict: true}
	B := NewBalancer(o, nil)
	o.Pivot = 0 //the Balancer keeps its own copy
	got := B.Options()
	assert.Equal(Te, 2, got.Pivot)
	assert.True(Te, got.Integers)
	assert.True(Te, got.Strict)
}

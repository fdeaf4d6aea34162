/*
 * formula.go, part of gobalance.
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
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// maxExpandedLength bounds the flat formula produced by group expansion, so
// something like (H)999999999 fails instead of eating the memory.
const maxExpandedLength = 1 << 20

var (
	innermostGroup = regexp.MustCompile(`\(([^()]+)\)(\d*)`)
	elementToken   = regexp.MustCompile(`([A-Z][a-z]*)(\d*)`)
	elementSymbol  = regexp.MustCompile(`[A-Z][a-z]*`)
)

// ElementCount maps element symbols to the number of atoms of that element.
// Absent elements have a count of zero.
type ElementCount map[string]int

// Symbols returns the elements present in c, in Hill order: C first and H
// second if there is carbon, then everything else alphabetically.
func (c ElementCount) Symbols() []string {
	ret := make([]string, 0, len(c))
	for s, n := range c {
		if n != 0 {
			ret = append(ret, s)
		}
	}
	sortHill(ret, c["C"] != 0)
	return ret
}

// Hill returns the flattened formula in Hill notation, e.g. H8N2O4S for (NH4)2SO4.
func (c ElementCount) Hill() string {
	var b strings.Builder
	for _, s := range c.Symbols() {
		b.WriteString(s)
		if c[s] != 1 {
			b.WriteString(strconv.Itoa(c[s]))
		}
	}
	return b.String()
}

func sortHill(syms []string, carbon bool) {
	rank := func(s string) int {
		if !carbon {
			return 2
		}
		switch s {
		case "C":
			return 0
		case "H":
			return 1
		}
		return 2
	}
	sort.Slice(syms, func(i, j int) bool {
		ri, rj := rank(syms[i]), rank(syms[j])
		if ri != rj {
			return ri < rj
		}
		return syms[i] < syms[j]
	})
}

// CountElements expands the parenthetical groups in formula and counts the atoms of each element.
// Groups are expanded innermost first, by repeating their content as many times as the
// number that follows them (1 if there is none). The formula must contain only element symbols,
// counts and balanced parentheses; anything else is a MalformedFormula error.
func CountElements(formula string) (ElementCount, error) {
	if err := checkFormula(formula); err != nil {
		return nil, err
	}
	flat, err := expandGroups(formula)
	if err != nil {
		return nil, err
	}
	counts := make(ElementCount)
	for _, m := range elementToken.FindAllStringSubmatch(flat, -1) {
		n := 1
		if m[2] != "" {
			n, err = strconv.Atoi(m[2])
			if err != nil {
				return nil, &Error{kind: MalformedFormula, message: "bad count for " + m[1] + " in " + formula, cause: err, deco: []string{"CountElements"}}
			}
		}
		if counts[m[1]] > math.MaxInt-n {
			return nil, newError(MalformedFormula, "CountElements", "too many %s atoms in %q", m[1], formula)
		}
		counts[m[1]] += n
	}
	return counts, nil
}

// expandGroups replaces every innermost group with its repeated content, until no
// parentheses are left. The formula must have passed checkFormula.
func expandGroups(formula string) (string, error) {
	var err error
	for strings.Contains(formula, "(") {
		formula = innermostGroup.ReplaceAllStringFunc(formula, func(group string) string {
			m := innermostGroup.FindStringSubmatch(group)
			times := 1
			if m[2] != "" {
				times, _ = strconv.Atoi(m[2]) //checkFormula already parsed it
			}
			if times > maxExpandedLength || len(m[1])*times > maxExpandedLength {
				err = newError(MalformedFormula, "expandGroups", "group (%s) repeated %d times is too large", m[1], times)
				return ""
			}
			return strings.Repeat(m[1], times)
		})
		if err != nil {
			return "", err
		}
		if len(formula) > maxExpandedLength {
			return "", newError(MalformedFormula, "expandGroups", "formula expands to more than %d characters", maxExpandedLength)
		}
	}
	return formula, nil
}

// checkFormula makes sure formula can be expanded and scanned: it is not empty, all
// characters are letters, digits or parentheses, parentheses are balanced and
// non-empty, and every lowercase letter and every count follows something it can apply to.
func checkFormula(formula string) error {
	if formula == "" {
		return newError(MalformedFormula, "CountElements", "empty formula")
	}
	depth := 0
	var prev rune
	for i, r := range formula {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if prev == '(' {
				return newError(MalformedFormula, "CountElements", "empty group at %d in %q", i, formula)
			}
			depth--
			if depth < 0 {
				return newError(MalformedFormula, "CountElements", "unbalanced ')' at %d in %q", i, formula)
			}
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
			if !isLetter(prev) {
				return newError(MalformedFormula, "CountElements", "lowercase %q at %d doesn't follow an element symbol in %q", r, i, formula)
			}
		case r >= '0' && r <= '9':
			if !isLetter(prev) && prev != ')' && !isDigit(prev) {
				return newError(MalformedFormula, "CountElements", "count at %d doesn't follow an element or group in %q", i, formula)
			}
			if !isDigit(prev) {
				if err := checkCount(formula[i:], formula); err != nil {
					return err
				}
			}
		default:
			return newError(MalformedFormula, "CountElements", "unrecognized character %q at %d in %q", r, i, formula)
		}
		prev = r
	}
	if depth != 0 {
		return newError(MalformedFormula, "CountElements", "unbalanced '(' in %q", formula)
	}
	return nil
}

// checkCount parses the run of digits at the start of s and rejects zero and
// numbers that don't fit an int.
func checkCount(s, formula string) error {
	end := 0
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return &Error{kind: MalformedFormula, message: "bad count " + s[:end] + " in " + formula, cause: err, deco: []string{"CountElements"}}
	}
	if n == 0 {
		return newError(MalformedFormula, "CountElements", "zero count in %q", formula)
	}
	return nil
}

func isLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Positions maps each element symbol in formula to the byte offsets where it appears.
// It doesn't expand groups, so the offsets point into formula itself.
func Positions(formula string) map[string][]int {
	ret := make(map[string][]int)
	for _, loc := range elementSymbol.FindAllStringIndex(formula, -1) {
		s := formula[loc[0]:loc[1]]
		ret[s] = append(ret[s], loc[0])
	}
	return ret
}

// checkSymbols returns a MalformedFormula error naming the first symbol in formula
// that is not a known element.
func checkSymbols(formula string) error {
	pos := Positions(formula)
	bad := ""
	badpos := len(formula)
	for s, p := range pos {
		if !IsElement(s) && p[0] < badpos {
			bad, badpos = s, p[0]
		}
	}
	if bad != "" {
		return newError(MalformedFormula, "checkSymbols", "unknown element %q at %d in %q", bad, badpos, formula)
	}
	return nil
}

/*
 * subsystems.go, part of gobalance.
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
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// speciesNode is a graph node for a species. Its ID is the index of the species' unknown.
type speciesNode struct {
	*Species
	id int64
}

func (N speciesNode) ID() int64 { return N.id }

// elementNode is a graph node for an element. IDs start after the last species.
type elementNode struct {
	symbol string
	id     int64
}

func (N elementNode) ID() int64 { return N.id }

// Subsystem is a group of species and elements that don't share any element with the
// rest of the equation, so their conservation equations are independent from the others.
type Subsystem struct {
	Species  []*Species
	Elements []string
}

func (S Subsystem) String() string {
	f := make([]string, len(S.Species))
	for i, s := range S.Species {
		f[i] = s.Formula
	}
	return "{" + strings.Join(f, ", ") + "}"
}

// Subsystems splits E into groups connected through shared elements, by finding the connected
// components of the bipartite species-element graph. An equation that can be balanced uniquely
// has exactly one subsystem; each extra subsystem adds a free dimension to the solution.
// Species are ordered as in E.Species(), and subsystems by their first species.
func Subsystems(E *Equation) []Subsystem {
	species := E.Species()
	g := simple.NewUndirectedGraph()
	counts := make([]ElementCount, len(species))
	for i, s := range species {
		g.AddNode(speciesNode{Species: s, id: int64(i)})
		counts[i] = s.Counts
	}
	elements := make(map[string]elementNode)
	for i, el := range Inventory(counts...) {
		n := elementNode{symbol: el, id: int64(len(species) + i)}
		elements[el] = n
		g.AddNode(n)
	}
	for i, s := range species {
		for el, n := range s.Counts {
			if n == 0 {
				continue
			}
			g.SetEdge(g.NewEdge(g.Node(int64(i)), elements[el]))
		}
	}
	comps := topo.ConnectedComponents(g)
	ret := make([]Subsystem, 0, len(comps))
	for _, c := range comps {
		ret = append(ret, newSubsystem(c))
	}
	sort.Slice(ret, func(i, j int) bool {
		return firstIndex(ret[i], species) < firstIndex(ret[j], species)
	})
	return ret
}

func newSubsystem(nodes []graph.Node) Subsystem {
	var S Subsystem
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	for _, n := range nodes {
		switch v := n.(type) {
		case speciesNode:
			S.Species = append(S.Species, v.Species)
		case elementNode:
			S.Elements = append(S.Elements, v.symbol)
		}
	}
	sortHill(S.Elements, isInString(S.Elements, "C"))
	return S
}

func firstIndex(S Subsystem, species []*Species) int {
	if len(S.Species) == 0 {
		return len(species)
	}
	for i, s := range species {
		if s == S.Species[0] {
			return i
		}
	}
	return len(species)
}

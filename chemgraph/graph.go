/*
 * graph.go, part of assemble.
 *
 * Copyright 2024 Matteo Degiacomi and the assemble contributors
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

package chemgraph

import (
	"fmt"
	"math"
	"sort"

	"github.com/degiacom/assemble"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Atom is a node of the bond graph.
type Atom struct {
	Index   int //position in the molecule
	Name    string
	Residue int //position of the residue in the chain
}

// ID implements graph.Node
func (A *Atom) ID() int64 {
	return int64(A.Index)
}

func (A *Atom) String() string {
	return fmt.Sprintf("%s%d(%d)", A.Name, A.Residue, A.Index)
}

// Topology is the undirected bond graph of a molecule, weighted by bond length.
type Topology struct {
	*simple.WeightedUndirectedGraph
	atoms []*Atom
}

// New returns an empty topology.
func New() *Topology {
	return &Topology{WeightedUndirectedGraph: simple.NewWeightedUndirectedGraph(0, math.Inf(1))}
}

// AddAtom adds the atom with the given index, which must not be in the
// topology already.
func (T *Topology) AddAtom(index int, name string, residue int) (*Atom, error) {
	if T.Node(int64(index)) != nil {
		return nil, fmt.Errorf("atom %d already in topology", index)
	}
	A := &Atom{Index: index, Name: name, Residue: residue}
	T.AddNode(A)
	T.atoms = append(T.atoms, A)
	return A, nil
}

// AddBond bonds the atoms with indexes i and j.
func (T *Topology) AddBond(i, j int, length float64) error {
	a1, a2 := T.Node(int64(i)), T.Node(int64(j))
	if a1 == nil || a2 == nil {
		return fmt.Errorf("bond %d-%d between atoms not in topology", i, j)
	}
	if i == j {
		return fmt.Errorf("atom %d bonded to itself", i)
	}
	T.SetWeightedEdge(simple.WeightedEdge{F: a1, T: a2, W: length})
	return nil
}

// Len returns the number of atoms.
func (T *Topology) Len() int {
	return len(T.atoms)
}

// NBonds returns the number of bonds.
func (T *Topology) NBonds() int {
	return T.Edges().Len()
}

// Components returns the atom indexes of each connected component, sorted.
// Components are sorted by their lowest index.
func (T *Topology) Components() [][]int {
	cc := topo.ConnectedComponents(T)
	ret := make([][]int, 0, len(cc))
	for _, c := range cc {
		r := make([]int, 0, len(c))
		for _, n := range c {
			r = append(r, int(n.ID()))
		}
		sort.Ints(r)
		ret = append(ret, r)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}

// Check returns an error if the topology is not a single connected
// component containing atoms from residues 0 to nres-1.
func (T *Topology) Check(nres int) error {
	if T.Len() == 0 {
		return assemble.NewError(assemble.InconsistentTopology, "empty bond graph")
	}
	comp := T.Components()
	if len(comp) != 1 {
		first := comp[1][0]
		return assemble.NewError(assemble.InconsistentTopology, "bond graph has %d components, atom %v is disconnected from atom %v", len(comp), T.Node(int64(first)), T.Node(int64(comp[0][0])))
	}
	res := make([]bool, nres)
	for _, a := range T.atoms {
		if a.Residue >= 0 && a.Residue < nres {
			res[a.Residue] = true
		}
	}
	for i, v := range res {
		if !v {
			return assemble.NewError(assemble.InconsistentTopology, "residue %d has no atoms in the bond graph", i)
		}
	}
	return nil
}

// ShortestPath returns the atoms in the path with the lowest total bond
// length between atoms i and j, and that length. The path is nil if the
// atoms are not connected.
func (T *Topology) ShortestPath(i, j int) ([]int, float64) {
	from := T.Node(int64(i))
	if from == nil || T.Node(int64(j)) == nil {
		return nil, math.Inf(1)
	}
	sh := path.DijkstraFrom(from, T)
	nodes, w := sh.To(int64(j))
	return ids(nodes), w
}

func ids(nodes []graph.Node) []int {
	if len(nodes) == 0 {
		return nil
	}
	r := make([]int, 0, len(nodes))
	for _, n := range nodes {
		r = append(r, int(n.ID()))
	}
	return r
}

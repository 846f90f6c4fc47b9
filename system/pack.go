/*
 * pack.go, part of assemble.
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

package system

import (
	"context"
	"fmt"
	"sort"

	"github.com/degiacom/assemble"
	"github.com/degiacom/assemble/polymer"
	"github.com/degiacom/assemble/v3"
	"gonum.org/v1/gonum/stat"
)

// Mode tells how concentrations are given.
type Mode int

const (
	Number Mode = iota //percentage of molecules
	Mass               //percentage of the total mass
)

// ParseMode returns the mode named s, "number" or "mass". An empty string
// gives Number.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "number":
		return Number, nil
	case "mass":
		return Mass, nil
	}
	return Number, fmt.Errorf("unknown concentration mode %q, number or mass expected", s)
}

// Concentration is the target abundance of one polymer.
type Concentration struct {
	Name    string
	Percent float64
}

// Options controls the packing.
type Options struct {
	Name    string  //of the system
	Padding float64 //Å, added to the voxels and to the box
	Trials  int
	Seed    uint64
	Workers int
	Mode    Mode
}

// DefaultOptions returns the default padding and number of trials.
func DefaultOptions() Options {
	return Options{Name: "system", Padding: 1.0, Trials: 100, Workers: 0, Mode: Number}
}

// MolCount is the number of molecules of one polymer in a system.
type MolCount struct {
	Name  string
	Count int
}

// System is a set of polymer chains placed on a lattice.
type System struct {
	Name       string
	Mol        *assemble.Molecule
	Box        assemble.Vec3 //Å, the box starts at the origin
	Voxel      assemble.Vec3
	Manifest   []MolCount //in the order atoms are written
	Chains     []*polymer.Chain
	Assignment *Assignment
	Stats      *Stats
	groups     [][2]int //first atom and number of atoms of each manifest entry
}

// Pack fills the lattice shape with the chains, so the abundance of each
// approaches conc. Every name in conc must be the name of one of the
// chains. Each chain is centered in a voxel as large as the largest chain
// plus the padding, and atoms are written grouped by chain name, in
// alphabetical order.
func Pack(ctx context.Context, chains []*polymer.Chain, conc []Concentration, shape Shape, opts Options) (*System, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(conc) == 0 {
		return nil, assemble.NewError(assemble.CompositionUnderflow, "no concentrations given")
	}
	byName := make(map[string]*polymer.Chain, len(chains))
	for _, c := range chains {
		byName[c.Name] = c
	}
	names := make([]string, 0, len(conc))
	weights := make([]float64, 0, len(conc))
	used := make([]*polymer.Chain, 0, len(conc))
	seen := make(map[string]bool, len(conc))
	for _, c := range conc {
		ch, ok := byName[c.Name]
		if !ok {
			return nil, assemble.NewError(assemble.UnknownPolymer, "concentration given for polymer %s, which was not built", c.Name)
		}
		if seen[c.Name] {
			return nil, assemble.NewError(assemble.CompositionUnderflow, "concentration for polymer %s given twice", c.Name)
		}
		seen[c.Name] = true
		w := c.Percent
		if opts.Mode == Mass && w > 0 {
			m, err := ch.Mass()
			if err != nil {
				return nil, err
			}
			if m <= 0 {
				return nil, assemble.NewError(assemble.CompositionUnderflow, "polymer %s has no mass", c.Name)
			}
			w /= m
		}
		names = append(names, c.Name)
		weights = append(weights, w)
		used = append(used, ch)
	}
	A, err := Assign(ctx, names, weights, shape, opts.Trials, opts.Seed, opts.Workers)
	if err != nil {
		return nil, err
	}
	S := &System{Name: opts.Name, Chains: used, Assignment: A}
	//every chain built sizes the voxel, even if it is not packed.
	for _, ch := range chains {
		e := assemble.Extent(ch.Mol.Coords)
		for k := 0; k < 3; k++ {
			if e[k]+opts.Padding > S.Voxel[k] {
				S.Voxel[k] = e[k] + opts.Padding
			}
		}
	}
	S.place(opts.Padding)
	S.Stats = S.stats()
	return S, nil
}

// place puts the chain of every cell in its voxel.
func (S *System) place(padding float64) {
	A := S.Assignment
	order := make([]int, len(A.Cells))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return A.Names[A.Cells[order[i]]] < A.Names[A.Cells[order[j]]]
	})
	natoms := 0
	for _, c := range A.Cells {
		natoms += S.Chains[c].Mol.Len()
	}
	atoms := make([]*assemble.Atom, 0, natoms)
	coords := v3.Zeros(natoms)
	resid := 0
	for _, cell := range order {
		ch := S.Chains[A.Cells[cell]]
		name := ch.Name
		if l := len(S.Manifest); l == 0 || S.Manifest[l-1].Name != name {
			S.Manifest = append(S.Manifest, MolCount{Name: name})
			S.groups = append(S.groups, [2]int{len(atoms), 0})
		}
		S.Manifest[len(S.Manifest)-1].Count++
		x, y, z := A.Shape.Coords(cell)
		cnt := assemble.Centroid(ch.Mol.Coords)
		var shift assemble.Vec3
		for k, v := range [3]int{x, y, z} {
			shift[k] = S.Voxel[k]*float64(v) + S.Voxel[k]/2 - cnt[k]
		}
		start := len(atoms)
		prev := -1
		for i, a := range ch.Mol.Atoms {
			if a.MolID != prev {
				resid++
				prev = a.MolID
			}
			at := a.Copy()
			at.ID = start + i + 1
			at.MolID = resid
			atoms = append(atoms, at)
			p := ch.Mol.Coords.Vec(i)
			coords.SetVec(start+i, assemble.Vec3{p[0] + shift[0], p[1] + shift[1], p[2] + shift[2]})
		}
		S.groups[len(S.groups)-1][1] += ch.Mol.Len()
	}
	S.Mol = &assemble.Molecule{Atoms: atoms, Coords: coords}
	if natoms == 0 {
		return
	}
	//the box starts at the origin, with half the padding on each side.
	min, max := assemble.BoundingBox(coords)
	assemble.Translate(coords, assemble.Vec3{padding/2 - min[0], padding/2 - min[1], padding/2 - min[2]})
	for k := 0; k < 3; k++ {
		S.Box[k] = max[k] - min[k] + padding
	}
}

// Group returns the 1-based indexes of the atoms of the ith manifest entry.
func (S *System) Group(i int) []int {
	g := S.groups[i]
	r := make([]int, g[1])
	for k := range r {
		r[k] = g[0] + k + 1
	}
	return r
}

// PolymerStats describes the molecules of one polymer in a system.
type PolymerStats struct {
	Name          string
	Count         int
	Mass          float64 //g/mol, 0 if unknown
	NumberPercent float64
	WeightPercent float64
}

// MonomerShare is the percentage of one monomer among all the monomers in
// a system.
type MonomerShare struct {
	Code    string
	Percent float64
}

// Stats summarizes the contents of a system.
type Stats struct {
	Polymers               []PolymerStats //in manifest order
	Monomers               []MonomerShare //sorted by code
	DegreeOfPolymerization float64        //number average
	Atoms                  int
	TrialErrorMean         float64
	TrialErrorStdDev       float64
}

func (S *System) stats() *Stats {
	st := &Stats{Atoms: S.Mol.Len()}
	byName := make(map[string]*polymer.Chain, len(S.Chains))
	for _, c := range S.Chains {
		byName[c.Name] = c
	}
	monomers := make(map[string]int)
	total, cells := 0, 0
	var mass float64
	for _, m := range S.Manifest {
		ch := byName[m.Name]
		p := PolymerStats{Name: m.Name, Count: m.Count}
		if w, err := ch.Mass(); err == nil {
			p.Mass = w
		}
		mass += p.Mass * float64(m.Count)
		for _, r := range ch.Residues {
			monomers[r.Code] += m.Count
		}
		total += m.Count * ch.Len()
		cells += m.Count
		st.Polymers = append(st.Polymers, p)
	}
	for i := range st.Polymers {
		p := &st.Polymers[i]
		p.NumberPercent = 100 * float64(p.Count) / float64(cells)
		if mass > 0 {
			p.WeightPercent = 100 * p.Mass * float64(p.Count) / mass
		}
	}
	codes := make([]string, 0, len(monomers))
	for k := range monomers {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	for _, k := range codes {
		st.Monomers = append(st.Monomers, MonomerShare{Code: k, Percent: 100 * float64(monomers[k]) / float64(total)})
	}
	if cells > 0 {
		st.DegreeOfPolymerization = float64(total) / float64(cells)
	}
	if len(S.Assignment.Errors) > 1 {
		st.TrialErrorMean, st.TrialErrorStdDev = stat.MeanStdDev(S.Assignment.Errors, nil)
	} else {
		st.TrialErrorMean = S.Assignment.Error
	}
	return st
}

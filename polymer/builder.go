/*
 * builder.go, part of assemble.
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

package polymer

import (
	"fmt"

	"github.com/degiacom/assemble"
	"github.com/degiacom/assemble/chemgraph"
	"github.com/degiacom/assemble/clash"
	"github.com/degiacom/assemble/ff"
	"github.com/degiacom/assemble/library"
	"github.com/degiacom/assemble/top"
	"github.com/degiacom/assemble/v3"
)

// superpose finds the operator that puts the hook atoms of a new monomer
// on those of the chain.
var superpose = assemble.RotatorTranslatorToSuper

// State is the state of a Builder.
type State int

const (
	Empty State = iota
	Building
	Done
	Failed
)

func (S State) String() string {
	switch S {
	case Empty:
		return "empty"
	case Building:
		return "building"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(S))
}

// Options controls the placement of monomers.
type Options struct {
	ClashThreshold float64 //Å, atoms closer than this clash. 0 disables the test.
	GridStep       float64 //degrees, step of the dihedral offsets tried on clashes
}

// DefaultOptions returns the default clash threshold and grid step.
func DefaultOptions() Options {
	return Options{ClashThreshold: 0.9, GridStep: 5}
}

// link holds everything needed to join residue i-1 with residue i,
// resolved before anything is placed.
type link struct {
	bondType string
	bond     float64 //Å
	tail     *top.Hook
	head     *top.Hook
	values   [4]float64 //tail angle, tail dihedral, head angle, head dihedral, degrees
}

// Builder assembles chains from the monomers in a library. The library and
// the force field are only read, so several builders can share them.
// A Builder goes from Empty to Building with Start, and from there to Done
// with Finish, or to Failed on errors. Reset takes it back to Empty.
type Builder struct {
	lib   *library.Library
	ff    *ff.FF
	opts  Options
	grid  [][2]float64
	state State
	err   error

	name     string
	seq      string
	residues []*Residue
	links    []*link
	arena    *v3.Matrix //coordinates of every atom in the chain
	next     int        //next residue to place
	diag     *Diagnostics
}

// NewBuilder returns an Empty builder.
func NewBuilder(lib *library.Library, F *ff.FF, opts Options) *Builder {
	return &Builder{lib: lib, ff: F, opts: opts, grid: clash.Grid(opts.GridStep)}
}

// State returns the state of the builder.
func (B *Builder) State() State { return B.state }

// Err returns the error that took the builder to Failed, if any.
func (B *Builder) Err() error { return B.err }

// Reset drops the current chain, if any, and takes the builder to Empty.
func (B *Builder) Reset() {
	B.state = Empty
	B.err = nil
	B.name = ""
	B.seq = ""
	B.residues = nil
	B.links = nil
	B.arena = nil
	B.next = 0
	B.diag = nil
}

func (B *Builder) fail(err error) error {
	B.state = Failed
	B.err = err
	return err
}

// Build assembles the chain name with the monomers in sequence, one code
// per monomer.
func (B *Builder) Build(name, sequence string) (*Chain, error) {
	if B.state != Empty {
		B.Reset()
	}
	if err := B.Start(name, sequence); err != nil {
		return nil, err
	}
	for {
		more, err := B.Step()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	return B.Finish()
}

// Start checks every monomer, template and junction in sequence, and
// places the first monomer. Nothing is copied from the library unless the
// whole sequence can be built.
func (B *Builder) Start(name, sequence string) error {
	if B.state != Empty {
		return fmt.Errorf("polymer: Start called on a %s builder", B.state)
	}
	if len(sequence) == 0 {
		return B.fail(assemble.NewError(assemble.MissingMonomer, "chain %s has an empty sequence", name))
	}
	residues, links, err := B.plan(sequence)
	if err != nil {
		return B.fail(fmt.Errorf("chain %s: %w", name, err))
	}
	total := 0
	for _, r := range residues {
		r.Start = total
		total += r.Len
	}
	B.name = name
	B.seq = sequence
	B.residues = residues
	B.links = links
	B.arena = v3.Zeros(total)
	B.diag = &Diagnostics{}
	first := residues[0]
	B.view(0).Copy(first.Monomer.Mol.Coords)
	B.next = 1
	B.state = Building
	return nil
}

// plan resolves the monomers and the terms of every junction.
func (B *Builder) plan(sequence string) ([]*Residue, []*link, error) {
	n := len(sequence)
	residues := make([]*Residue, 0, n)
	for i := 0; i < n; i++ {
		code := sequence[i : i+1]
		m, err := B.lib.Get(code)
		if err != nil {
			return nil, nil, fmt.Errorf("residue %d: %w", i+1, err)
		}
		tpl := m.Top.Terminal(i == 0, i == n-1)
		if err := tpl.Check(); err != nil {
			return nil, nil, fmt.Errorf("residue %d (%s): %w", i+1, code, err)
		}
		if m.Mol.IndexOf(tpl.Head) < 0 || m.Mol.IndexOf(tpl.Tail) < 0 {
			return nil, nil, assemble.NewError(assemble.MalformedTemplate, "residue %d (%s): head %s or tail %s not in the structure", i+1, code, tpl.Head, tpl.Tail)
		}
		residues = append(residues, &Residue{Code: code, Monomer: m, Top: tpl, Len: m.Mol.Len()})
	}
	links := make([]*link, n)
	for i := 1; i < n; i++ {
		l, err := B.junction(residues[i-1].Top, residues[i].Top)
		if err != nil {
			return nil, nil, fmt.Errorf("junction %d-%d (%s-%s): %w", i, i+1, residues[i-1].Code, residues[i].Code, err)
		}
		for k, h := range []*top.Hook{l.tail, l.head} {
			r := residues[i-1+k]
			for _, a := range []string{h.Self, h.AngleAtom, h.DihedralAtom} {
				if r.Monomer.Mol.IndexOf(a) < 0 {
					return nil, nil, assemble.NewError(assemble.MalformedTemplate, "junction %d-%d: atom %s not in the structure of %s", i, i+1, a, r.Code)
				}
			}
		}
		links[i] = l
	}
	return residues, links, nil
}

func (B *Builder) junction(cur, next *top.Template) (*link, error) {
	var err error
	l := new(link)
	if l.bondType, err = top.ResolveBond(cur, next); err != nil {
		return nil, err
	}
	if l.tail, err = top.TailHook(cur, next); err != nil {
		return nil, err
	}
	if l.head, err = top.HeadHook(cur, next); err != nil {
		return nil, err
	}
	if l.bond, err = B.ff.Bond(l.bondType); err != nil {
		return nil, err
	}
	types := []string{l.tail.AngleType(), l.tail.DihedralType(), l.head.AngleType(), l.head.DihedralType()}
	for k, t := range types {
		get := B.ff.Angle
		if k%2 == 1 {
			get = B.ff.Dihedral
		}
		if l.values[k], err = get(t); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// view returns the rows of the arena belonging to residue i.
func (B *Builder) view(i int) *v3.Matrix {
	r := B.residues[i]
	return B.arena.View(r.Start, r.Len)
}

// Step places the next monomer. It returns false once every monomer has
// been placed.
func (B *Builder) Step() (bool, error) {
	if B.state != Building {
		return false, fmt.Errorf("polymer: Step called on a %s builder", B.state)
	}
	if B.next >= len(B.residues) {
		return false, nil
	}
	if err := B.place(B.next); err != nil {
		return false, B.fail(fmt.Errorf("chain %s: %w", B.name, err))
	}
	B.next++
	return B.next < len(B.residues), nil
}

// place puts residue i on the tail of residue i-1, trying dihedral offsets
// until the new monomer clashes with nothing placed before it, or the grid
// runs out.
func (B *Builder) place(i int) error {
	cur, nxt := B.residues[i-1], B.residues[i]
	l := B.links[i]
	placed := B.arena.View(0, nxt.Start)
	curc := B.view(i - 1)
	blue := nxt.Monomer.Mol.Coords
	pos := func(m *v3.Matrix, r *Residue, name string) assemble.Vec3 {
		return m.Vec(r.Monomer.Mol.IndexOf(name))
	}
	tail := pos(curc, cur, l.tail.Self)
	tailAngle := pos(curc, cur, l.tail.AngleAtom)
	tailDihed := pos(curc, cur, l.tail.DihedralAtom)
	head := pos(blue, nxt, l.head.Self)
	headAngle := pos(blue, nxt, l.head.AngleAtom)
	headDihed := pos(blue, nxt, l.head.DihedralAtom)

	J := &Junction{
		Position:         i,
		Prev:             cur.Code,
		Next:             nxt.Code,
		BondType:         l.bondType,
		Bond:             l.bond,
		Tail:             l.tail,
		Head:             l.head,
		TailAngle:        l.values[0],
		TailDihedral:     l.values[1],
		HeadAngle:        l.values[2],
		HeadDihedral:     l.values[3],
		TailAngleType:    l.tail.AngleType(),
		TailDihedralType: l.tail.DihedralType(),
		HeadAngleType:    l.head.AngleType(),
		HeadDihedralType: l.head.DihedralType(),
	}
	view := B.view(i)
	test := v3.Zeros(2)
	templa := v3.Zeros(2)
	for k, off := range B.grid {
		tailHook := assemble.PlaceHook(tail, tailAngle, tailDihed, l.bond, l.values[0]*assemble.Deg2Rad, (l.values[1]+off[1])*assemble.Deg2Rad)
		headHook := assemble.PlaceHook(head, headAngle, headDihed, l.bond, l.values[2]*assemble.Deg2Rad, (l.values[3]+off[0])*assemble.Deg2Rad)
		test.SetVec(0, headHook)
		test.SetVec(1, head)
		templa.SetVec(0, tail)
		templa.SetVec(1, tailHook)
		view.Copy(blue)
		rot, from, to, err := superpose(test, templa)
		if err != nil {
			return assemble.ErrDecorate(err, fmt.Sprintf("placing residue %d (%s)", i+1, nxt.Code))
		}
		assemble.Transform(view, rot, from, to)
		J.Trial = k
		J.Offsets = off
		if clashes, _ := clash.Clashes(view, placed, B.opts.ClashThreshold); !clashes {
			J.Clashed = false
			break
		}
		J.Clashed = true
	}
	J.MinDist, _ = clash.LowestDist(view, placed)
	if J.Clashed {
		B.diag.Warnings = append(B.diag.Warnings, fmt.Sprintf("chain %s: could not place residue %d (%s) without clashes after %d trials, closest atoms at %.3f Å", B.name, i+1, nxt.Code, len(B.grid), J.MinDist))
	}
	B.diag.Junctions = append(B.diag.Junctions, J)
	return nil
}

// Finish aligns the principal axes of the chain with x, y and z, checks
// its bond graph, and returns it.
func (B *Builder) Finish() (*Chain, error) {
	if B.state != Building {
		return nil, fmt.Errorf("polymer: Finish called on a %s builder", B.state)
	}
	if B.next < len(B.residues) {
		return nil, fmt.Errorf("polymer: Finish called with %d residues left to place", len(B.residues)-B.next)
	}
	if err := assemble.AlignPrincipalAxes(B.arena); err != nil {
		return nil, B.fail(err)
	}
	C := &Chain{
		Name:     B.name,
		Sequence: B.seq,
		Residues: B.residues,
		Diag:     B.diag,
		params:   B.ff,
	}
	atoms := make([]*assemble.Atom, 0, B.arena.NVecs())
	for j, r := range B.residues {
		for _, a := range r.Monomer.Mol.Atoms {
			at := a.Copy()
			at.ID = len(atoms) + 1
			at.MolID = j + 1
			at.Chain = "P"
			atoms = append(atoms, at)
		}
	}
	mol, err := assemble.NewMolecule(atoms, B.arena)
	if err != nil {
		return nil, B.fail(err)
	}
	C.Mol = mol
	if C.Graph, err = bondGraph(C); err != nil {
		return nil, B.fail(fmt.Errorf("chain %s: %w", B.name, err))
	}
	first, last := B.residues[0], B.residues[len(B.residues)-1]
	_, B.diag.ContourLength = C.Graph.ShortestPath(first.Start+first.Monomer.Head(), last.Start+last.Monomer.Tail())
	B.state = Done
	return C, nil
}

// bondGraph builds the bond graph of C from the local bonds of each residue
// and the junction bonds, and checks that it is connected.
func bondGraph(C *Chain) (*chemgraph.Topology, error) {
	G := chemgraph.New()
	for j, r := range C.Residues {
		for k, a := range r.Monomer.Mol.Atoms {
			if _, err := G.AddAtom(r.Start+k, a.Name, j); err != nil {
				return nil, err
			}
		}
	}
	bond := func(i, k int) error {
		return G.AddBond(i, k, assemble.Distance(C.Mol.Coords.Vec(i), C.Mol.Coords.Vec(k)))
	}
	for j, r := range C.Residues {
		for _, t := range r.Top.Bonds {
			if t.Count(top.Local) != 2 {
				continue
			}
			if err := bond(r.Start+r.Monomer.Mol.IndexOf(t.Atoms[0].Name), r.Start+r.Monomer.Mol.IndexOf(t.Atoms[1].Name)); err != nil {
				return nil, err
			}
		}
		if j == 0 {
			continue
		}
		p := C.Residues[j-1]
		if err := bond(p.Start+p.Monomer.Tail(), r.Start+r.Monomer.Head()); err != nil {
			return nil, err
		}
	}
	if err := G.Check(len(C.Residues)); err != nil {
		return nil, err
	}
	return G, nil
}

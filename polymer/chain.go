/*
 * chain.go, part of assemble.
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
	"io"

	"github.com/degiacom/assemble"
	"github.com/degiacom/assemble/chemgraph"
	"github.com/degiacom/assemble/ff"
	gro "github.com/degiacom/assemble/grotop"
	"github.com/degiacom/assemble/library"
	"github.com/degiacom/assemble/top"
)

// Residue is one monomer of a chain.
type Residue struct {
	Code    string
	Monomer *library.Monomer
	Top     *top.Template //with the terminal substitutions for its position
	Start   int           //index of its first atom in the chain
	Len     int
}

// Junction records how a residue was joined to the previous one.
// Angles and dihedrals are in degrees, lengths in Å.
type Junction struct {
	Position         int //0-based index of the residue placed
	Prev, Next       string
	BondType         string
	Bond             float64
	Tail, Head       *top.Hook
	TailAngleType    string
	TailDihedralType string
	HeadAngleType    string
	HeadDihedralType string
	TailAngle        float64
	TailDihedral     float64
	HeadAngle        float64
	HeadDihedral     float64
	Trial            int        //index in the grid of the placement used
	Offsets          [2]float64 //head and tail dihedral offsets of that placement
	Clashed          bool       //no clash-free placement was found
	MinDist          float64    //closest approach to the rest of the chain
}

func (J *Junction) String() string {
	state := "ok"
	if J.Clashed {
		state = "clash"
	}
	return fmt.Sprintf("%d %s-%s bond %s %.3f, tail %s/%s, head %s/%s, trial %d (%.0f,%.0f) %s, min. distance %.3f",
		J.Position+1, J.Prev, J.Next, J.BondType, J.Bond, J.TailAngleType, J.TailDihedralType, J.HeadAngleType, J.HeadDihedralType,
		J.Trial, J.Offsets[0], J.Offsets[1], state, J.MinDist)
}

// Diagnostics collects what happened while building a chain.
type Diagnostics struct {
	Junctions     []*Junction
	Warnings      []string
	ContourLength float64 //Å, along the bonds from the first head to the last tail
}

// Unresolved returns the number of junctions placed with clashes.
func (D *Diagnostics) Unresolved() int {
	n := 0
	for _, j := range D.Junctions {
		if j.Clashed {
			n++
		}
	}
	return n
}

// Chain is a finished polymer, centered and aligned with its principal axes.
type Chain struct {
	Name     string
	Sequence string
	Mol      *assemble.Molecule
	Residues []*Residue
	Diag     *Diagnostics
	Graph    *chemgraph.Topology
	params   *ff.FF
}

// Len returns the number of residues.
func (C *Chain) Len() int {
	return len(C.Residues)
}

// atomType returns the force field type of the kth atom of residue r.
func (C *Chain) atomType(r *Residue, k int) (*ff.AtomType, error) {
	name := r.Monomer.Mol.Atom(k).Name
	typ, ok := r.Top.AtomType(name)
	if !ok {
		return nil, assemble.NewError(assemble.MalformedTemplate, "atom %s of residue %s has no type", name, r.Code)
	}
	at, ok := C.params.AtomType(typ)
	if !ok {
		return nil, assemble.NewError(assemble.MalformedForceField, "atom type %s, of atom %s in residue %s, not in force field %s", typ, name, r.Code, C.params.Name)
	}
	return at, nil
}

// Mass returns the molecular mass of the chain in g/mol, from the masses
// of the atom types in the force field.
func (C *Chain) Mass() (float64, error) {
	m := 0.0
	for _, r := range C.Residues {
		for k := 0; k < r.Len; k++ {
			at, err := C.atomType(r, k)
			if err != nil {
				return 0, err
			}
			m += at.Mass
		}
	}
	return m, nil
}

// WritePDB writes the chain in PDB format, with its sequence in a remark.
func (C *Chain) WritePDB(w io.Writer, remarks ...string) error {
	return assemble.PDBWrite(w, C.Mol, append([]string{"sequence: " + C.Sequence}, remarks...)...)
}

// groPad is the space left between the atoms and the edges of the box
// when writing a single chain.
const groPad = 1.0 //Å

// WriteGro writes the chain in Gromacs format, moved so that the box,
// which leaves groPad around the atoms, starts at the origin.
func (C *Chain) WriteGro(w io.Writer) error {
	min, max := assemble.BoundingBox(C.Mol.Coords)
	mol := C.Mol.Copy()
	assemble.Translate(mol.Coords, assemble.Vec3{groPad - min[0], groPad - min[1], groPad - min[2]})
	box := assemble.Vec3{max[0] - min[0] + 2*groPad, max[1] - min[1] + 2*groPad, max[2] - min[2] + 2*groPad}
	return gro.WriteGro(w, C.Sequence, mol, box)
}

// ref returns the index in the chain of the atom a, referenced from
// residue j, and false if it is not in the chain.
func (C *Chain) ref(j int, a top.AtomRef) (int, bool) {
	switch a.Dir {
	case top.Next:
		j++
	case top.Prev:
		j--
	}
	if j < 0 || j >= len(C.Residues) {
		return 0, false
	}
	r := C.Residues[j]
	k := r.Monomer.Mol.IndexOf(a.Name)
	if k < 0 {
		return 0, false
	}
	return r.Start + k, true
}

// Topology returns the Gromacs topology of the chain. Terms referencing
// residues beyond the ends of the chain are left out, and terms across a
// junction listed by both residues are written once.
func (C *Chain) Topology() (*gro.Molecule, error) {
	M := &gro.Molecule{Name: C.Name, NrExcl: 3, PosRes: true, Comments: []string{"sequence: " + C.Sequence}}
	for j, r := range C.Residues {
		for k, a := range r.Monomer.Mol.Atoms {
			at, err := C.atomType(r, k)
			if err != nil {
				return nil, err
			}
			M.Atoms = append(M.Atoms, &gro.Atom{
				ID:      r.Start + k + 1,
				Type:    at.Name,
				ResID:   j + 1,
				ResName: a.MolName,
				Name:    a.Name,
				CGNr:    j + 1,
				Charge:  at.Charge,
				Mass:    at.Mass,
			})
		}
	}
	sections := []struct {
		terms    func(*top.Template) []*top.Term
		functype int
		improper bool
	}{
		{func(t *top.Template) []*top.Term { return t.Bonds }, C.params.Types.Bond, false},
		{func(t *top.Template) []*top.Term { return t.Angles }, C.params.Types.Angle, false},
		{func(t *top.Template) []*top.Term { return t.Dihedrals }, C.params.Types.Dihedral, false},
		{func(t *top.Template) []*top.Term { return t.Impropers }, C.params.Types.Improper, true},
	}
	for _, s := range sections {
		for j, r := range C.Residues {
		terms:
			for _, t := range s.terms(r.Top) {
				ids := make([]int, 0, len(t.Atoms))
				for _, a := range t.Atoms {
					id, ok := C.ref(j, a)
					if !ok {
						continue terms
					}
					ids = append(ids, id)
				}
				params, ok := C.params.Record(t.Type)
				if !ok {
					return nil, assemble.NewError(assemble.UnknownBondedType, "term %s of residue %d (%s) has a type not in force field %s", t, j+1, r.Code, C.params.Name)
				}
				M.AddTerm(&gro.Term{IDs: ids, FuncType: s.functype, Params: params}, s.improper)
			}
		}
	}
	return M, nil
}

// WriteITP writes the Gromacs topology of the chain.
func (C *Chain) WriteITP(w io.Writer) error {
	M, err := C.Topology()
	if err != nil {
		return err
	}
	return M.Write(w)
}

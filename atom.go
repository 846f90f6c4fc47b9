/*
 * atom.go, part of assemble.
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

package assemble

import (
	"fmt"

	"github.com/degiacom/assemble/v3"
)

// Atom contains the identity of one atom. Positions live in the
// coordinate matrix of the Molecule the atom belongs to.
type Atom struct {
	Name      string  //PDB name of the atom
	ID        int     //serial number
	MolName   string  //residue name
	MolID     int     //residue number
	Chain     string  //one-character chain tag
	Symbol    string  //element, if known
	Occupancy float64 //PDB occupancy
	Bfactor   float64 //PDB b-factor
	Het       bool    //HETATM record
}

// Copy returns a copy of the atom.
func (A *Atom) Copy() *Atom {
	r := *A
	return &r
}

// Molecule is a set of atoms with one set of coordinates.
type Molecule struct {
	Atoms   []*Atom
	Coords  *v3.Matrix
	Remarks []string //PDB remarks, without the REMARK keyword
}

// NewMolecule returns a molecule with the given atoms and coordinates,
// checking that they are consistent.
func NewMolecule(atoms []*Atom, coords *v3.Matrix) (*Molecule, error) {
	M := &Molecule{Atoms: atoms, Coords: coords}
	if err := M.Corrupted(); err != nil {
		return nil, err
	}
	return M, nil
}

// Corrupted returns an error if the number of atoms and coordinates
// don't match.
func (M *Molecule) Corrupted() error {
	if M.Coords == nil {
		return NewError(MalformedFile, "molecule has no coordinates")
	}
	if M.Coords.NVecs() != len(M.Atoms) {
		return NewError(MalformedFile, "%d atoms but %d coordinates", len(M.Atoms), M.Coords.NVecs())
	}
	return nil
}

// Len returns the number of atoms in the molecule.
func (M *Molecule) Len() int {
	return len(M.Atoms)
}

// Atom returns the ith atom.
func (M *Molecule) Atom(i int) *Atom {
	return M.Atoms[i]
}

// IndexOf returns the index of the first atom called name, or -1.
func (M *Molecule) IndexOf(name string) int {
	for i, a := range M.Atoms {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the atom names, in order.
func (M *Molecule) Names() []string {
	r := make([]string, 0, len(M.Atoms))
	for _, a := range M.Atoms {
		r = append(r, a.Name)
	}
	return r
}

// Copy returns a deep copy of the molecule.
func (M *Molecule) Copy() *Molecule {
	atoms := make([]*Atom, 0, len(M.Atoms))
	for _, a := range M.Atoms {
		atoms = append(atoms, a.Copy())
	}
	coords := v3.Zeros(M.Coords.NVecs())
	coords.Copy(M.Coords)
	remarks := append([]string(nil), M.Remarks...)
	return &Molecule{Atoms: atoms, Coords: coords, Remarks: remarks}
}

// CheckUniqueNames returns an error if two atoms share a name.
func (M *Molecule) CheckUniqueNames() error {
	seen := make(map[string]int, len(M.Atoms))
	for i, a := range M.Atoms {
		if j, ok := seen[a.Name]; ok {
			return NewError(MalformedFile, "atom name %s repeated (atoms %d and %d)", a.Name, j+1, i+1)
		}
		seen[a.Name] = i
	}
	return nil
}

func (M *Molecule) String() string {
	return fmt.Sprintf("Molecule with %d atoms", M.Len())
}

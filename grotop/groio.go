/*
 * groio.go, part of assemble.
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

package gro

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/degiacom/assemble"
)

// Gromacs fixed-width fields wrap at this value.
const wrap = 100000

// Atom is a line in the atoms section of a Gromacs molecule topology.
type Atom struct {
	ID      int //1-based
	Type    string
	ResID   int
	ResName string
	Name    string
	CGNr    int
	Charge  float64
	Mass    float64
}

// ToGroTop returns the atom as a Gromacs topology line.
func (A *Atom) ToGroTop() string {
	return fmt.Sprintf("%6d%11s%7d%7s%7s%7d%11.4f%11.4f\n", A.ID, A.Type, A.ResID, A.ResName, A.Name, A.CGNr, A.Charge, A.Mass)
}

// Term is a bonded term: a bond, angle, dihedral or improper.
type Term struct {
	IDs      []int //0-based, unless OneBased is 1
	OneBased int   //0 if IDs are 0-based, 1 if they are 1-based
	FuncType int
	Params   []float64
}

func (T *Term) writeAtoms() string {
	add := 1 - T.OneBased
	r := make([]string, 0, len(T.IDs))
	for _, v := range T.IDs {
		r = append(r, fmt.Sprintf("%6d", v+add))
	}
	return strings.Join(r, " ")
}

// ToGroTop writes the term as a line of a Gromacs topology.
func (T *Term) ToGroTop() string {
	ret := make([]string, 0, 2+len(T.Params))
	ret = append(ret, T.writeAtoms())
	ret = append(ret, fmt.Sprintf("%6d", T.FuncType))
	for _, v := range T.Params {
		ret = append(ret, fmt.Sprintf("%10s", strconv.FormatFloat(v, 'g', -1, 64)))
	}
	return strings.Join(ret, " ") + "\n"
}

// Key returns a string identifying the atoms of the term, regardless of
// the direction in which they are listed.
func (T *Term) Key() string {
	fw := make([]string, len(T.IDs))
	bw := make([]string, len(T.IDs))
	for i, v := range T.IDs {
		fw[i] = strconv.Itoa(v)
		bw[len(T.IDs)-1-i] = strconv.Itoa(v)
	}
	f, b := strings.Join(fw, "-"), strings.Join(bw, "-")
	if b < f {
		return b
	}
	return f
}

// Molecule is a Gromacs molecule topology (an itp file).
type Molecule struct {
	Name      string
	NrExcl    int
	Comments  []string
	Atoms     []*Atom
	Bonds     []*Term
	Angles    []*Term
	Dihedrals []*Term
	Impropers []*Term //written in a second dihedrals section
	PosRes    bool    //include posre.itp if POSRES is defined
}

// AddTerm appends T to the terms with its number of atoms, unless a term
// with the same atoms is already there. It returns false if T was not added.
func (M *Molecule) AddTerm(T *Term, improper bool) bool {
	var terms *[]*Term
	switch {
	case improper:
		terms = &M.Impropers
	case len(T.IDs) == 2:
		terms = &M.Bonds
	case len(T.IDs) == 3:
		terms = &M.Angles
	case len(T.IDs) == 4:
		terms = &M.Dihedrals
	default:
		return false
	}
	k := T.Key()
	for _, v := range *terms {
		if v.Key() == k {
			return false
		}
	}
	*terms = append(*terms, T)
	return true
}

func writeTerms(w *bufio.Writer, header string, terms []*Term) {
	fmt.Fprintf(w, "\n[ %s ]\n", header)
	for _, t := range terms {
		w.WriteString(t.ToGroTop())
	}
}

// Write writes the molecule topology in Gromacs format.
func (M *Molecule) Write(out io.Writer) error {
	w := bufio.NewWriter(out)
	for _, c := range M.Comments {
		fmt.Fprintf(w, "; %s\n", c)
	}
	fmt.Fprintf(w, "\n[ moleculetype ]\n; name  nrexcl\n%s %7d\n", M.Name, M.NrExcl)
	fmt.Fprintf(w, "\n[ atoms ]\n;   nr       type  resnr    res   atom   cgnr     charge       mass\n")
	for _, a := range M.Atoms {
		w.WriteString(a.ToGroTop())
	}
	writeTerms(w, "bonds", M.Bonds)
	writeTerms(w, "angles", M.Angles)
	writeTerms(w, "dihedrals", M.Dihedrals)
	if len(M.Impropers) > 0 {
		writeTerms(w, "dihedrals", M.Impropers)
	}
	if M.PosRes {
		w.WriteString("\n#ifdef POSRES\n#include \"posre.itp\"\n#endif\n")
	}
	return w.Flush()
}

// WriteGro writes mol in the Gromacs coordinate format. Coordinates and box,
// which are in Å, are written in nm. Residue and atom numbers wrap to 0
// after 99999. The residue number of each atom is its MolID.
func WriteGro(out io.Writer, title string, mol *assemble.Molecule, box assemble.Vec3) error {
	if err := mol.Corrupted(); err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "%s\n%d\n", title, mol.Len())
	for i, at := range mol.Atoms {
		if len(at.MolName) > 5 || len(at.Name) > 5 {
			return assemble.NewError(assemble.MalformedFile, "atom %s %s can't be written in GRO format", at.MolName, at.Name)
		}
		c := mol.Coords.Vec(i)
		fmt.Fprintf(w, "%5d%-5s%5s%5d%8.3f%8.3f%8.3f\n", at.MolID%wrap, at.MolName, at.Name, (i+1)%wrap, c[0]/10, c[1]/10, c[2]/10)
	}
	fmt.Fprintf(w, "%10.5f%10.5f%10.5f\n", box[0]/10, box[1]/10, box[2]/10)
	return w.Flush()
}

// Group is a named set of atoms in an index file.
type Group struct {
	Name    string
	Indices []int //1-based
}

// WriteNdx writes the groups as a Gromacs index file, 15 indices per line.
func WriteNdx(out io.Writer, groups []*Group) error {
	w := bufio.NewWriter(out)
	for i, g := range groups {
		if i > 0 {
			w.WriteString("\n")
		}
		fmt.Fprintf(w, "[ %s ]\n", g.Name)
		for j, v := range g.Indices {
			fmt.Fprintf(w, "%d", v)
			if (j+1)%15 == 0 || j == len(g.Indices)-1 {
				w.WriteString("\n")
			} else {
				w.WriteString(" ")
			}
		}
	}
	return w.Flush()
}

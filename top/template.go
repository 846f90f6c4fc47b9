/*
 * template.go, part of assemble.
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

package top

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/degiacom/assemble"
)

// Direction tells to which residue an atom reference points.
type Direction int

const (
	Local Direction = iota //the residue owning the template
	Next                   //the following residue, "+" prefix
	Prev                   //the preceding residue, "-" prefix
)

// Opposite returns Next for Prev and vice versa. Local is its own opposite.
func (D Direction) Opposite() Direction {
	switch D {
	case Next:
		return Prev
	case Prev:
		return Next
	}
	return Local
}

// Marker returns the prefix used for the direction in topology files.
func (D Direction) Marker() string {
	switch D {
	case Next:
		return "+"
	case Prev:
		return "-"
	}
	return ""
}

// AtomRef is an atom name together with the residue it belongs to,
// relative to the residue whose template contains the reference.
type AtomRef struct {
	Name string
	Dir  Direction
}

// Ref returns a reference to the atom name in the direction d.
func Ref(name string, d Direction) AtomRef {
	return AtomRef{Name: name, Dir: d}
}

// ParseRef reads an atom reference in the X, +X, -X notation.
func ParseRef(s string) (AtomRef, error) {
	var r AtomRef
	switch {
	case strings.HasPrefix(s, "+"):
		r = AtomRef{Name: s[1:], Dir: Next}
	case strings.HasPrefix(s, "-"):
		r = AtomRef{Name: s[1:], Dir: Prev}
	default:
		r = AtomRef{Name: s, Dir: Local}
	}
	if r.Name == "" || strings.ContainsAny(r.Name, "+-") {
		return r, assemble.NewError(assemble.MalformedTemplate, "invalid atom reference %q", s)
	}
	return r, nil
}

func (A AtomRef) String() string {
	return A.Dir.Marker() + A.Name
}

// Term is a bonded term: a bond, angle, dihedral or improper, depending on
// the number of atoms, and the identifier of its force-field type.
type Term struct {
	Atoms []AtomRef
	Type  string
}

// Count returns how many atoms of the term point in the direction d.
func (T *Term) Count(d Direction) int {
	n := 0
	for _, v := range T.Atoms {
		if v.Dir == d {
			n++
		}
	}
	return n
}

// Contains returns true if the reference a is one of the term's atoms.
func (T *Term) Contains(a AtomRef) bool {
	for _, v := range T.Atoms {
		if v == a {
			return true
		}
	}
	return false
}

// Is returns true if the term atoms, written with their markers,
// are exactly names, in the same order.
func (T *Term) Is(names []string) bool {
	if len(names) != len(T.Atoms) {
		return false
	}
	for i, v := range T.Atoms {
		if v.String() != names[i] {
			return false
		}
	}
	return true
}

func (T *Term) Copy() *Term {
	return &Term{Atoms: append([]AtomRef(nil), T.Atoms...), Type: T.Type}
}

func (T *Term) String() string {
	s := make([]string, 0, len(T.Atoms)+1)
	for _, v := range T.Atoms {
		s = append(s, v.String())
	}
	return strings.Join(append(s, T.Type), " ")
}

// Substitution is one line of a terminal section. With one atom it
// replaces that atom's type in the mapping, with 2, 3 or 4 atoms it
// replaces the type of the bond, angle or dihedral/improper with those atoms.
type Substitution struct {
	Atoms []string
	Type  string
}

// Template is the connectivity of one monomer: its bonded terms, the
// force-field type of each atom, and the atoms joining it to its neighbours.
type Template struct {
	Name      string
	Bonds     []*Term
	Angles    []*Term
	Dihedrals []*Term
	Impropers []*Term
	Head      string //bonded to the tail of the previous residue
	Tail      string //bonded to the head of the next residue
	atoms     []string
	types     map[string]string
	nterm     []Substitution
	cterm     []Substitution
}

// Atoms returns the names in the mapping section, in order.
func (T *Template) Atoms() []string {
	return append([]string(nil), T.atoms...)
}

// AtomType returns the force-field type of the atom name, and false if the
// atom is not in the template.
func (T *Template) AtomType(name string) (string, bool) {
	t, ok := T.types[name]
	return t, ok
}

// HasAtom returns true if name is an atom of the template.
func (T *Template) HasAtom(name string) bool {
	_, ok := T.types[name]
	return ok
}

// Copy returns a deep copy of the template.
func (T *Template) Copy() *Template {
	cp := func(t []*Term) []*Term {
		r := make([]*Term, 0, len(t))
		for _, v := range t {
			r = append(r, v.Copy())
		}
		return r
	}
	types := make(map[string]string, len(T.types))
	for k, v := range T.types {
		types[k] = v
	}
	return &Template{
		Name:      T.Name,
		Bonds:     cp(T.Bonds),
		Angles:    cp(T.Angles),
		Dihedrals: cp(T.Dihedrals),
		Impropers: cp(T.Impropers),
		Head:      T.Head,
		Tail:      T.Tail,
		atoms:     append([]string(nil), T.atoms...),
		types:     types,
		nterm:     append([]Substitution(nil), T.nterm...),
		cterm:     append([]Substitution(nil), T.cterm...),
	}
}

// Terminal returns a copy of the template with the N-terminal substitutions
// applied if first is true, and the C-terminal ones if last is true.
// The receiver is never modified.
func (T *Template) Terminal(first, last bool) *Template {
	R := T.Copy()
	if first {
		R.substitute(R.nterm)
	}
	if last {
		R.substitute(R.cterm)
	}
	return R
}

func (T *Template) substitute(subs []Substitution) {
	retype := func(terms []*Term, s Substitution) {
		for _, t := range terms {
			if t.Is(s.Atoms) {
				t.Type = s.Type
			}
		}
	}
	for _, s := range subs {
		switch len(s.Atoms) {
		case 1:
			if T.HasAtom(s.Atoms[0]) {
				T.types[s.Atoms[0]] = s.Type
			}
		case 2:
			retype(T.Bonds, s)
		case 3:
			retype(T.Angles, s)
		case 4:
			retype(T.Dihedrals, s)
			retype(T.Impropers, s)
		}
	}
}

// Terms returns the bonded terms with n atoms: bonds for 2, angles for 3 and
// dihedrals followed by impropers for 4.
func (T *Template) Terms(n int) []*Term {
	switch n {
	case 2:
		return T.Bonds
	case 3:
		return T.Angles
	case 4:
		return append(append([]*Term(nil), T.Dihedrals...), T.Impropers...)
	}
	return nil
}

// Check verifies that the head and tail atoms exist and that every local
// atom referenced by a term is in the mapping.
func (T *Template) Check() error {
	if T.Head == "" {
		return assemble.NewError(assemble.MalformedTemplate, "%s: head not found", T.Name)
	}
	if T.Tail == "" {
		return assemble.NewError(assemble.MalformedTemplate, "%s: tail not found", T.Name)
	}
	if len(T.atoms) == 0 {
		return assemble.NewError(assemble.MalformedTemplate, "%s: no [ mapping ] section", T.Name)
	}
	for _, v := range []string{T.Head, T.Tail} {
		if !T.HasAtom(v) {
			return assemble.NewError(assemble.MalformedTemplate, "%s: head or tail atom %s not in mapping", T.Name, v)
		}
	}
	for _, terms := range [][]*Term{T.Bonds, T.Angles, T.Dihedrals, T.Impropers} {
		for _, t := range terms {
			if t.Count(Next) > 0 && t.Count(Prev) > 0 && len(t.Atoms) == 2 {
				return assemble.NewError(assemble.MalformedTemplate, "%s: bond %s spans two junctions", T.Name, t)
			}
			for _, a := range t.Atoms {
				if a.Dir == Local && !T.HasAtom(a.Name) {
					return assemble.NewError(assemble.MalformedTemplate, "%s: term %s references unknown atom %s", T.Name, t, a.Name)
				}
			}
		}
	}
	return nil
}

// termAtoms gives the number of atoms for the terms in each section.
var termAtoms = map[string]int{"bonds": 2, "angles": 3, "dihedrals": 4, "impropers": 4}

// Parse reads a monomer topology from r. name identifies the
// template in error messages.
func Parse(r io.Reader, name string) (T *Template, err error) {
	lineno := 0
	defer func() {
		if rec := recover(); rec != nil {
			T = nil
			if lineno > 0 {
				err = assemble.NewError(assemble.MalformedTemplate, "%s, line %d: %v", name, lineno, rec)
				return
			}
			err = assemble.NewError(assemble.MalformedTemplate, "%s: %v", name, rec)
		}
	}()
	T = &Template{Name: name, types: make(map[string]string)}
	var heads, tails []string
	header := newTopHeader()
	current := ""
	s := bufio.NewScanner(r)
	for s.Scan() {
		lineno++
		line := cleanString(s.Text())
		if line == "" {
			continue
		}
		if header.Is(line) {
			current = header.Which(line)
			if current == "" {
				panic(fmt.Sprintf("unknown section %s", line))
			}
			continue
		}
		f := fi(line)
		switch current {
		case "":
			panic("data outside of any section")
		case "bonds", "angles", "dihedrals", "impropers":
			n := termAtoms[current]
			if len(f) < n+1 {
				panic(fmt.Sprintf("%s term needs %d atoms and a type", current, n))
			}
			t := &Term{Atoms: make([]AtomRef, 0, n), Type: f[n]}
			for _, v := range f[:n] {
				a, err := ParseRef(v)
				qerr(err)
				t.Atoms = append(t.Atoms, a)
			}
			switch current {
			case "bonds":
				T.Bonds = append(T.Bonds, t)
			case "angles":
				T.Angles = append(T.Angles, t)
			case "dihedrals":
				T.Dihedrals = append(T.Dihedrals, t)
			default:
				T.Impropers = append(T.Impropers, t)
			}
		case "mapping":
			if len(f) < 2 {
				panic("mapping lines need an atom name and a type")
			}
			if T.HasAtom(f[0]) {
				panic(fmt.Sprintf("atom %s mapped twice", f[0]))
			}
			T.atoms = append(T.atoms, f[0])
			T.types[f[0]] = f[1]
		case "nterminal", "cterminal":
			if len(f) < 2 || len(f) > 5 {
				panic(fmt.Sprintf("cannot understand line %q in %s section", line, current))
			}
			sub := Substitution{Atoms: append([]string(nil), f[:len(f)-1]...), Type: f[len(f)-1]}
			if current == "nterminal" {
				T.nterm = append(T.nterm, sub)
				if len(f) == 2 {
					heads = append(heads, f[0])
				}
			} else {
				T.cterm = append(T.cterm, sub)
				if len(f) == 2 {
					tails = append(tails, f[0])
				}
			}
		}
	}
	qerr(s.Err())
	lineno = 0
	if len(heads) > 1 {
		panic(fmt.Sprintf("more than one head atom: %v", heads))
	}
	if len(tails) > 1 {
		panic(fmt.Sprintf("more than one tail atom: %v", tails))
	}
	if len(heads) == 1 {
		T.Head = heads[0]
	}
	if len(tails) == 1 {
		T.Tail = tails[0]
	}
	if err := T.Check(); err != nil {
		return nil, err
	}
	return T, nil
}

// ReadFile reads the monomer topology in the file name, which may be
// zstd-compressed.
func ReadFile(name string) (*Template, error) {
	f, err := assemble.OpenRead(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, name)
}

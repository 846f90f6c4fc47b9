/*
 * junction.go, part of assemble.
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
	"github.com/degiacom/assemble"
)

// ResolveBond returns the type of the bond joining the tail of the residue
// described by cur with the head of the residue that follows it, described
// by next. The bond can be listed in either template, as "tail +head" in cur
// or "-tail head" in next. If both list it, they must agree on the type.
func ResolveBond(cur, next *Template) (string, error) {
	found := make([]string, 0, 2)
	add := func(terms []*Term, a, b AtomRef) {
		for _, t := range terms {
			if len(t.Atoms) == 2 && t.Contains(a) && t.Contains(b) && !contains(found, t.Type) {
				found = append(found, t.Type)
			}
		}
	}
	add(cur.Bonds, Ref(cur.Tail, Local), Ref(next.Head, Next))
	add(next.Bonds, Ref(cur.Tail, Prev), Ref(next.Head, Local))
	switch len(found) {
	case 0:
		return "", assemble.NewError(assemble.MissingBond, "connection between %s in %s and %s in %s not found", cur.Tail, cur.Name, next.Head, next.Name)
	case 1:
		return found[0], nil
	}
	return "", assemble.NewError(assemble.InconsistentTopology, "bond between %s in %s and %s in %s has types %v", cur.Tail, cur.Name, next.Head, next.Name, found)
}

func contains(s []string, v string) bool {
	for _, w := range s {
		if w == v {
			return true
		}
	}
	return false
}

// Hook contains what is needed to place the hook point bonded to
// one of the junction atoms: the local atoms completing the angle and the
// dihedral, and the terms, with their types, giving the values.
type Hook struct {
	Self         string //the junction atom
	AngleAtom    string
	DihedralAtom string
	Angle        *Term
	Dihedral     *Term
	Borrowed     bool //the dihedral was read from the neighbour's template
}

// AngleType returns the type of the angle term.
func (H *Hook) AngleType() string { return H.Angle.Type }

// DihedralType returns the type of the dihedral term.
func (H *Hook) DihedralType() string { return H.Dihedral.Type }

// TailHook resolves the hook on the tail of cur, which stands for the head of next.
func TailHook(cur, next *Template) (*Hook, error) {
	return ResolveHook(cur, next, cur.Tail, next.Head, Next)
}

// HeadHook resolves the hook on the head of next, which stands for the tail of cur.
func HeadHook(cur, next *Template) (*Hook, error) {
	return ResolveHook(next, cur, next.Head, cur.Tail, Prev)
}

// ResolveHook finds the dihedral and angle terms that place the atom other,
// of the residue described by n, relative to the atom self, of the residue
// described by q. dir is the direction of n as seen from q.
// Terms are looked for first in q, where they carry exactly one marker
// pointing in dir, and then in n, where they carry the markers pointing
// back to q on all atoms but other. Terms mixing both directions never
// qualify. The first qualifying term, in listing order, is used, also for
// the angle.
func ResolveHook(q, n *Template, self, other string, dir Direction) (*Hook, error) {
	H := &Hook{Self: self}
	H.Dihedral, H.AngleAtom, H.DihedralAtom = findDihedral(q, q.Dihedrals, Ref(self, Local), Ref(other, dir), dir)
	if H.Dihedral == nil {
		H.Borrowed = true
		H.Dihedral, H.AngleAtom, H.DihedralAtom = findDihedral(q, n.Dihedrals, Ref(self, dir.Opposite()), Ref(other, Local), dir)
	}
	if H.Dihedral == nil {
		return nil, assemble.NewError(assemble.NoDihedralMatch, "no dihedral found for the hook of atom %s in %s, bonded to %s in %s", self, q.Name, other, n.Name)
	}
	//the angle is searched for in the same order, regardless of where the dihedral came from.
	H.Angle = findAngle(q, q.Angles, Ref(self, Local), Ref(other, dir), dir)
	if H.Angle == nil {
		H.Angle = findAngle(q, n.Angles, Ref(self, dir.Opposite()), Ref(other, Local), dir)
	}
	if H.Angle == nil {
		return nil, assemble.NewError(assemble.NoAngleMatch, "no angle found for the hook of atom %s in %s, bonded to %s in %s", self, q.Name, other, n.Name)
	}
	return H, nil
}

// qualifies returns true if the term has exactly the markers expected
// when read from a template where self is the reference given.
// Own-template terms (self local) have one marker pointing in dir; terms
// read from the neighbour have a marker pointing back on every atom but one.
func qualifies(t *Term, self AtomRef, dir Direction) bool {
	if self.Dir == Local {
		return t.Count(dir) == 1 && t.Count(dir.Opposite()) == 0
	}
	return t.Count(self.Dir) == len(t.Atoms)-1 && t.Count(dir) == 0
}

// findDihedral returns the first dihedral in terms of the form
// other-self-angle-dihedral, or its reverse, together with the names of the
// angle and dihedral atoms in q, or nil if none qualifies.
func findDihedral(q *Template, terms []*Term, self, other AtomRef, dir Direction) (*Term, string, string) {
	for _, t := range terms {
		if len(t.Atoms) != 4 || !qualifies(t, self, dir) {
			continue
		}
		a := t.Atoms
		var angle, dihed string
		switch {
		case a[0] == other && a[1] == self:
			angle, dihed = a[2].Name, a[3].Name
		case a[3] == other && a[2] == self:
			angle, dihed = a[1].Name, a[0].Name
		default:
			continue
		}
		if !q.HasAtom(angle) || !q.HasAtom(dihed) {
			continue
		}
		return t, angle, dihed
	}
	return nil, "", ""
}

// findAngle returns the first angle in terms of the form other-self-x, or
// its reverse, or nil if none qualifies.
func findAngle(q *Template, terms []*Term, self, other AtomRef, dir Direction) *Term {
	for _, t := range terms {
		if len(t.Atoms) != 3 || !qualifies(t, self, dir) || t.Atoms[1] != self {
			continue
		}
		var outer AtomRef
		switch {
		case t.Atoms[0] == other:
			outer = t.Atoms[2]
		case t.Atoms[2] == other:
			outer = t.Atoms[0]
		default:
			continue
		}
		if !q.HasAtom(outer.Name) {
			continue
		}
		return t
	}
	return nil
}

// CheckJunction resolves every term needed to join the residue described by
// cur with the following one, described by next.
func CheckJunction(cur, next *Template) error {
	if _, err := ResolveBond(cur, next); err != nil {
		return err
	}
	if _, err := TailHook(cur, next); err != nil {
		return err
	}
	_, err := HeadHook(cur, next)
	return err
}

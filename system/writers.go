/*
 * writers.go, part of assemble.
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
	"io"

	"github.com/degiacom/assemble/ff"
	gro "github.com/degiacom/assemble/grotop"
)

// WriteGro writes the coordinates of the system in Gromacs format.
func (S *System) WriteGro(w io.Writer) error {
	return gro.WriteGro(w, S.Name, S.Mol, S.Box)
}

// Topology returns the Gromacs topology of the system. The non-bonded
// parameters come from F, and each polymer is included from the itp file
// named after it.
func (S *System) Topology(F *ff.FF) *gro.Topology {
	T := &gro.Topology{
		Comments: []string{"generated with assemble"},
		Defaults: F.Combination,
		Name:     S.Name,
	}
	for _, a := range F.AtomTypes() {
		T.AtomTypes = append(T.AtomTypes, a.Fields)
	}
	for _, c := range S.Chains {
		T.Includes = append(T.Includes, c.Name+".itp")
	}
	for _, m := range S.Manifest {
		T.Molecules = append(T.Molecules, gro.MolCount{Name: m.Name, Count: m.Count})
	}
	return T
}

// WriteTop writes the Gromacs topology of the system.
func (S *System) WriteTop(w io.Writer, F *ff.FF) error {
	return S.Topology(F).Write(w)
}

// WriteNdx writes an index file with one group per polymer.
func (S *System) WriteNdx(w io.Writer) error {
	groups := make([]*gro.Group, 0, len(S.Manifest))
	for i, m := range S.Manifest {
		groups = append(groups, &gro.Group{Name: m.Name, Indices: S.Group(i)})
	}
	return gro.WriteNdx(w, groups)
}

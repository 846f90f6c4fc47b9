/*
 * systop.go, part of assemble.
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
)

// MolCount is a line of the molecules section of a topology.
type MolCount struct {
	Name  string
	Count int
}

// Topology is a Gromacs system topology (a top file). Molecules are
// included from their own itp files.
type Topology struct {
	Comments  []string
	Defaults  []string   //nbfunc, comb-rule, gen-pairs, fudgeLJ, fudgeQQ
	AtomTypes [][]string //name, at.num, mass, charge, ptype, sigma, epsilon
	Includes  []string
	Name      string
	Molecules []MolCount
}

var (
	defaultsWidths = []int{16, 16, 16, 8, 8}
	atypesWidths   = []int{8, 8, 9, 8, 7, 10, 15}
)

// fixed writes the fields right-aligned to the given widths. Fields beyond
// the widths are written separated by a space.
func fixed(w *bufio.Writer, fields []string, widths []int) {
	for i, f := range fields {
		if i < len(widths) {
			fmt.Fprintf(w, "%*s", widths[i], f)
			continue
		}
		fmt.Fprintf(w, " %s", f)
	}
	w.WriteString("\n")
}

// Write writes the topology in Gromacs format.
func (T *Topology) Write(out io.Writer) error {
	w := bufio.NewWriter(out)
	for _, c := range T.Comments {
		fmt.Fprintf(w, "; %s\n", c)
	}
	w.WriteString("\n[ defaults ]\n; nbfunc        comb-rule       gen-pairs       fudgeLJ fudgeQQ\n")
	fixed(w, T.Defaults, defaultsWidths)
	w.WriteString("\n[ atomtypes ]\n;name   at.num  mass     charge  ptype  sigma     epsilon\n")
	for _, a := range T.AtomTypes {
		fixed(w, a, atypesWidths)
	}
	for _, inc := range T.Includes {
		fmt.Fprintf(w, "\n#include \"%s\"", inc)
	}
	fmt.Fprintf(w, "\n\n[ system ]\n%s\n", T.Name)
	w.WriteString("\n[ molecules ]\n")
	for _, m := range T.Molecules {
		fmt.Fprintf(w, "%s %d\n", m.Name, m.Count)
	}
	return w.Flush()
}

/*
 * doc.go, part of assemble.
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

// Package polymer assembles linear polymer chains from the monomers in a
// library.
//
// Each monomer is copied from its blueprint and joined to the tail of the
// chain so that the bond, angle and dihedrals across the junction take the
// values the force field gives for the terms the templates list there.
// Both junction atoms get a hook point, where the atom across the junction
// should be, and the new monomer is superimposed so its head lands on the
// tail's hook and its hook on the tail. If the new monomer clashes with the
// chain, the junction dihedrals are rotated over a grid until it doesn't.
// Finished chains are centered and aligned with their principal axes.
package polymer

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

/*
Package assemble provides the atom and molecule records, the geometry and
the file handling used to build polymer chains and pack them into
simulation boxes.

Coordinates are kept in v3.Matrix values, one atom per row, in Å. Rotations
follow the row vector convention: a point p is rotated as p·R.

	Superposition of any number of atoms (Kabsch), returning the rotation
	and the translations so other coordinates can follow.

	Placement of an atom from a bond length, an angle and a dihedral
	measured from three atoms already in place.

	Inertia tensor and alignment of a molecule with its principal axes.

	PDB reading and writing, with transparent zstd compression of files
	whose name ends in .zst.

The sub-packages build on this one: top reads connectivity templates, ff
reads bonded parameters, library holds monomers, polymer assembles chains,
system packs them on a lattice and grotop writes Gromacs files.
*/
package assemble

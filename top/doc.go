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
Package top reads monomer topologies: the bonded terms of a residue, the
force-field type of each of its atoms, and the atoms (head and tail) joining
it to the previous and next residues in a chain.

Atoms in the terms can belong to the neighbouring residues, which is written
with a "+" (next) or "-" (previous) prefix. The junction functions find, for
a pair of consecutive residues, the terms spanning their bond, reading them
from whichever of the two templates lists them.
*/
package top

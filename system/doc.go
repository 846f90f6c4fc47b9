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

// Package system packs finished polymer chains on a lattice.
//
// Every cell of the lattice gets one polymer, drawn so the number (or mass)
// of each kind approaches a target. The best of a number of random
// fillings is kept. Each chain is then centered in its cell and the atoms
// are collected, grouped by polymer, into one system that can be written as
// Gromacs coordinates, topology and index files.
package system

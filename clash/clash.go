/*
 * clash.go, part of assemble.
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

package clash

import (
	"math"

	"github.com/degiacom/assemble/v3"
	"gonum.org/v1/gonum/floats"
)

// LowestDist returns the smallest distance between a point in test and
// one in clash, and the indexes of both points.
func LowestDist(test, clash *v3.Matrix) (dist float64, indexes [2]int) {
	dist = math.Inf(1)
	for i := 0; i < test.NVecs(); i++ {
		a1 := test.Vec(i)
		for j := 0; j < clash.NVecs(); j++ {
			a2 := clash.Vec(j)
			dt := floats.Distance(a1[:], a2[:], 2)
			if dt < dist {
				dist = dt
				indexes[0] = i
				indexes[1] = j
			}
		}
	}
	return
}

// Clashes returns true if any point in test is closer than threshold to
// any point in clash. It also returns the indexes of the first such pair.
func Clashes(test, clash *v3.Matrix, threshold float64) (bool, [2]int) {
	var indexes [2]int
	if threshold <= 0 || test.NVecs() == 0 || clash.NVecs() == 0 {
		return false, indexes
	}
	lo, hi := bounds(clash, threshold)
	for i := 0; i < test.NVecs(); i++ {
		a1 := test.Vec(i)
		if !inside(a1, lo, hi) {
			continue
		}
		for j := 0; j < clash.NVecs(); j++ {
			a2 := clash.Vec(j)
			if floats.Distance(a1[:], a2[:], 2) < threshold {
				indexes[0] = i
				indexes[1] = j
				return true, indexes
			}
		}
	}
	return false, indexes
}

// bounds returns the corners of the box containing every point in m,
// enlarged by pad in each direction.
func bounds(m *v3.Matrix, pad float64) (lo, hi [3]float64) {
	for k := 0; k < 3; k++ {
		lo[k] = math.Inf(1)
		hi[k] = math.Inf(-1)
	}
	for i := 0; i < m.NVecs(); i++ {
		v := m.Vec(i)
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], v[k]-pad)
			hi[k] = math.Max(hi[k], v[k]+pad)
		}
	}
	return
}

func inside(v, lo, hi [3]float64) bool {
	for k := 0; k < 3; k++ {
		if v[k] < lo[k] || v[k] > hi[k] {
			return false
		}
	}
	return true
}

// Grid returns the pairs of dihedral offsets, in degrees, tried to take a
// new monomer out of a clash. The first pair is always (0,0). For each i in
// 0, step, 2*step... below 180 and each j from 0 to i, the pairs (i,j),
// (-i,j), (i,-j) and (-i,-j) are given, without repeating those where a
// zero would be negated. The first offset of a pair goes to the head
// dihedral, the second to the tail one, and the tail offset is never larger
// than the head offset in absolute value, so the grid covers half of the
// two dimensional offset space.
func Grid(step float64) [][2]float64 {
	if step <= 0 {
		return [][2]float64{{0, 0}}
	}
	n := int(math.Ceil(180/step - 1e-9))
	ret := make([][2]float64, 0, 2*n*n)
	for a := 0; a < n; a++ {
		i := float64(a) * step
		for b := 0; b <= a; b++ {
			j := float64(b) * step
			ret = append(ret, [2]float64{i, j})
			if a > 0 {
				ret = append(ret, [2]float64{-i, j})
			}
			if b > 0 {
				ret = append(ret, [2]float64{i, -j})
			}
			if a > 0 && b > 0 {
				ret = append(ret, [2]float64{-i, -j})
			}
		}
	}
	return ret
}

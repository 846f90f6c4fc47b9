/*
 * lattice.go, part of assemble.
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
	"context"
	"runtime"

	"github.com/degiacom/assemble"
	"golang.org/x/sync/errgroup"
)

// Shape is the number of cells of a lattice along x, y and z.
type Shape [3]int

// Empty returns true if every dimension is 0, meaning that no system is
// to be packed.
func (S Shape) Empty() bool {
	return S == Shape{}
}

// Cells returns the number of cells in the lattice.
func (S Shape) Cells() int {
	return S[0] * S[1] * S[2]
}

// Validate returns an error unless every dimension is positive.
func (S Shape) Validate() error {
	for _, v := range S {
		if v <= 0 {
			return assemble.NewError(assemble.InvalidLatticeSpec, "lattice shape %v: three positive values expected", [3]int(S))
		}
	}
	return nil
}

// ShapeFrom returns the shape given as a list of values, which must have
// exactly three.
func ShapeFrom(v []int) (Shape, error) {
	if len(v) != 3 {
		return Shape{}, assemble.NewError(assemble.InvalidLatticeSpec, "expected 3 values for the lattice shape, got %d", len(v))
	}
	return Shape{v[0], v[1], v[2]}, nil
}

// Coords returns the position in the lattice of the cell with index c.
// Cells are numbered with z changing fastest.
func (S Shape) Coords(c int) (x, y, z int) {
	z = c % S[2]
	y = (c / S[2]) % S[1]
	x = c / (S[1] * S[2])
	return
}

// Assignment is the identity given to every cell of a lattice.
type Assignment struct {
	Shape    Shape
	Names    []string
	Cells    []int     //index in Names of the identity of each cell
	Target   []float64 //percentages
	Realized []float64 //percentages
	Error    float64   //sum of squared differences between Realized and Target
	Trial    int       //trial that gave the assignment
	Errors   []float64 //error of every trial
}

// Count returns the number of cells with each identity.
func (A *Assignment) Count() []int {
	r := make([]int, len(A.Names))
	for _, v := range A.Cells {
		r[v]++
	}
	return r
}

type trial struct {
	cells    []int
	realized []float64
	err      float64
}

// TrialSeed returns the seed for the trial t of a run seeded with seed.
func TrialSeed(seed uint64, t int) uint64 {
	return seed + 0x9E3779B97F4A7C15*uint64(t+1)
}

// Assign gives each cell in the lattice one of the names so that the
// frequency of each approaches the weights, normalized to 100. Each of the
// trials fills the lattice independently with draws from a roulette, and
// the one closest to the weights is kept, the earliest on ties. Trials run
// concurrently, each with its own random stream derived from seed, so the
// result depends only on the arguments. workers <= 0 uses one per CPU.
func Assign(ctx context.Context, names []string, weights []float64, shape Shape, trials int, seed uint64, workers int) (*Assignment, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(names) != len(weights) {
		return nil, assemble.NewError(assemble.CompositionUnderflow, "%d names but %d weights", len(names), len(weights))
	}
	R, err := assemble.NewRoulette(weights)
	if err != nil {
		return nil, err
	}
	if trials < 1 {
		trials = 1
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	n := shape.Cells()
	results := make([]*trial, trials)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for t := 0; t < trials; t++ {
		t := t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u := assemble.NewUniform(TrialSeed(seed, t))
			cells := make([]int, n)
			for c := range cells {
				cells[c] = R.Spin(u)
			}
			realized := R.Tally(cells)
			results[t] = &trial{cells: cells, realized: realized, err: R.Error(realized)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	best := 0
	errs := make([]float64, trials)
	for t, r := range results {
		errs[t] = r.err
		if r.err < results[best].err {
			best = t
		}
	}
	b := results[best]
	return &Assignment{
		Shape:    shape,
		Names:    append([]string(nil), names...),
		Cells:    b.cells,
		Target:   R.Target(),
		Realized: b.realized,
		Error:    b.err,
		Trial:    best,
		Errors:   errs,
	}, nil
}

/*
 * roulette.go, part of assemble.
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

package assemble

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Roulette picks indexes with probabilities given by a set of percentages.
// It is read-only once built, and can be shared between goroutines, as long
// as each one spins it with its own random source.
type Roulette struct {
	target     []float64 //percentages, summing to 100
	cumulative []float64
	last       int //last entry with a non-zero weight
}

// NewRoulette returns a roulette for the given weights, which are
// normalized to 100.
func NewRoulette(weights []float64) (*Roulette, error) {
	if len(weights) == 0 {
		return nil, NewError(CompositionUnderflow, "empty composition")
	}
	last := 0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, NewError(CompositionUnderflow, "weight %d is %v, weights must be finite and non-negative", i, w)
		}
		if w > 0 {
			last = i
		}
	}
	sum := floats.Sum(weights)
	if sum <= 0 {
		return nil, NewError(CompositionUnderflow, "all %d weights are zero", len(weights))
	}
	t := make([]float64, len(weights))
	floats.ScaleTo(t, 100/sum, weights)
	c := make([]float64, len(weights))
	floats.CumSum(c, t)
	return &Roulette{target: t, cumulative: c, last: last}, nil
}

// Len returns the number of entries.
func (R *Roulette) Len() int {
	return len(R.target)
}

// Target returns the normalized percentages.
func (R *Roulette) Target() []float64 {
	return append([]float64(nil), R.target...)
}

// Pick returns the first entry whose cumulative percentage exceeds draw,
// a number in [0,100).
func (R *Roulette) Pick(draw float64) int {
	for i, v := range R.cumulative {
		if v > draw {
			return i
		}
	}
	//rounding can leave the last sum slightly under 100.
	return R.last
}

// Spin picks an entry with a draw from u, which must give numbers in [0,100).
func (R *Roulette) Spin(u distuv.Uniform) int {
	return R.Pick(u.Rand())
}

// Tally returns the percentage of each entry in picks.
func (R *Roulette) Tally(picks []int) []float64 {
	r := make([]float64, len(R.target))
	if len(picks) == 0 {
		return r
	}
	for _, v := range picks {
		r[v]++
	}
	floats.Scale(100/float64(len(picks)), r)
	return r
}

// Error returns the sum of the squared differences between the percentages
// in realized and the target ones.
func (R *Roulette) Error(realized []float64) float64 {
	d := floats.Distance(realized, R.target, 2)
	return d * d
}

// NewUniform returns a source of draws for Spin, seeded with seed.
func NewUniform(seed uint64) distuv.Uniform {
	return distuv.Uniform{Min: 0, Max: 100, Src: rand.NewSource(seed)}
}

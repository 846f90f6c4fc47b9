/*
 * sequence.go, part of assemble.
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

package polymer

import (
	"strings"

	"github.com/degiacom/assemble"
	"gonum.org/v1/gonum/stat/distuv"
)

// Share is the percentage of a monomer in a random sequence.
type Share struct {
	Code    string
	Percent float64
}

// RandomSequence returns a sequence of length monomers drawn with the given
// percentages, which are normalized to 100. It also returns the percentage
// of each monomer in the sequence obtained, in the order of shares.
func RandomSequence(length int, shares []Share, u distuv.Uniform) (string, []float64, error) {
	if length <= 0 {
		return "", nil, assemble.NewError(assemble.CompositionUnderflow, "sequence length must be positive, got %d", length)
	}
	w := make([]float64, 0, len(shares))
	for _, s := range shares {
		w = append(w, s.Percent)
	}
	R, err := assemble.NewRoulette(w)
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	picks := make([]int, 0, length)
	for i := 0; i < length; i++ {
		k := R.Spin(u)
		picks = append(picks, k)
		b.WriteString(shares[k].Code)
	}
	return b.String(), R.Tally(picks), nil
}

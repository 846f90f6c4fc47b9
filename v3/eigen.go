/*
 * eigen.go, part of assemble.
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

package v3

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// eigenpair sorts eigenvectors/eigenvalues pairs. It satisfies sort.Interface.
type eigenpair struct {
	//evecs must have as many rows as evals has elements.
	evecs *Matrix
	evals sort.Float64Slice
}

func (E eigenpair) Less(i, j int) bool {
	return E.evals[i] < E.evals[j]
}

func (E eigenpair) Swap(i, j int) {
	E.evals.Swap(i, j)
	vi := E.evecs.Vec(i)
	E.evecs.SetVec(i, E.evecs.Vec(j))
	E.evecs.SetVec(j, vi)
}

func (E eigenpair) Len() int {
	return len(E.evals)
}

// EigenWrap diagonalizes the symmetric 3x3 matrix in. It returns the eigenvectors
// as the rows of a Matrix, sorted by increasing eigenvalue, and the eigenvalues.
// The eigenvector matrix is checked for orthonormality and made right-handed.
// A negative epsilon selects the package default tolerance.
func EigenWrap(in *Matrix, epsilon float64) (*Matrix, []float64, error) {
	if epsilon < 0 {
		epsilon = appzero
	}
	if r, c := in.Dims(); r != 3 || c != 3 {
		return nil, nil, Error{string(ErrEigen), []string{"EigenWrap"}, true}
	}
	sym := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			sym.SetSym(i, j, (in.At(i, j)+in.At(j, i))/2)
		}
	}
	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, nil, Error{string(ErrEigen), []string{"EigenWrap"}, true}
	}
	evals := es.Values(nil)
	var cols mat.Dense
	es.VectorsTo(&cols)
	evecs := Zeros(3)
	evecs.Dense.Copy(cols.T()) //one eigenvector per row
	eig := eigenpair{evecs, evals}
	sort.Sort(eig)
	for i := 0; i < 3; i++ {
		vectori := eig.evecs.VecView(i)
		for j := i + 1; j < 3; j++ {
			vectorj := eig.evecs.VecView(j)
			if math.Abs(vectori.Dot(vectorj)) > math.Max(epsilon, 1e-8) {
				msg := fmt.Sprintf("Eigenvectors %d and %d not orthogonal. Dot: %g", i, j, vectori.Dot(vectorj))
				return eig.evecs, eig.evals, Error{msg, []string{"EigenWrap"}, true}
			}
		}
		vectori.Unit(vectori)
	}
	if det(eig.evecs) < 0 {
		last := eig.evecs.VecView(2)
		last.Dense.Scale(-1, last.Dense)
	}
	return eig.evecs, eig.evals, nil
}

/*
 * roulette_test.go, part of assemble.
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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoulette(Te *testing.T) {
	R, err := NewRoulette([]float64{7, 3})
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, []float64{70, 30}, R.Target(), 1e-12)
	assert.Equal(Te, 0, R.Pick(0))
	assert.Equal(Te, 0, R.Pick(69.9))
	assert.Equal(Te, 1, R.Pick(70))
	assert.Equal(Te, 1, R.Pick(100), "draws past the end go to the last entry")

	assert.InDeltaSlice(Te, []float64{75, 25}, R.Tally([]int{0, 0, 0, 1}), 1e-12)
	assert.InDelta(Te, 50.0, R.Error([]float64{75, 25}), 1e-9)

	Z, err := NewRoulette([]float64{0, 5, 0})
	require.NoError(Te, err)
	u := NewUniform(1)
	for i := 0; i < 100; i++ {
		assert.Equal(Te, 1, Z.Spin(u))
	}
}

func TestRouletteErrors(Te *testing.T) {
	for _, w := range [][]float64{nil, {0, 0}, {1, -1}} {
		_, err := NewRoulette(w)
		assert.True(Te, errors.Is(err, ErrCompositionUnderflow), "%v: %v", w, err)
	}
}

func TestUniformSeed(Te *testing.T) {
	a, b := NewUniform(42), NewUniform(42)
	for i := 0; i < 10; i++ {
		x := a.Rand()
		assert.Equal(Te, x, b.Rand())
		assert.True(Te, x >= 0 && x < 100)
	}
}

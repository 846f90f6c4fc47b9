/*
 * graph_test.go, part of assemble.
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

package chemgraph

import (
	"errors"
	"testing"

	"github.com/degiacom/assemble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// two residues of three atoms: 0-1-2 and 3-4-5
func chain(Te *testing.T, junction bool) *Topology {
	T := New()
	for i := 0; i < 6; i++ {
		_, err := T.AddAtom(i, "C", i/3)
		require.NoError(Te, err)
	}
	require.NoError(Te, T.AddBond(0, 1, 1.5))
	require.NoError(Te, T.AddBond(1, 2, 1.5))
	require.NoError(Te, T.AddBond(3, 4, 1.5))
	require.NoError(Te, T.AddBond(4, 5, 1.0))
	require.NoError(Te, T.AddBond(3, 5, 3.0))
	if junction {
		require.NoError(Te, T.AddBond(2, 3, 1.5))
	}
	return T
}

func TestComponents(Te *testing.T) {
	T := chain(Te, false)
	assert.Equal(Te, [][]int{{0, 1, 2}, {3, 4, 5}}, T.Components())
	err := T.Check(2)
	assert.True(Te, errors.Is(err, assemble.ErrInconsistentTopology), "got %v", err)

	T = chain(Te, true)
	assert.Len(Te, T.Components(), 1)
	assert.NoError(Te, T.Check(2))
	assert.Error(Te, T.Check(3), "residue 2 has no atoms")
	assert.Equal(Te, 6, T.Len())
	assert.Equal(Te, 6, T.NBonds())
}

func TestAddErrors(Te *testing.T) {
	T := chain(Te, true)
	_, err := T.AddAtom(2, "C", 0)
	assert.Error(Te, err)
	assert.Error(Te, T.AddBond(1, 1, 1))
	assert.Error(Te, T.AddBond(1, 9, 1))
	assert.Error(Te, New().Check(1))
}

func TestShortestPath(Te *testing.T) {
	T := chain(Te, true)
	p, w := T.ShortestPath(0, 5)
	assert.Equal(Te, []int{0, 1, 2, 3, 4, 5}, p)
	assert.InDelta(Te, 7.0, w, 1e-12)
	T = chain(Te, false)
	p, _ = T.ShortestPath(0, 5)
	assert.Nil(Te, p)
}

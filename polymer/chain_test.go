/*
 * chain_test.go, part of assemble.
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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/degiacom/assemble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainWriters(Te *testing.T) {
	L, F := fixtures(Te)
	C, err := NewBuilder(L, F, DefaultOptions()).Build("PE2", "EE")
	require.NoError(Te, err)

	var buf bytes.Buffer
	require.NoError(Te, C.WritePDB(&buf))
	assert.True(Te, strings.HasPrefix(buf.String(), "REMARK sequence: EE\n"))
	back, err := assemble.PDBRead(&buf)
	require.NoError(Te, err)
	require.Equal(Te, C.Mol.Len(), back.Len())
	for i := 0; i < back.Len(); i++ {
		assert.Equal(Te, C.Mol.Atom(i).Name, back.Atom(i).Name)
		assert.Equal(Te, C.Mol.Atom(i).MolID, back.Atom(i).MolID)
		a, b := C.Mol.Coords.Vec(i), back.Coords.Vec(i)
		for k := 0; k < 3; k++ {
			assert.InDelta(Te, a[k], b[k], 1e-3)
		}
	}

	buf.Reset()
	require.NoError(Te, C.WriteGro(&buf))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(Te, lines, 15)
	assert.Equal(Te, "EE", lines[0])
	assert.Equal(Te, "12", lines[1])
	assert.Equal(Te, "ETH", strings.TrimSpace(lines[2][5:10]))
	assert.Equal(Te, "2", strings.TrimSpace(lines[13][:5]))

	M, err := C.Topology()
	require.NoError(Te, err)
	assert.Len(Te, M.Atoms, 12)
	types := make([]string, 0, 12)
	for _, a := range M.Atoms {
		types = append(types, a.Type)
	}
	assert.Equal(Te, []string{"CT3", "CT", "HC", "HC", "HC", "HC", "CT", "CT3", "HC", "HC", "HC", "HC"}, types)
	assert.Len(Te, M.Bonds, 11)
	assert.Len(Te, M.Angles, 18)
	assert.Len(Te, M.Dihedrals, 5)
	assert.Empty(Te, M.Impropers)
	var junction bool
	for _, b := range M.Bonds {
		if b.IDs[0] == 1 && b.IDs[1] == 6 {
			junction = true
			assert.Equal(Te, []float64{0.154, 224262.4}, b.Params)
			assert.Equal(Te, 1, b.FuncType)
		}
	}
	assert.True(Te, junction, "the junction bond must be in the topology")

	buf.Reset()
	require.NoError(Te, C.WriteITP(&buf))
	assert.Contains(Te, buf.String(), "sequence: EE")

	m, err := C.Mass()
	require.NoError(Te, err)
	assert.InDelta(Te, 4*12.011+8*1.008, m, 1e-9)
}

func TestRandomSequence(Te *testing.T) {
	u := assemble.NewUniform(7)
	seq, got, err := RandomSequence(1000, []Share{{"E", 70}, {"P", 30}}, u)
	require.NoError(Te, err)
	assert.Len(Te, seq, 1000)
	assert.InDelta(Te, 100, got[0]+got[1], 1e-9)
	assert.InDelta(Te, float64(strings.Count(seq, "E"))/10, got[0], 1e-9)
	assert.InDelta(Te, 70, got[0], 10)

	seq, got, err = RandomSequence(5, []Share{{"E", 1}}, u)
	require.NoError(Te, err)
	assert.Equal(Te, "EEEEE", seq)
	assert.Equal(Te, []float64{100}, got)

	_, _, err = RandomSequence(0, []Share{{"E", 1}}, u)
	assert.True(Te, errors.Is(err, assemble.ErrCompositionUnderflow))
	_, _, err = RandomSequence(5, nil, u)
	assert.True(Te, errors.Is(err, assemble.ErrCompositionUnderflow))
}

/*
 * ff_test.go, part of assemble.
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

package ff

import (
	"errors"
	"strings"
	"testing"

	"github.com/degiacom/assemble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFF = `; a reduced united-atom force field
[ bondedtypes ]
; bonds angles dihedrals impropers
1 1 1 2
b1   0.154  250000
b2   0.109  300000
a1   114.0  519.6
a3   112.0  519.6
d1   180.0  5.92 3
d3   60.0   5.92 3

[ atomtypes ]
;name  at.num  mass     charge  ptype  sigma    epsilon
CT     6       14.027   0.000   A      0.395    0.382
CT3    6       15.035   -0.100  A      0.375    0.815
HC     1       1.008    0.050   A      0.0      0.0

[ defaults ]
; nbfunc comb-rule gen-pairs fudgeLJ fudgeQQ
1 2 no 1.0 1.0
`

func TestParse(Te *testing.T) {
	F, err := Parse(strings.NewReader(testFF), "test")
	require.NoError(Te, err)
	assert.Equal(Te, FuncTypes{1, 1, 1, 2}, F.Types)
	assert.Equal(Te, 6, F.NBonded())
	assert.Equal(Te, []string{"1", "2", "no", "1.0", "1.0"}, F.Combination)

	b, err := F.Bond("b1")
	require.NoError(Te, err)
	assert.InDelta(Te, 1.54, b, 1e-12)
	a, err := F.Angle("a3")
	require.NoError(Te, err)
	assert.InDelta(Te, 112.0, a, 1e-12)
	d, err := F.Dihedral("d3")
	require.NoError(Te, err)
	assert.InDelta(Te, 60.0, d, 1e-12)

	r, ok := F.Record("d1")
	require.True(Te, ok)
	assert.Equal(Te, []float64{180, 5.92, 3}, r)
	r[0] = 0
	r, _ = F.Record("d1")
	assert.Equal(Te, 180.0, r[0], "Record must return a copy")

	at, ok := F.AtomType("CT3")
	require.True(Te, ok)
	assert.InDelta(Te, 15.035, at.Mass, 1e-12)
	assert.InDelta(Te, -0.1, at.Charge, 1e-12)
	types := F.AtomTypes()
	require.Len(Te, types, 3)
	assert.Equal(Te, "HC", types[2].Name)
	assert.Len(Te, types[0].Fields, 7)
}

func TestDefaults(Te *testing.T) {
	//tabulated bonds, restricted bending angles, Ryckaert-Bellemans dihedrals
	s := strings.Replace(testFF, "1 1 1 2", "8 10 3 2", 1)
	F, err := Parse(strings.NewReader(s), "tabulated")
	require.NoError(Te, err)
	b, _ := F.Bond("b1")
	a, _ := F.Angle("a1")
	d, _ := F.Dihedral("d1")
	assert.Equal(Te, DefaultBond, b)
	assert.Equal(Te, DefaultAngle, a)
	assert.Equal(Te, DefaultDihedral, d)
	F.SetDefaults(1.4, 109.5, 180)
	b, _ = F.Bond("b1")
	d, _ = F.Dihedral("d1")
	assert.Equal(Te, 1.4, b)
	assert.Equal(Te, 180.0, d)
}

func TestUnknownType(Te *testing.T) {
	F, err := Parse(strings.NewReader(testFF), "test")
	require.NoError(Te, err)
	_, err = F.Bond("b99")
	assert.True(Te, errors.Is(err, assemble.ErrUnknownBondedType))
	_, err = F.Angle("b99")
	assert.True(Te, errors.Is(err, assemble.ErrUnknownBondedType))
	_, err = F.Dihedral("b99")
	assert.True(Te, errors.Is(err, assemble.ErrUnknownBondedType))
}

func TestParseErrors(Te *testing.T) {
	cases := map[string]string{
		"no functional types": strings.Replace(testFF, "1 1 1 2", "", 1),
		"no bonded":           testFF[:strings.Index(testFF, "b1")] + testFF[strings.Index(testFF, "[ atomtypes ]"):],
		"no atom types":       testFF[:strings.Index(testFF, "CT ")] + testFF[strings.Index(testFF, "[ defaults ]"):],
		"no combination":      testFF[:strings.Index(testFF, "[ defaults ]")],
		"bad value":           strings.Replace(testFF, "0.154", "zero", 1),
		"bad mass":            strings.Replace(testFF, "14.027", "heavy", 1),
	}
	for name, s := range cases {
		_, err := Parse(strings.NewReader(s), name)
		assert.True(Te, errors.Is(err, assemble.ErrMalformedForceField), "%s: got %v", name, err)
	}
}

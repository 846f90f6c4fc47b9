/*
 * builder_test.go, part of assemble.
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
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/degiacom/assemble"
	"github.com/degiacom/assemble/ff"
	"github.com/degiacom/assemble/library"
	"github.com/degiacom/assemble/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdir = "../test"

func fixtures(Te *testing.T) (*library.Library, *ff.FF) {
	L, err := library.LoadFile(filepath.Join(testdir, "database.txt"))
	require.NoError(Te, err)
	F, err := ff.ReadFile(filepath.Join(testdir, "forcefield.txt"))
	require.NoError(Te, err)
	return L, F
}

// at returns the position of the atom name of the jth residue of C.
func at(C *Chain, j int, name string) assemble.Vec3 {
	r := C.Residues[j]
	k := r.Monomer.Mol.IndexOf(name)
	if k < 0 {
		panic("no atom " + name)
	}
	return C.Mol.Coords.Vec(r.Start + k)
}

func TestJunctionGeometry(Te *testing.T) {
	L, F := fixtures(Te)
	B := NewBuilder(L, F, Options{ClashThreshold: 0, GridStep: 5})
	for _, seq := range []string{"EE", "EP", "PE"} {
		C, err := B.Build(seq, seq)
		require.NoError(Te, err, seq)
		assert.Equal(Te, Done, B.State())
		require.Len(Te, C.Diag.Junctions, 1)
		J := C.Diag.Junctions[0]
		assert.Equal(Te, 0, J.Trial)
		assert.Equal(Te, "cc", J.BondType)

		//tail side
		assert.InDelta(Te, 1.54, assemble.Distance(at(C, 0, "C2"), at(C, 1, "C1")), 1e-6, seq)
		assert.InDelta(Te, 109.47, assemble.AngleAt(at(C, 0, "C1"), at(C, 0, "C2"), at(C, 1, "C1"))*assemble.Rad2Deg, 1e-6, seq)
		assert.InDelta(Te, 60.0, assemble.Dihedral(at(C, 0, "H11"), at(C, 0, "C1"), at(C, 0, "C2"), at(C, 1, "C1"))*assemble.Rad2Deg, 1e-6, seq)
		//head side
		assert.InDelta(Te, 109.47, assemble.AngleAt(at(C, 0, "C2"), at(C, 1, "C1"), at(C, 1, "C2"))*assemble.Rad2Deg, 1e-6, seq)
		outer := "H22"
		if seq[1] == 'P' {
			outer = "C3"
		}
		assert.InDelta(Te, 60.0, assemble.Dihedral(at(C, 0, "C2"), at(C, 1, "C1"), at(C, 1, "C2"), at(C, 1, outer))*assemble.Rad2Deg, 1e-6, seq)
	}
}

func TestZeroPerturbation(Te *testing.T) {
	L, F := fixtures(Te)
	B := NewBuilder(L, F, DefaultOptions())
	C, err := B.Build("dimer", "EE")
	require.NoError(Te, err)
	J := C.Diag.Junctions[0]
	assert.Equal(Te, 0, J.Trial)
	assert.Equal(Te, [2]float64{0, 0}, J.Offsets)
	assert.False(Te, J.Clashed)
	assert.GreaterOrEqual(Te, J.MinDist, 0.9)
	assert.Empty(Te, C.Diag.Warnings)
}

func TestClashExhaustion(Te *testing.T) {
	L, F := fixtures(Te)
	//the junction bond itself is shorter than the threshold, so every trial clashes.
	B := NewBuilder(L, F, Options{ClashThreshold: 2.0, GridStep: 90})
	C, err := B.Build("clashing", "EE")
	require.NoError(Te, err)
	J := C.Diag.Junctions[0]
	assert.True(Te, J.Clashed)
	assert.Equal(Te, 6, J.Trial)
	assert.Equal(Te, 1, C.Diag.Unresolved())
	assert.Len(Te, C.Diag.Warnings, 1)
	assert.InDelta(Te, 1.54, assemble.Distance(at(C, 0, "C2"), at(C, 1, "C1")), 1e-6)
}

func TestLongChain(Te *testing.T) {
	L, F := fixtures(Te)
	B := NewBuilder(L, F, DefaultOptions())
	C, err := B.Build("pe", "EEEEEEEE")
	require.NoError(Te, err)
	assert.Equal(Te, 8, C.Len())
	assert.Equal(Te, 48, C.Mol.Len())
	assert.Len(Te, C.Diag.Junctions, 7)
	for _, J := range C.Diag.Junctions {
		if !J.Clashed {
			assert.GreaterOrEqual(Te, J.MinDist, 0.9, J.String())
		}
	}
	assert.Equal(Te, 48, C.Graph.Len())
	assert.Equal(Te, 47, C.Graph.NBonds())
	assert.InDelta(Te, 8*0.889*math.Sqrt(3)+7*1.54, C.Diag.ContourLength, 1e-3)
	for i, a := range C.Mol.Atoms {
		assert.Equal(Te, i+1, a.ID)
		assert.Equal(Te, i/6+1, a.MolID)
	}

	//centered, with the principal axes along x, y and z
	c := assemble.Centroid(C.Mol.Coords)
	for k := 0; k < 3; k++ {
		assert.InDelta(Te, 0, c[k], 1e-9)
	}
	I := assemble.MomentTensor(C.Mol.Coords)
	assert.InDelta(Te, 0, I.At(0, 1), 1e-6)
	assert.InDelta(Te, 0, I.At(0, 2), 1e-6)
	assert.InDelta(Te, 0, I.At(1, 2), 1e-6)
	assert.LessOrEqual(Te, I.At(0, 0), I.At(1, 1))
	assert.LessOrEqual(Te, I.At(1, 1), I.At(2, 2))

	//aligning again changes nothing but, at most, axis signs.
	again := C.Mol.Copy()
	require.NoError(Te, assemble.AlignPrincipalAxes(again.Coords))
	for i := 0; i < again.Len(); i++ {
		a, b := again.Coords.Vec(i), C.Mol.Coords.Vec(i)
		for k := 0; k < 3; k++ {
			assert.InDelta(Te, math.Abs(b[k]), math.Abs(a[k]), 1e-6)
		}
	}
}

func TestSingleMonomer(Te *testing.T) {
	L, F := fixtures(Te)
	B := NewBuilder(L, F, DefaultOptions())
	C, err := B.Build("one", "E")
	require.NoError(Te, err)
	assert.Equal(Te, 6, C.Mol.Len())
	assert.Empty(Te, C.Diag.Junctions)
	M, err := C.Topology()
	require.NoError(Te, err)
	assert.Len(Te, M.Bonds, 5)
	assert.Equal(Te, "CT3", M.Atoms[0].Type)
	assert.Equal(Te, "CT3", M.Atoms[1].Type)
}

func TestStates(Te *testing.T) {
	L, F := fixtures(Te)
	B := NewBuilder(L, F, DefaultOptions())
	assert.Equal(Te, Empty, B.State())
	_, err := B.Step()
	assert.Error(Te, err)
	_, err = B.Finish()
	assert.Error(Te, err)

	require.NoError(Te, B.Start("three", "EPE"))
	assert.Equal(Te, Building, B.State())
	assert.Error(Te, B.Start("again", "E"))
	_, err = B.Finish()
	assert.Error(Te, err, "residues left to place")
	more, err := B.Step()
	require.NoError(Te, err)
	assert.True(Te, more)
	more, err = B.Step()
	require.NoError(Te, err)
	assert.False(Te, more)
	C, err := B.Finish()
	require.NoError(Te, err)
	assert.Equal(Te, "EPE", C.Sequence)
	assert.Equal(Te, Done, B.State())

	B.Reset()
	assert.Equal(Te, Empty, B.State())
	_, err = B.Build("x", "")
	assert.True(Te, errors.Is(err, assemble.ErrMissingMonomer))
	assert.Equal(Te, Failed, B.State())
	_, err = B.Build("x", "EZ")
	assert.True(Te, errors.Is(err, assemble.ErrMissingMonomer))
	assert.Error(Te, B.Err())
}

func TestMalformedBeforePlacement(Te *testing.T) {
	L, F := fixtures(Te)
	E, err := L.Get("E")
	require.NoError(Te, err)
	bad := E.Top.Copy()
	bad.Tail = ""
	L.Put(&library.Monomer{Code: "X", Mol: E.Mol, Top: bad})
	before := E.Mol.Copy()

	B := NewBuilder(L, F, DefaultOptions())
	_, err = B.Build("bad", "EXE")
	assert.True(Te, errors.Is(err, assemble.ErrMalformedTemplate), "got %v", err)
	assert.Equal(Te, Failed, B.State())
	assert.Equal(Te, before.Coords.RawMatrix().Data, E.Mol.Coords.RawMatrix().Data)
	assert.Equal(Te, "C2", E.Top.Tail, "the library template must not change")
}

func TestSuperpositionFails(Te *testing.T) {
	L, F := fixtures(Te)
	orig := superpose
	defer func() { superpose = orig }()
	superpose = func(test, templa *v3.Matrix) (*v3.Matrix, assemble.Vec3, assemble.Vec3, error) {
		return nil, assemble.Vec3{}, assemble.Vec3{}, assemble.NewError(assemble.KindUnknown, "SVD factorization failed in superposition")
	}
	B := NewBuilder(L, F, DefaultOptions())
	_, err := B.Build("dimer", "EE")
	require.Error(Te, err)
	assert.Contains(Te, err.Error(), "SVD")
	assert.Contains(Te, err.Error(), "dimer")
	assert.Equal(Te, Failed, B.State())
	assert.Equal(Te, err, B.Err())
	_, err = B.Step()
	assert.Error(Te, err)

	superpose = orig
	_, err = B.Build("dimer", "EE")
	require.NoError(Te, err)
	assert.Equal(Te, Done, B.State())
}

func TestUnknownType(Te *testing.T) {
	L, _ := fixtures(Te)
	data, err := os.ReadFile(filepath.Join(testdir, "forcefield.txt"))
	require.NoError(Te, err)
	s := strings.Replace(string(data), "cccg ", "xxxx ", 1)
	F, err := ff.Parse(strings.NewReader(s), "broken")
	require.NoError(Te, err)
	B := NewBuilder(L, F, DefaultOptions())
	_, err = B.Build("pp", "EP")
	assert.True(Te, errors.Is(err, assemble.ErrUnknownBondedType), "got %v", err)
	assert.Contains(Te, err.Error(), "E-P")
	_, err = B.Build("pe", "PE")
	assert.NoError(Te, err, "cccg is only used on the head of P")
}

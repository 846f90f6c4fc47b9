/*
 * library_test.go, part of assemble.
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

package library

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/degiacom/assemble"
	"github.com/degiacom/assemble/top"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdir = "../test"

func TestLoadFile(Te *testing.T) {
	L, err := LoadFile(filepath.Join(testdir, "database.txt"))
	require.NoError(Te, err)
	assert.Equal(Te, []string{"E", "P"}, L.Codes())
	assert.Empty(Te, L.Warnings)

	E, err := L.Get("E")
	require.NoError(Te, err)
	assert.Equal(Te, 6, E.Mol.Len())
	assert.Equal(Te, "C1", E.Mol.Atom(E.Head()).Name)
	assert.Equal(Te, "C2", E.Mol.Atom(E.Tail()).Name)
	assert.Equal(Te, "ETH", E.Mol.Atom(0).MolName)

	_, err = L.Get("X")
	assert.True(Te, errors.Is(err, assemble.ErrMissingMonomer))
}

func TestAddRemoveSave(Te *testing.T) {
	L := New()
	require.NoError(Te, L.Add("E", filepath.Join(testdir, "ethylene.pdb"), filepath.Join(testdir, "ethylene.top")))
	require.NoError(Te, L.Add("E", filepath.Join(testdir, "ethylene.pdb"), filepath.Join(testdir, "ethylene.top")))
	assert.Len(Te, L.Warnings, 1, "overwriting a monomer must warn")
	assert.Equal(Te, 1, L.Len())

	var buf bytes.Buffer
	require.NoError(Te, L.Save(&buf))
	assert.Equal(Te, "E ../test/ethylene.pdb ../test/ethylene.top\n", buf.String())

	require.NoError(Te, L.Remove("E"))
	assert.True(Te, errors.Is(L.Remove("E"), assemble.ErrMissingMonomer))
	assert.Equal(Te, 0, L.Len())
}

func TestLoadErrors(Te *testing.T) {
	cases := map[string]string{
		"long code":     "EE ethylene.pdb ethylene.top\n",
		"no topology":   "E ethylene.pdb\n",
		"missing files": "E nothere.pdb ethylene.top\n",
	}
	for name, s := range cases {
		_, err := Load(strings.NewReader(s), name, testdir)
		assert.Error(Te, err, name)
	}
	L, err := Load(strings.NewReader("# comment\n\nE ethylene.pdb ethylene.top\nE ethylene.pdb ethylene.top\n"), "dup", testdir)
	require.NoError(Te, err)
	assert.Len(Te, L.Warnings, 1)
}

func TestCrossCheck(Te *testing.T) {
	mol, err := assemble.PDBFileRead(filepath.Join(testdir, "ethylene.pdb"))
	require.NoError(Te, err)
	tpl, err := top.ReadFile(filepath.Join(testdir, "propylene.top"))
	require.NoError(Te, err)
	//propylene has C3 and lacks H22
	_, err = NewMonomer("E", mol, tpl)
	assert.True(Te, errors.Is(err, assemble.ErrMalformedTemplate), "got %v", err)

	etpl, err := top.ReadFile(filepath.Join(testdir, "ethylene.top"))
	require.NoError(Te, err)
	_, err = NewMonomer("EE", mol, etpl)
	assert.Error(Te, err)
	M, err := NewMonomer("E", mol, etpl)
	require.NoError(Te, err)
	assert.Equal(Te, 0, M.Head())
	assert.Equal(Te, 1, M.Tail())
}

func TestBondWarnings(Te *testing.T) {
	mol, err := assemble.PDBFileRead(filepath.Join(testdir, "ethylene.pdb"))
	require.NoError(Te, err)
	assert.Equal(Te, "C", mol.Atom(0).Symbol)
	tpl, err := top.ReadFile(filepath.Join(testdir, "ethylene.top"))
	require.NoError(Te, err)
	mol.Coords.SetVec(2, assemble.Vec3{3, 0, 0}) //H11 away from C1
	M, err := NewMonomer("E", mol, tpl)
	require.NoError(Te, err)
	require.Len(Te, M.Warnings, 1)
	assert.Contains(Te, M.Warnings[0], "C1-H11")
	L := New()
	L.Put(M)
	assert.Equal(Te, M.Warnings, L.Warnings)
}

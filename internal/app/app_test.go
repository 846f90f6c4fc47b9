/*
 * app_test.go, part of assemble.
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

package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/degiacom/assemble"
	"github.com/degiacom/assemble/config"
	"github.com/degiacom/assemble/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
)

func testConfig(Te *testing.T) *config.Config {
	C := config.Default()
	C.ForceField = "../../test/forcefield.txt"
	C.Database = "../../test/database.txt"
	C.Molecules = []config.Molecule{
		{Name: "A", Chain: "EP"},
		{Name: "B", Length: 4, Composition: []config.Share{{Code: "E", Percent: 100}}},
		{Name: "C", Chain: "EXE"},
	}
	C.Concentration = []config.Concentration{{Name: "A", Percent: 60}, {Name: "B", Percent: 40}}
	C.BoxGridShape = []int{2, 2, 2}
	C.Trials = 10
	C.Seed = 5
	C.Workers = 2
	C.OutputFolder = Te.TempDir()
	require.NoError(Te, C.Validate())
	return C
}

func TestRun(Te *testing.T) {
	C := testConfig(Te)
	core, logs := observer.New(zapcore.InfoLevel)
	R, err := New(C, logging.NewLoggerFromCore(core)).Run(context.Background())
	//C is the only failure, and it does not take part in the system.
	require.NoError(Te, err)
	require.Len(Te, R.Chains, 3)
	assert.Equal(Te, "EEEE", R.Chains[1].Sequence)
	assert.Equal(Te, []float64{100}, R.Chains[1].Realized)
	assert.True(Te, errors.Is(R.Chains[2].Err, assemble.ErrMissingMonomer))
	assert.Equal(Te, 1, R.Failed())
	assert.Len(Te, R.Built(), 2)
	require.NotNil(Te, R.System)
	c := R.System.Assignment.Count()
	assert.Equal(Te, 8, c[0]+c[1])
	assert.Equal(Te, 1, logs.FilterMessage("could not build chain").Len())

	folder := filepath.Join(C.OutputFolder, "system")
	assert.Equal(Te, folder, R.Folder)
	for _, f := range []string{"A.pdb", "A.gro", "A.itp", "B.pdb", "B.gro", "B.itp",
		"system.gro", "system.top", "system.ndx", "system_trials.png", "system_composition.png",
		"system_monomers.png", "manifest.yaml"} {
		assert.FileExists(Te, filepath.Join(folder, f))
		assert.Contains(Te, R.Outputs, f)
	}
	assert.NoFileExists(Te, filepath.Join(folder, "C.pdb"))

	b, err := os.ReadFile(filepath.Join(folder, "A.pdb"))
	require.NoError(Te, err)
	assert.Contains(Te, string(b), "sequence: EP")
	assert.Contains(Te, string(b), R.RunID)

	b, err = os.ReadFile(filepath.Join(folder, "manifest.yaml"))
	require.NoError(Te, err)
	var M Manifest
	require.NoError(Te, yaml.Unmarshal(b, &M))
	assert.Equal(Te, R.RunID, M.RunID)
	assert.Equal(Te, uint64(5), M.Seed)
	require.Len(Te, M.Chains, 3)
	assert.Equal(Te, "EP", M.Chains[0].Sequence)
	assert.Equal(Te, 12, M.Chains[0].Atoms)
	assert.Equal(Te, map[string]float64{"E": 100}, M.Chains[1].Realized)
	assert.NotEmpty(Te, M.Chains[2].Error)
	require.NotNil(Te, M.System)
	assert.Equal(Te, [3]int{2, 2, 2}, M.System.Shape)
	assert.InDelta(Te, 100, M.System.Monomers["E"]+M.System.Monomers["P"], 1e-9)
	assert.Contains(Te, M.Outputs, "manifest.yaml")
}

func TestRunNoSystem(Te *testing.T) {
	C := testConfig(Te)
	C.BoxGridShape = nil
	C.Compress = true
	C.Plot = false
	R, err := New(C, logging.NewNop()).Run(context.Background())
	require.NoError(Te, err)
	assert.Nil(Te, R.System)
	folder := R.Folder
	assert.FileExists(Te, filepath.Join(folder, "A.pdb.zst"))
	assert.FileExists(Te, filepath.Join(folder, "A.itp"))
	assert.NoFileExists(Te, filepath.Join(folder, "system.gro.zst"))

	//compressed outputs read back
	M, err := assemble.PDBFileRead(filepath.Join(folder, "A.pdb.zst"))
	require.NoError(Te, err)
	assert.Equal(Te, R.Chains[0].Chain.Mol.Len(), M.Len())
}

func TestRunPackingFails(Te *testing.T) {
	C := testConfig(Te)
	C.Concentration = []config.Concentration{{Name: "A", Percent: 50}, {Name: "C", Percent: 50}}
	R, err := New(C, logging.NewNop()).Run(context.Background())
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, assemble.ErrUnknownPolymer))
	require.NotNil(Te, R)
	assert.Nil(Te, R.System)
	assert.FileExists(Te, filepath.Join(R.Folder, "A.itp"))
	assert.FileExists(Te, filepath.Join(R.Folder, "manifest.yaml"))
}

func TestLogger(Te *testing.T) {
	C := testConfig(Te)
	C.Log.OutputPaths = []string{filepath.Join(Te.TempDir(), "other.log")}
	L, err := Logger(C)
	require.NoError(Te, err)
	L.Info("hello")
	require.NoError(Te, L.Sync())
	b, err := os.ReadFile(filepath.Join(C.Folder(), "system.log"))
	require.NoError(Te, err)
	assert.True(Te, strings.Contains(string(b), "hello"))
}

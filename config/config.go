/*
 * config.go, part of assemble.
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

// Package config reads the setup of an assemble run from a YAML file, with
// ASSEMBLE_ environment variables and command line flags taking
// precedence over the file.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/degiacom/assemble"
	"github.com/degiacom/assemble/internal/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ASSEMBLE"

// Residue adds a monomer to the library.
type Residue struct {
	Code     string `mapstructure:"code" yaml:"code"`
	PDB      string `mapstructure:"pdb" yaml:"pdb"`
	Topology string `mapstructure:"topology" yaml:"topology"`
}

// Share is the percentage of one monomer in a random chain.
type Share struct {
	Code    string  `mapstructure:"code" yaml:"code"`
	Percent float64 `mapstructure:"percent" yaml:"percent"`
}

// Molecule is a polymer to build, given either as a sequence of one-letter
// codes or as a length and a monomer composition.
type Molecule struct {
	Name        string  `mapstructure:"name" yaml:"name"`
	Chain       string  `mapstructure:"chain" yaml:"chain"`
	Length      int     `mapstructure:"length" yaml:"length"`
	Composition []Share `mapstructure:"composition" yaml:"composition"`
}

// Concentration is the target abundance of one polymer in the system.
type Concentration struct {
	Name    string  `mapstructure:"name" yaml:"name"`
	Percent float64 `mapstructure:"percent" yaml:"percent"`
}

// Config is the setup of a run.
type Config struct {
	ForceField        string          `mapstructure:"forcefield"`
	Database          string          `mapstructure:"database"`
	Residues          []Residue       `mapstructure:"residues"`
	Molecules         []Molecule      `mapstructure:"molecules"`
	Concentration     []Concentration `mapstructure:"concentration"`
	ConcentrationMode string          `mapstructure:"concentration_mode"`
	BoxGridShape      []int           `mapstructure:"box_grid_shape"`

	ClashThreshold  float64 `mapstructure:"clash_threshold"` //Å
	GridStep        float64 `mapstructure:"grid_step"`       //degrees
	DefaultBond     float64 `mapstructure:"default_bond"`    //Å
	DefaultAngle    float64 `mapstructure:"default_angle"`
	DefaultDihedral float64 `mapstructure:"default_dihedral"`
	Padding         float64 `mapstructure:"padding"` //Å
	Trials          int     `mapstructure:"trials"`
	Seed            uint64  `mapstructure:"seed"` //0 picks one at random
	Workers         int     `mapstructure:"workers"`

	SystemName   string            `mapstructure:"system_name"`
	OutputFolder string            `mapstructure:"output_folder"`
	Compress     bool              `mapstructure:"compress"`
	Plot         bool              `mapstructure:"plot"`
	Log          logging.LogConfig `mapstructure:"log"`

	//directory of the setup file, empty if there was none.
	Dir string `mapstructure:"-"`
}

// Defaults are the values of the keys a setup file does not give.
var Defaults = map[string]interface{}{
	"concentration_mode": "number",
	"clash_threshold":    0.9,
	"grid_step":          5.0,
	"default_bond":       1.5,
	"default_angle":      114.0,
	"default_dihedral":   120.0,
	"padding":            1.0,
	"trials":             100,
	"seed":               0,
	"workers":            1,
	"system_name":        "system",
	"output_folder":      ".",
	"compress":           false,
	"plot":               true,
	"log.level":          "info",
	"log.format":         "console",
}

// flag name -> key
var flagKeys = map[string]string{
	"output":    "output_folder",
	"seed":      "seed",
	"log-level": "log.level",
	"workers":   "workers",
	"trials":    "trials",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, d := range Defaults {
		v.SetDefault(k, d)
	}
	return v
}

// Load reads the setup file at path. The flags in fs (which can be nil)
// that were set on the command line take precedence over the environment,
// which takes precedence over the file. Relative paths in the file are
// taken from the directory of the file. The result is validated.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: binding flag %s: %w", name, err)
				}
			}
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	cfg.resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns a configuration with every default set and nothing to build.
func Default() *Config {
	cfg := &Config{}
	if err := newViper().Unmarshal(cfg); err != nil {
		panic(err.Error())
	}
	return cfg
}

func (C *Config) path(p string) string {
	if p == "" || filepath.IsAbs(p) || C.Dir == "" {
		return p
	}
	return filepath.Join(C.Dir, p)
}

func (C *Config) resolve() {
	C.ForceField = C.path(C.ForceField)
	C.Database = C.path(C.Database)
	for i := range C.Residues {
		C.Residues[i].PDB = C.path(C.Residues[i].PDB)
		C.Residues[i].Topology = C.path(C.Residues[i].Topology)
	}
}

// Shape returns the lattice shape. A missing shape is all zeros, which
// means that no system is packed.
func (C *Config) Shape() [3]int {
	var s [3]int
	copy(s[:], C.BoxGridShape)
	return s
}

// Packing returns true if a system is to be packed.
func (C *Config) Packing() bool {
	return C.Shape() != [3]int{}
}

// Folder is the directory where the outputs of the run are written.
func (C *Config) Folder() string {
	return filepath.Join(C.OutputFolder, C.SystemName)
}

func exists(name string) error {
	if _, err := os.Stat(name); err != nil {
		return fmt.Errorf("file %s: %w", name, err)
	}
	return nil
}

// Validate checks that the configuration describes a run that can be
// attempted.
func (C *Config) Validate() error {
	if C.ForceField == "" {
		return fmt.Errorf("no forcefield given")
	}
	if err := exists(C.ForceField); err != nil {
		return err
	}
	if C.Database != "" {
		if err := exists(C.Database); err != nil {
			return err
		}
	}
	if C.Database == "" && len(C.Residues) == 0 {
		return fmt.Errorf("no database and no residues given, the monomer library would be empty")
	}
	for _, r := range C.Residues {
		if len(r.Code) != 1 {
			return fmt.Errorf("residue code %q is not one character long", r.Code)
		}
		if r.PDB == "" || r.Topology == "" {
			return fmt.Errorf("residue %s needs both a pdb and a topology file", r.Code)
		}
	}
	if len(C.Molecules) == 0 {
		return fmt.Errorf("no molecules defined")
	}
	names := make(map[string]bool, len(C.Molecules))
	for _, m := range C.Molecules {
		if m.Name == "" {
			return fmt.Errorf("molecule without a name")
		}
		if names[m.Name] {
			return fmt.Errorf("molecule %s defined twice", m.Name)
		}
		names[m.Name] = true
		if err := m.validate(); err != nil {
			return err
		}
	}
	if C.ConcentrationMode != "number" && C.ConcentrationMode != "mass" {
		return fmt.Errorf("concentration_mode must be number or mass, not %q", C.ConcentrationMode)
	}
	if l := len(C.BoxGridShape); l != 0 && l != 3 {
		return assemble.NewError(assemble.InvalidLatticeSpec, "box_grid_shape needs 3 values, got %d", l)
	}
	if C.Packing() {
		for _, v := range C.BoxGridShape {
			if v <= 0 {
				return assemble.NewError(assemble.InvalidLatticeSpec, "box_grid_shape %v: all values must be positive, or all zero to skip the system", C.BoxGridShape)
			}
		}
		if len(C.Concentration) == 0 {
			return assemble.NewError(assemble.CompositionUnderflow, "a box_grid_shape is given but no concentration")
		}
		for _, c := range C.Concentration {
			if !names[c.Name] {
				return assemble.NewError(assemble.UnknownPolymer, "concentration given for %s, which is not a molecule", c.Name)
			}
			if c.Percent < 0 {
				return assemble.NewError(assemble.CompositionUnderflow, "negative concentration for %s", c.Name)
			}
		}
	}
	switch {
	case C.ClashThreshold < 0:
		return fmt.Errorf("clash_threshold must not be negative")
	case C.GridStep <= 0 || C.GridStep > 360:
		return fmt.Errorf("grid_step must be in (0, 360] degrees")
	case C.Padding < 0:
		return fmt.Errorf("padding must not be negative")
	case C.Trials < 1:
		return fmt.Errorf("trials must be at least 1")
	case C.SystemName == "":
		return fmt.Errorf("system_name must not be empty")
	}
	return nil
}

func (M *Molecule) validate() error {
	if M.Chain != "" {
		if M.Length != 0 || len(M.Composition) != 0 {
			return fmt.Errorf("molecule %s: give either a chain or a length and composition, not both", M.Name)
		}
		return nil
	}
	if M.Length <= 0 {
		return fmt.Errorf("molecule %s: no chain, and the length is not positive", M.Name)
	}
	if len(M.Composition) == 0 {
		return fmt.Errorf("molecule %s: no chain and no composition", M.Name)
	}
	var sum float64
	for _, s := range M.Composition {
		if len(s.Code) != 1 {
			return fmt.Errorf("molecule %s: monomer code %q is not one character long", M.Name, s.Code)
		}
		sum += s.Percent
	}
	if math.Abs(sum-100) > 1e-6 {
		return assemble.NewError(assemble.CompositionUnderflow, "molecule %s: composition adds up to %g, not 100", M.Name, sum)
	}
	return nil
}

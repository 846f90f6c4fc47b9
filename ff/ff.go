/*
 * ff.go, part of assemble.
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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/degiacom/assemble"
)

// Default equilibrium values, used when the functional form of a
// potential has no analytical minimum.
const (
	DefaultBond     = 1.5   //Å
	DefaultAngle    = 114.0 //degrees
	DefaultDihedral = 120.0 //degrees
)

// FuncTypes are the Gromacs functional types of the bonded potentials.
type FuncTypes struct {
	Bond     int
	Angle    int
	Dihedral int
	Improper int
}

// AtomType is a non-bonded atom type.
type AtomType struct {
	Name   string
	Mass   float64
	Charge float64
	Fields []string //all the fields in the force field line, name included
}

// FF is a table of bonded parameters indexed by type name, plus the
// non-bonded atom types and the combination rules.
// It is read-only once loaded, and can be shared between goroutines.
type FF struct {
	Name        string
	Types       FuncTypes
	Combination []string
	bonded      map[string][]float64
	bondedOrder []string
	atypes      map[string]*AtomType
	atypesOrder []string
	defaults    [3]float64
}

// SetDefaults sets the values returned for bonds, angles and dihedrals
// whose potentials have no analytical minimum.
func (F *FF) SetDefaults(bond, angle, dihedral float64) {
	F.defaults = [3]float64{bond, angle, dihedral}
}

func (F *FF) record(typ string) ([]float64, error) {
	r, ok := F.bonded[typ]
	if !ok || len(r) == 0 {
		return nil, assemble.NewError(assemble.UnknownBondedType, "bonded type %s not in force field %s", typ, F.Name)
	}
	return r, nil
}

// Bond returns the equilibrium length, in Å, for the bond type typ.
func (F *FF) Bond(typ string) (float64, error) {
	r, err := F.record(typ)
	if err != nil {
		return 0, err
	}
	if F.Types.Bond >= 1 && F.Types.Bond <= 7 {
		return r[0] * 10, nil //nm
	}
	return F.defaults[0], nil
}

// Angle returns the equilibrium value, in degrees, for the angle type typ.
func (F *FF) Angle(typ string) (float64, error) {
	r, err := F.record(typ)
	if err != nil {
		return 0, err
	}
	if F.Types.Angle >= 1 && F.Types.Angle <= 2 {
		return r[0], nil
	}
	return F.defaults[1], nil
}

// Dihedral returns the equilibrium value, in degrees, for the dihedral type typ.
func (F *FF) Dihedral(typ string) (float64, error) {
	r, err := F.record(typ)
	if err != nil {
		return 0, err
	}
	if F.Types.Dihedral >= 1 && F.Types.Dihedral <= 2 {
		return r[0], nil
	}
	return F.defaults[2], nil
}

// Record returns a copy of all the parameters of the bonded type typ.
func (F *FF) Record(typ string) ([]float64, bool) {
	r, ok := F.bonded[typ]
	return append([]float64(nil), r...), ok
}

// AtomType returns the non-bonded type name.
func (F *FF) AtomType(name string) (*AtomType, bool) {
	a, ok := F.atypes[name]
	return a, ok
}

// AtomTypes returns the non-bonded types in the order they were read.
func (F *FF) AtomTypes() []*AtomType {
	r := make([]*AtomType, 0, len(F.atypesOrder))
	for _, v := range F.atypesOrder {
		r = append(r, F.atypes[v])
	}
	return r
}

// NBonded returns the number of bonded types.
func (F *FF) NBonded() int {
	return len(F.bondedOrder)
}

//parsing

// sections of the force field file, in order.
const (
	seekBonded = iota
	funcTypes
	bonded
	nonBonded
	combination
	done
)

func skippable(f []string) bool {
	return len(f) == 0 || strings.Contains(f[0], ";") || strings.HasPrefix(f[0], "#") || strings.HasPrefix(f[0], "[")
}

func parsefloats(s ...string) ([]float64, error) {
	r := make([]float64, 0, len(s))
	for _, v := range s {
		i, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		r = append(r, i)
	}
	return r, nil
}

func parseints(s ...string) ([]int, error) {
	r := make([]int, 0, len(s))
	for _, v := range s {
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		r = append(r, i)
	}
	return r, nil
}

// Parse reads a force field from r. The file contains, in order, a line with
// the word bondedtypes followed by a line with the four functional types,
// the bonded types as "name value value...", then, after a line containing
// atomtypes, the non-bonded types as "name atnum mass charge ptype sigma epsilon",
// and finally, after a line containing defaults, the combination rules.
// name identifies the force field in error messages.
func Parse(r io.Reader, name string) (*FF, error) {
	F := &FF{
		Name:     name,
		bonded:   make(map[string][]float64),
		atypes:   make(map[string]*AtomType),
		defaults: [3]float64{DefaultBond, DefaultAngle, DefaultDihedral},
	}
	malformed := func(lineno int, format string, a ...interface{}) error {
		return assemble.NewError(assemble.MalformedForceField, "%s, line %d: %s", name, lineno, fmt.Sprintf(format, a...))
	}
	var gotTypes bool
	state := seekBonded
	s := bufio.NewScanner(r)
	lineno := 0
	for s.Scan() && state != done {
		lineno++
		line := s.Text()
		f := strings.Fields(line)
		switch state {
		case seekBonded:
			if strings.Contains(line, "bondedtypes") {
				state = funcTypes
			}
		case funcTypes:
			if skippable(f) || len(f) != 4 {
				continue
			}
			t, err := parseints(f...)
			if err != nil {
				return nil, malformed(lineno, "functional types: %v", err)
			}
			F.Types = FuncTypes{Bond: t[0], Angle: t[1], Dihedral: t[2], Improper: t[3]}
			gotTypes = true
			state = bonded
		case bonded:
			if strings.Contains(line, "atomtypes") {
				state = nonBonded
				continue
			}
			if skippable(f) {
				continue
			}
			v, err := parsefloats(f[1:]...)
			if err != nil {
				return nil, malformed(lineno, "bonded type %s: %v", f[0], err)
			}
			if _, ok := F.bonded[f[0]]; !ok {
				F.bondedOrder = append(F.bondedOrder, f[0])
			}
			F.bonded[f[0]] = v
		case nonBonded:
			if strings.Contains(line, "defaults") {
				state = combination
				continue
			}
			if skippable(f) {
				continue
			}
			if len(f) < 4 {
				return nil, malformed(lineno, "atom type %s needs at least atomic number, mass and charge", f[0])
			}
			v, err := parsefloats(f[2:4]...)
			if err != nil {
				return nil, malformed(lineno, "atom type %s: %v", f[0], err)
			}
			if _, ok := F.atypes[f[0]]; !ok {
				F.atypesOrder = append(F.atypesOrder, f[0])
			}
			F.atypes[f[0]] = &AtomType{Name: f[0], Mass: v[0], Charge: v[1], Fields: f}
		case combination:
			if skippable(f) {
				continue
			}
			F.Combination = f
			state = done
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	switch {
	case !gotTypes:
		return nil, assemble.NewError(assemble.MalformedForceField, "bond types not found in force field %s", name)
	case len(F.bonded) == 0:
		return nil, assemble.NewError(assemble.MalformedForceField, "bonded parameters not found in force field %s", name)
	case len(F.atypes) == 0:
		return nil, assemble.NewError(assemble.MalformedForceField, "non-bonded parameters not found in force field %s", name)
	case len(F.Combination) == 0:
		return nil, assemble.NewError(assemble.MalformedForceField, "combination rules not found in force field %s", name)
	}
	return F, nil
}

// ReadFile reads the force field in the file name, which may be zstd-compressed.
func ReadFile(name string) (*FF, error) {
	f, err := assemble.OpenRead(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, name)
}

/*
 * elements.go, part of assemble.
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
	"strings"
	"unicode"
)

// Covalent radii in Å. Only the elements common in polymers are present.
var covalentRadius = map[string]float64{
	"H":  0.4, //longer than the real 0.31, H has only one bond anyway
	"C":  0.76,
	"N":  0.71,
	"O":  0.66,
	"F":  0.57,
	"Si": 1.11,
	"P":  1.07,
	"S":  1.05,
	"Cl": 1.02,
	"Br": 1.20,
	"I":  1.39,
}

// Limits for two atoms to be considered bonded, in Å.
const (
	tooClose = 0.63
	bondTol  = 0.45 //added to the sum of the covalent radii
)

// twoLetter are the two-letter elements recognized from atom names.
var twoLetter = map[string]bool{"Cl": true, "Br": true, "Si": true}

// SymbolFromName guesses the element from an atom name such as "C12",
// "HA" or "CL1". Names starting with a digit ("1HB") skip it. An empty
// string is returned if no letter is found.
func SymbolFromName(name string) string {
	name = strings.TrimLeftFunc(name, unicode.IsDigit)
	if name == "" || !unicode.IsLetter(rune(name[0])) {
		return ""
	}
	if len(name) > 1 {
		two := strings.ToUpper(name[:1]) + strings.ToLower(name[1:2])
		if twoLetter[two] {
			return two
		}
	}
	return strings.ToUpper(name[:1])
}

// CovalentRadius returns the covalent radius of the element, and false if
// it is not known.
func CovalentRadius(symbol string) (float64, bool) {
	r, ok := covalentRadius[symbol]
	return r, ok
}

// CheckBond returns an error if the atoms i and j of mol are too close or
// too far apart to be covalently bonded. Atoms of unknown elements are not
// checked.
func CheckBond(mol *Molecule, i, j int) error {
	a, b := mol.Atom(i), mol.Atom(j)
	ra, oka := CovalentRadius(a.Symbol)
	rb, okb := CovalentRadius(b.Symbol)
	if !oka || !okb {
		return nil
	}
	d := Distance(mol.Coords.Vec(i), mol.Coords.Vec(j))
	if d < tooClose || d > ra+rb+bondTol {
		return NewError(MalformedTemplate, "bond %s-%s is %.3f Å long, expected %.2f-%.2f", a.Name, b.Name, d, tooClose, ra+rb+bondTol)
	}
	return nil
}

/*
 * library.go, part of assemble.
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
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/degiacom/assemble"
	"github.com/degiacom/assemble/top"
)

// Monomer is a residue blueprint: its coordinates and its connectivity.
// Blueprints are never modified. The chain builder copies them.
type Monomer struct {
	Code     string
	Mol      *assemble.Molecule
	Top      *top.Template
	PDBFile  string
	TopFile  string
	//bonds of the template whose length in the structure looks wrong
	Warnings []string
	head     int
	tail     int
}

// NewMonomer joins the structure mol and the template tpl under the one-letter
// code. Every atom in the structure must be in the template's mapping and
// vice versa.
func NewMonomer(code string, mol *assemble.Molecule, tpl *top.Template) (*Monomer, error) {
	if len(code) != 1 {
		return nil, assemble.NewError(assemble.MalformedFile, "found %q identifier, one letter code expected", code)
	}
	if err := mol.Corrupted(); err != nil {
		return nil, err
	}
	if err := mol.CheckUniqueNames(); err != nil {
		return nil, err
	}
	for _, v := range tpl.Atoms() {
		if mol.IndexOf(v) < 0 {
			return nil, assemble.NewError(assemble.MalformedTemplate, "atom %s found in topology %s but not in coordinates", v, tpl.Name)
		}
	}
	for _, v := range mol.Names() {
		if !tpl.HasAtom(v) {
			return nil, assemble.NewError(assemble.MalformedTemplate, "atom %s found in coordinates but not in topology %s", v, tpl.Name)
		}
	}
	M := &Monomer{Code: code, Mol: mol, Top: tpl, head: mol.IndexOf(tpl.Head), tail: mol.IndexOf(tpl.Tail)}
	for _, b := range tpl.Bonds {
		if len(b.Atoms) != 2 || b.Atoms[0].Dir != top.Local || b.Atoms[1].Dir != top.Local {
			continue
		}
		if err := assemble.CheckBond(mol, mol.IndexOf(b.Atoms[0].Name), mol.IndexOf(b.Atoms[1].Name)); err != nil {
			M.Warnings = append(M.Warnings, fmt.Sprintf("monomer %s: %v", code, err))
		}
	}
	return M, nil
}

// Head returns the index of the head atom in the monomer's structure.
func (M *Monomer) Head() int { return M.head }

// Tail returns the index of the tail atom in the monomer's structure.
func (M *Monomer) Tail() int { return M.tail }

// ReadMonomer reads the structure and topology files and joins them.
func ReadMonomer(code, pdb, topfile string) (*Monomer, error) {
	mol, err := assemble.PDBFileRead(pdb)
	if err != nil {
		return nil, fmt.Errorf("could not load PDB file %s for monomer %s: %w", pdb, code, err)
	}
	tpl, err := top.ReadFile(topfile)
	if err != nil {
		return nil, fmt.Errorf("could not load topology file %s for monomer %s: %w", topfile, code, err)
	}
	M, err := NewMonomer(code, mol, tpl)
	if err != nil {
		return nil, err
	}
	M.PDBFile = pdb
	M.TopFile = topfile
	return M, nil
}

// Library holds the monomers available to build chains, by one-letter code.
// It is safe for concurrent reads, but not for concurrent modification.
type Library struct {
	monomers map[string]*Monomer
	Warnings []string
}

// New returns an empty library.
func New() *Library {
	return &Library{monomers: make(map[string]*Monomer)}
}

// Put adds the monomer M, replacing any other with the same code.
func (L *Library) Put(M *Monomer) {
	if _, ok := L.monomers[M.Code]; ok {
		L.Warnings = append(L.Warnings, fmt.Sprintf("residue %s already present in database, overwriting", M.Code))
	}
	L.Warnings = append(L.Warnings, M.Warnings...)
	L.monomers[M.Code] = M
}

// Add reads a monomer from its files and adds it to the library.
func (L *Library) Add(code, pdb, topfile string) error {
	M, err := ReadMonomer(code, pdb, topfile)
	if err != nil {
		return err
	}
	L.Put(M)
	return nil
}

// Remove deletes the monomer code from the library.
func (L *Library) Remove(code string) error {
	if _, ok := L.monomers[code]; !ok {
		return assemble.NewError(assemble.MissingMonomer, "monomer %s not found, cannot remove", code)
	}
	delete(L.monomers, code)
	return nil
}

// Get returns the monomer code.
func (L *Library) Get(code string) (*Monomer, error) {
	M, ok := L.monomers[code]
	if !ok {
		return nil, assemble.NewError(assemble.MissingMonomer, "monomer %s not found in database", code)
	}
	return M, nil
}

// Codes returns the codes of all monomers, sorted.
func (L *Library) Codes() []string {
	r := make([]string, 0, len(L.monomers))
	for k := range L.monomers {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// Len returns the number of monomers in the library.
func (L *Library) Len() int {
	return len(L.monomers)
}

// Load reads a database: one monomer per line, as a one-letter code, a PDB
// file and a topology file. Lines starting with # are ignored. Relative
// paths are taken from dir.
func Load(r io.Reader, name, dir string) (*Library, error) {
	L := New()
	s := bufio.NewScanner(r)
	lineno := 0
	for s.Scan() {
		lineno++
		f := strings.Fields(s.Text())
		if len(f) == 0 || strings.HasPrefix(f[0], "#") {
			continue
		}
		if len(f[0]) > 1 {
			return nil, assemble.NewError(assemble.MalformedFile, "found %s identifier in database file %s, one letter code expected", f[0], name)
		}
		if len(f) < 3 {
			return nil, assemble.NewError(assemble.MalformedFile, "%s, line %d: a PDB and a topology file are expected for monomer %s", name, lineno, f[0])
		}
		if _, ok := L.monomers[f[0]]; ok {
			L.Warnings = append(L.Warnings, fmt.Sprintf("duplicate key %s in database %s, overwriting", f[0], name))
			delete(L.monomers, f[0])
		}
		if err := L.Add(f[0], rel(dir, f[1]), rel(dir, f[2])); err != nil {
			return nil, err
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return L, nil
}

func rel(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

// LoadFile reads the database file name. Relative paths in it are taken
// from the directory containing it.
func LoadFile(name string) (*Library, error) {
	f, err := assemble.OpenRead(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, name, filepath.Dir(name))
}

// Save writes the library in the database format, sorted by code.
func (L *Library) Save(w io.Writer) error {
	for _, k := range L.Codes() {
		m := L.monomers[k]
		if _, err := fmt.Fprintf(w, "%s %s %s\n", k, m.PDBFile, m.TopFile); err != nil {
			return err
		}
	}
	return nil
}

// SaveFile writes the library to the file name.
func (L *Library) SaveFile(name string) error {
	f, err := assemble.CreateWrite(name)
	if err != nil {
		return err
	}
	if err := L.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

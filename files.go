/*
 * files.go, part of assemble.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/degiacom/assemble/v3"
	"github.com/klauspost/compress/zstd"
)

// zstd decoders don't implement io.ReadCloser, and closing one
// must also close the file under it.
type zstdReadCloser struct {
	*zstd.Decoder
	f *os.File
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

type zstdWriteCloser struct {
	*zstd.Encoder
	f *os.File
}

func (z zstdWriteCloser) Close() error {
	if err := z.Encoder.Close(); err != nil {
		z.f.Close()
		return err
	}
	return z.f.Close()
}

// Compressed returns true if name has the .zst extension.
func Compressed(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zst")
}

// OpenRead opens the file name for reading, transparently decompressing
// it if its name ends in .zst
func OpenRead(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	if !Compressed(name) {
		return f, nil
	}
	d, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("can't decompress %s: %w", name, err)
	}
	return zstdReadCloser{d, f}, nil
}

// CreateWrite creates the file name, compressing what is written to it
// if its name ends in .zst
func CreateWrite(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	if !Compressed(name) {
		return f, nil
	}
	e, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("can't compress %s: %w", name, err)
	}
	return zstdWriteCloser{e, f}, nil
}

//PDB reading

// safeField returns line[i:j], trimmed, tolerating short lines.
func safeField(line string, i, j int) string {
	if i >= len(line) {
		return ""
	}
	if j > len(line) {
		j = len(line)
	}
	return strings.TrimSpace(line[i:j])
}

// readPDBLine parses a valid ATOM or HETATM line of a PDB file. It returns the
// atom and its coordinates.
func readPDBLine(line string, lineno int) (*Atom, Vec3, error) {
	var coords Vec3
	if len(line) < 54 {
		return nil, coords, NewError(MalformedFile, "line %d too short for an atom record", lineno)
	}
	err := make([]error, 5)
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	atom.ID, err[0] = strconv.Atoi(safeField(line, 6, 11))
	atom.Name = safeField(line, 12, 16)
	atom.MolName = safeField(line, 17, 21)
	atom.Chain = safeField(line, 21, 22)
	atom.MolID, err[1] = strconv.Atoi(safeField(line, 22, 26))
	coords[0], err[2] = strconv.ParseFloat(safeField(line, 30, 38), 64)
	coords[1], err[3] = strconv.ParseFloat(safeField(line, 38, 46), 64)
	coords[2], err[4] = strconv.ParseFloat(safeField(line, 46, 54), 64)
	for _, e := range err {
		if e != nil {
			return nil, coords, NewError(MalformedFile, "line %d: %v", lineno, e)
		}
	}
	//optional fields: defaults when missing or unreadable
	var e error
	if atom.Occupancy, e = strconv.ParseFloat(safeField(line, 54, 60), 64); e != nil {
		atom.Occupancy = 1.0
	}
	if atom.Bfactor, e = strconv.ParseFloat(safeField(line, 60, 66), 64); e != nil {
		atom.Bfactor = 0.0
	}
	if atom.Symbol = safeField(line, 76, 78); atom.Symbol == "" {
		atom.Symbol = SymbolFromName(safeField(line, 12, 16))
	}
	if atom.Name == "" {
		return nil, coords, NewError(MalformedFile, "line %d: atom without a name", lineno)
	}
	return atom, coords, nil
}

// PDBRead reads the atoms of the first model in a PDB stream. REMARK lines are
// stored, without the keyword, in the Remarks of the returned molecule.
func PDBRead(r io.Reader) (*Molecule, error) {
	atoms := make([]*Atom, 0, 64)
	coords := make([]float64, 0, 64*3)
	remarks := make([]string, 0)
	pdb := bufio.NewScanner(r)
	lineno := 0
	for pdb.Scan() {
		line := pdb.Text()
		lineno++
		if strings.HasPrefix(line, "ENDMDL") {
			break
		}
		if strings.HasPrefix(line, "REMARK") {
			remarks = append(remarks, strings.TrimSpace(strings.TrimPrefix(line, "REMARK")))
			continue
		}
		if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
			continue
		}
		at, c, err := readPDBLine(line, lineno)
		if err != nil {
			return nil, ErrDecorate(err, "PDBRead")
		}
		atoms = append(atoms, at)
		coords = append(coords, c[:]...)
	}
	if err := pdb.Err(); err != nil {
		return nil, err
	}
	if len(atoms) == 0 {
		return nil, NewError(MalformedFile, "no atoms found")
	}
	mcoords, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, err
	}
	return &Molecule{Atoms: atoms, Coords: mcoords, Remarks: remarks}, nil
}

// PDBFileRead reads the PDB file name, which may be zstd-compressed.
func PDBFileRead(name string) (*Molecule, error) {
	f, err := OpenRead(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mol, err := PDBRead(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return mol, nil
}

//PDB writing

// pdbLine formats an atom record.
func pdbLine(at *Atom, c Vec3) (string, error) {
	first := "ATOM"
	if at.Het {
		first = "HETATM"
	}
	chain := at.Chain
	if chain == "" {
		chain = " "
	}
	if len(chain) > 1 || len(at.MolName) > 4 || len(at.Name) > 4 {
		return "", NewError(MalformedFile, "atom %s %s can't be written in PDB format", at.MolName, at.Name)
	}
	id := at.ID % 100000
	molid := at.MolID % 10000
	//names shorter than 4 characters start at the 14th column.
	name := " " + at.Name
	if len(at.Name) == 4 {
		name = at.Name
	}
	return fmt.Sprintf("%-6s%5d %-4s %-4s%1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
		first, id, name, at.MolName, chain, molid, c[0], c[1], c[2], at.Occupancy, at.Bfactor, at.Symbol), nil
}

// PDBWrite writes mol to out in PDB format. The molecule's remarks, followed by
// the extra remarks given, are written first.
func PDBWrite(out io.Writer, mol *Molecule, remarks ...string) error {
	if err := mol.Corrupted(); err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	for _, r := range append(append([]string(nil), mol.Remarks...), remarks...) {
		if _, err := fmt.Fprintf(w, "REMARK %s\n", r); err != nil {
			return err
		}
	}
	for i, at := range mol.Atoms {
		l, err := pdbLine(at, mol.Coords.Vec(i))
		if err != nil {
			return ErrDecorate(err, "PDBWrite")
		}
		if _, err := w.WriteString(l); err != nil {
			return err
		}
	}
	if _, err := w.WriteString("END\n"); err != nil {
		return err
	}
	return w.Flush()
}

// PDBFileWrite writes mol to the file name, compressing it if name ends in .zst
func PDBFileWrite(name string, mol *Molecule, remarks ...string) error {
	f, err := CreateWrite(name)
	if err != nil {
		return err
	}
	if err := PDBWrite(f, mol, remarks...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

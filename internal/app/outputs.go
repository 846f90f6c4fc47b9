/*
 * outputs.go, part of assemble.
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
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/degiacom/assemble"
	"github.com/degiacom/assemble/internal/logging"
	"github.com/degiacom/assemble/report"
	"gopkg.in/yaml.v3"
)

// create opens name in the run folder for writing, and records it as an
// output. Coordinate files get a .zst suffix, and are compressed, if the
// configuration asks for it. Topologies are never compressed, as they
// include each other by name.
func (A *App) create(name string, coords bool) (io.WriteCloser, error) {
	if coords && A.cfg.Compress {
		name += ".zst"
	}
	w, err := assemble.CreateWrite(filepath.Join(A.res.Folder, name))
	if err != nil {
		return nil, err
	}
	A.res.Outputs = append(A.res.Outputs, name)
	return w, nil
}

// write writes one output file with f.
func (A *App) write(name string, coords bool, f func(io.Writer) error) error {
	w, err := A.create(name, coords)
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f(w); err != nil {
		w.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func (A *App) writeChains() error {
	remark := "run " + A.res.RunID
	for _, cr := range A.res.Chains {
		C := cr.Chain
		if C == nil {
			continue
		}
		err := A.write(C.Name+".pdb", true, func(w io.Writer) error { return C.WritePDB(w, remark) })
		if err != nil {
			return err
		}
		if err = A.write(C.Name+".gro", true, C.WriteGro); err != nil {
			return err
		}
		if err = A.write(C.Name+".itp", false, C.WriteITP); err != nil {
			return err
		}
	}
	return nil
}

func (A *App) writeSystem() error {
	S := A.res.System
	name := A.cfg.SystemName
	if err := A.write(name+".gro", true, S.WriteGro); err != nil {
		return err
	}
	err := A.write(name+".top", false, func(w io.Writer) error { return S.WriteTop(w, A.ff) })
	if err != nil {
		return err
	}
	if err := A.write(name+".ndx", false, S.WriteNdx); err != nil {
		return err
	}
	if !A.cfg.Plot {
		return nil
	}
	plots := []struct {
		suffix string
		draw   func(string) error
	}{
		{"_trials.png", func(f string) error { return report.TrialErrors(S.Assignment, f) }},
		{"_composition.png", func(f string) error { return report.Composition(S.Assignment, f) }},
		{"_monomers.png", func(f string) error { return report.Monomers(S.Stats, f) }},
	}
	for _, p := range plots {
		file := name + p.suffix
		if err := p.draw(filepath.Join(A.res.Folder, file)); err != nil {
			//a missing plot does not spoil the run
			A.log.Warn("could not plot", logging.String("file", file), logging.Err(err))
			continue
		}
		A.res.Outputs = append(A.res.Outputs, file)
	}
	return nil
}

// Manifest summarizes a run. It is written as manifest.yaml in the run folder.
type Manifest struct {
	RunID   string       `yaml:"run_id"`
	Created time.Time    `yaml:"created"`
	Seed    uint64       `yaml:"seed"`
	Chains  []ChainEntry `yaml:"chains"`
	System  *SystemEntry `yaml:"system,omitempty"`
	Outputs []string     `yaml:"outputs"`
}

// ChainEntry describes one molecule of the run.
type ChainEntry struct {
	Name          string             `yaml:"name"`
	Sequence      string             `yaml:"sequence"`
	Realized      map[string]float64 `yaml:"realized,omitempty"`
	Atoms         int                `yaml:"atoms,omitempty"`
	Mass          float64            `yaml:"mass,omitempty"`
	ContourLength float64            `yaml:"contour_length,omitempty"`
	Clashes       int                `yaml:"clashes"`
	Warnings      []string           `yaml:"warnings,omitempty"`
	Error         string             `yaml:"error,omitempty"`
}

// Count is the number of molecules of a polymer in the system.
type Count struct {
	Name          string  `yaml:"name"`
	Count         int     `yaml:"count"`
	NumberPercent float64 `yaml:"number_percent"`
	WeightPercent float64 `yaml:"weight_percent"`
}

// SystemEntry describes the packed system.
type SystemEntry struct {
	Name                   string             `yaml:"name"`
	Shape                  [3]int             `yaml:"shape"`
	Box                    [3]float64         `yaml:"box"` //Å
	Atoms                  int                `yaml:"atoms"`
	Molecules              []Count            `yaml:"molecules"`
	Monomers               map[string]float64 `yaml:"monomers"`
	DegreeOfPolymerization float64            `yaml:"degree_of_polymerization"`
	BestTrial              int                `yaml:"best_trial"`
	BestError              float64            `yaml:"best_error"`
	MeanError              float64            `yaml:"mean_error"`
}

// Manifest returns the summary of the run so far.
func (A *App) Manifest() *Manifest {
	M := &Manifest{RunID: A.res.RunID, Created: time.Now().UTC(), Seed: A.res.Seed}
	for i, cr := range A.res.Chains {
		e := ChainEntry{Name: cr.Name, Sequence: cr.Sequence}
		if cr.Realized != nil {
			e.Realized = make(map[string]float64, len(cr.Realized))
			for k, s := range A.cfg.Molecules[i].Composition {
				e.Realized[s.Code] = cr.Realized[k]
			}
		}
		if cr.Err != nil {
			e.Error = cr.Err.Error()
		}
		if C := cr.Chain; C != nil {
			e.Atoms = C.Mol.Len()
			e.Mass, _ = C.Mass()
			e.ContourLength = C.Diag.ContourLength
			e.Clashes = C.Diag.Unresolved()
			e.Warnings = C.Diag.Warnings
		}
		M.Chains = append(M.Chains, e)
	}
	if S := A.res.System; S != nil {
		st := S.Stats
		e := &SystemEntry{
			Name:                   S.Name,
			Shape:                  S.Assignment.Shape,
			Box:                    S.Box,
			Atoms:                  st.Atoms,
			Monomers:               make(map[string]float64, len(st.Monomers)),
			DegreeOfPolymerization: st.DegreeOfPolymerization,
			BestTrial:              S.Assignment.Trial,
			BestError:              S.Assignment.Error,
			MeanError:              st.TrialErrorMean,
		}
		for _, p := range st.Polymers {
			e.Molecules = append(e.Molecules, Count{Name: p.Name, Count: p.Count, NumberPercent: p.NumberPercent, WeightPercent: p.WeightPercent})
		}
		for _, m := range st.Monomers {
			e.Monomers[m.Code] = m.Percent
		}
		M.System = e
	}
	M.Outputs = append([]string(nil), A.res.Outputs...)
	return M
}

func (A *App) writeManifest() error {
	M := A.Manifest()
	M.Outputs = append(M.Outputs, "manifest.yaml")
	return A.write("manifest.yaml", false, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(M); err != nil {
			return err
		}
		return enc.Close()
	})
}

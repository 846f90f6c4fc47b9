/*
 * app.go, part of assemble.
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

// Package app runs assemble: it builds the polymers of a configuration,
// packs them into a system and writes every output to the run folder.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/degiacom/assemble"
	"github.com/degiacom/assemble/config"
	"github.com/degiacom/assemble/ff"
	"github.com/degiacom/assemble/internal/logging"
	"github.com/degiacom/assemble/library"
	"github.com/degiacom/assemble/polymer"
	"github.com/degiacom/assemble/system"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ChainResult is the outcome of building one molecule of the configuration.
type ChainResult struct {
	Name     string
	Sequence string
	Realized []float64 //monomer percentages of a random sequence, in composition order
	Chain    *polymer.Chain
	Err      error
}

// Result is the outcome of a run.
type Result struct {
	RunID   string
	Seed    uint64
	Folder  string
	Chains  []*ChainResult //in configuration order
	System  *system.System //nil if no system was packed
	Outputs []string       //files written, relative to Folder
}

// Built returns the chains that were built successfully.
func (R *Result) Built() []*polymer.Chain {
	var r []*polymer.Chain
	for _, c := range R.Chains {
		if c.Chain != nil {
			r = append(r, c.Chain)
		}
	}
	return r
}

// Failed returns the number of molecules that could not be built.
func (R *Result) Failed() int {
	n := 0
	for _, c := range R.Chains {
		if c.Err != nil {
			n++
		}
	}
	return n
}

// App runs one configuration.
type App struct {
	cfg *config.Config
	log logging.Logger
	lib *library.Library
	ff  *ff.FF
	res *Result
}

// New returns an App for cfg that logs to log.
func New(cfg *config.Config, log logging.Logger) *App {
	return &App{cfg: cfg, log: log}
}

// Logger creates the output folder of cfg and returns a logger that writes
// both to the outputs in cfg.Log and to <system name>.log in that folder.
func Logger(cfg *config.Config) (logging.Logger, error) {
	if err := os.MkdirAll(cfg.Folder(), 0o755); err != nil {
		return nil, fmt.Errorf("creating output folder: %w", err)
	}
	lc := cfg.Log
	if len(lc.OutputPaths) == 0 {
		lc.OutputPaths = []string{"stderr"}
	}
	logfile := filepath.Join(cfg.Folder(), cfg.SystemName+".log")
	if err := os.Remove(logfile); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	lc.OutputPaths = append(append([]string(nil), lc.OutputPaths...), logfile)
	return logging.NewLogger(lc)
}

// Run builds every molecule, packs the system if a lattice shape is given,
// and writes the outputs. A molecule that fails to build is logged and
// skipped. The error returned is set if nothing could be built, or if the
// system could not be packed or written. The result is returned whenever
// the run got past loading its inputs.
func (A *App) Run(ctx context.Context) (*Result, error) {
	cfg := A.cfg
	start := time.Now()
	A.res = &Result{RunID: uuid.NewString(), Seed: cfg.Seed, Folder: cfg.Folder()}
	if A.res.Seed == 0 {
		A.res.Seed = uint64(time.Now().UnixNano())
	}
	A.log = A.log.With(logging.String("run", A.res.RunID))
	A.log.Info("starting run", logging.String("system", cfg.SystemName), logging.Uint64("seed", A.res.Seed), logging.String("folder", A.res.Folder))
	if err := os.MkdirAll(A.res.Folder, 0o755); err != nil {
		return nil, fmt.Errorf("creating output folder: %w", err)
	}
	if err := A.load(); err != nil {
		return nil, err
	}
	if err := A.sequences(); err != nil {
		return nil, err
	}
	if err := A.build(ctx); err != nil {
		return A.res, err
	}
	if err := A.writeChains(); err != nil {
		return A.res, err
	}
	if len(A.res.Built()) == 0 {
		err := fmt.Errorf("none of the %d molecules could be built", len(A.res.Chains))
		A.finish(start)
		return A.res, err
	}
	var err error
	if cfg.Packing() {
		err = A.pack(ctx)
	} else {
		A.log.Warn("no box_grid_shape given, skipping system generation")
	}
	A.finish(start)
	return A.res, err
}

func (A *App) finish(start time.Time) {
	if err := A.writeManifest(); err != nil {
		A.log.Error("writing manifest", logging.Err(err))
	}
	A.log.Info("run finished", logging.Int("built", len(A.res.Built())), logging.Int("failed", A.res.Failed()),
		logging.Duration("elapsed", time.Since(start)))
}

// load reads the force field and the monomer library.
func (A *App) load() error {
	cfg := A.cfg
	F, err := ff.ReadFile(cfg.ForceField)
	if err != nil {
		return fmt.Errorf("loading force field: %w", err)
	}
	F.SetDefaults(cfg.DefaultBond, cfg.DefaultAngle, cfg.DefaultDihedral)
	A.ff = F
	A.log.Info("force field loaded", logging.String("file", cfg.ForceField), logging.Int("bonded", F.NBonded()), logging.Int("atomtypes", len(F.AtomTypes())))
	L := library.New()
	if cfg.Database != "" {
		L, err = library.LoadFile(cfg.Database)
		if err != nil {
			return fmt.Errorf("loading database: %w", err)
		}
	}
	for _, r := range cfg.Residues {
		if err := L.Add(r.Code, r.PDB, r.Topology); err != nil {
			return fmt.Errorf("adding residue %s: %w", r.Code, err)
		}
	}
	for _, w := range L.Warnings {
		A.log.Warn(w)
	}
	A.lib = L
	A.log.Info("monomer library loaded", logging.Strings("codes", L.Codes()))
	return nil
}

// sequences fills in the sequence of every molecule, drawing the random
// ones in configuration order.
func (A *App) sequences() error {
	u := assemble.NewUniform(A.res.Seed)
	for _, m := range A.cfg.Molecules {
		cr := &ChainResult{Name: m.Name, Sequence: m.Chain}
		A.res.Chains = append(A.res.Chains, cr)
		if m.Chain != "" {
			continue
		}
		shares := make([]polymer.Share, 0, len(m.Composition))
		for _, s := range m.Composition {
			shares = append(shares, polymer.Share{Code: s.Code, Percent: s.Percent})
		}
		seq, realized, err := polymer.RandomSequence(m.Length, shares, u)
		if err != nil {
			return fmt.Errorf("molecule %s: %w", m.Name, err)
		}
		cr.Sequence, cr.Realized = seq, realized
		fields := []logging.Field{logging.String("molecule", m.Name), logging.String("sequence", seq)}
		for i, s := range shares {
			fields = append(fields, logging.Float64(s.Code, realized[i]))
		}
		A.log.Info("random sequence", fields...)
	}
	return nil
}

// build builds the chains, cfg.Workers at a time. The failure of one chain
// does not stop the others.
func (A *App) build(ctx context.Context) error {
	opts := polymer.Options{ClashThreshold: A.cfg.ClashThreshold, GridStep: A.cfg.GridStep}
	workers := A.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, cr := range A.res.Chains {
		cr := cr
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			B := polymer.NewBuilder(A.lib, A.ff, opts)
			cr.Chain, cr.Err = B.Build(cr.Name, cr.Sequence)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, cr := range A.res.Chains {
		A.report(cr)
	}
	return nil
}

func (A *App) report(cr *ChainResult) {
	log := A.log.Named("polymer").With(logging.String("molecule", cr.Name))
	if cr.Err != nil {
		log.Error("could not build chain", logging.String("sequence", cr.Sequence), logging.Err(cr.Err),
			logging.String("kind", assemble.KindOf(cr.Err).String()))
		return
	}
	C := cr.Chain
	for _, j := range C.Diag.Junctions {
		log.Debug("junction", logging.String("detail", j.String()))
	}
	for _, w := range C.Diag.Warnings {
		log.Warn(w)
	}
	fields := []logging.Field{
		logging.String("sequence", C.Sequence),
		logging.Int("atoms", C.Mol.Len()),
		logging.Float64("contour_length", C.Diag.ContourLength),
		logging.Int("clashes", C.Diag.Unresolved()),
	}
	if m, err := C.Mass(); err == nil {
		fields = append(fields, logging.Float64("mass", m))
	}
	log.Info("chain built", fields...)
}

// pack places the chains on the lattice and writes the system.
func (A *App) pack(ctx context.Context) error {
	cfg := A.cfg
	mode, err := system.ParseMode(cfg.ConcentrationMode)
	if err != nil {
		return err
	}
	conc := make([]system.Concentration, 0, len(cfg.Concentration))
	for _, c := range cfg.Concentration {
		conc = append(conc, system.Concentration{Name: c.Name, Percent: c.Percent})
	}
	opts := system.Options{
		Name:    cfg.SystemName,
		Padding: cfg.Padding,
		Trials:  cfg.Trials,
		Seed:    A.res.Seed,
		Workers: cfg.Workers,
		Mode:    mode,
	}
	log := A.log.Named("system")
	log.Info("packing system", logging.Any("shape", cfg.Shape()), logging.Int("trials", cfg.Trials))
	S, err := system.Pack(ctx, A.res.Built(), conc, system.Shape(cfg.Shape()), opts)
	if err != nil {
		log.Error("could not pack system", logging.Err(err))
		return fmt.Errorf("packing system: %w", err)
	}
	A.res.System = S
	for _, m := range S.Manifest {
		log.Info("molecules", logging.String("polymer", m.Name), logging.Int("count", m.Count))
	}
	st := S.Stats
	log.Info("system packed",
		logging.Int("atoms", st.Atoms),
		logging.Any("box", S.Box),
		logging.Int("best_trial", S.Assignment.Trial),
		logging.Float64("best_error", S.Assignment.Error),
		logging.Float64("mean_error", st.TrialErrorMean),
		logging.Float64("dp", st.DegreeOfPolymerization))
	for _, p := range st.Polymers {
		log.Info("polymer share", logging.String("polymer", p.Name), logging.Float64("mass", p.Mass),
			logging.Float64("number_percent", p.NumberPercent), logging.Float64("weight_percent", p.WeightPercent))
	}
	for _, m := range st.Monomers {
		log.Info("monomer share", logging.String("monomer", m.Code), logging.Float64("percent", m.Percent))
	}
	return A.writeSystem()
}

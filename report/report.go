/*
 * report.go, part of assemble.
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

// Package report draws diagnostic plots of a packed system.
package report

import (
	"fmt"
	"image/color"

	"github.com/degiacom/assemble/system"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Size of the plots.
var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

const bins = 20

// TrialErrors saves to file a histogram of the error of every packing
// trial, with a line marking the one kept. The format is taken from the
// extension of file.
func TrialErrors(A *system.Assignment, file string) error {
	if len(A.Errors) == 0 {
		return fmt.Errorf("report: no trials to plot")
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Packing trials (%d)", len(A.Errors))
	p.X.Label.Text = "squared deviation from target (%²)"
	p.Y.Label.Text = "trials"
	h, err := plotter.NewHist(plotter.Values(A.Errors), bins)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	h.FillColor = plotutil.Color(0)
	p.Add(h)
	best, err := plotter.NewLine(plotter.XYs{{X: A.Error, Y: 0}, {X: A.Error, Y: float64(len(A.Errors))}})
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	best.Color = color.RGBA{R: 200, A: 255}
	best.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(best)
	p.Legend.Add(fmt.Sprintf("kept: trial %d", A.Trial), best)
	p.Legend.Top = true
	return p.Save(Width, Height, file)
}

// Composition saves to file a bar chart comparing the target and realized
// percentage of each polymer.
func Composition(A *system.Assignment, file string) error {
	if len(A.Names) == 0 {
		return fmt.Errorf("report: no polymers to plot")
	}
	p := plot.New()
	p.Title.Text = "System composition"
	p.Y.Label.Text = "%"
	w := vg.Points(18)
	target, err := plotter.NewBarChart(plotter.Values(A.Target), w)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	target.Color = plotutil.Color(0)
	target.Offset = -w / 2
	realized, err := plotter.NewBarChart(plotter.Values(A.Realized), w)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	realized.Color = plotutil.Color(1)
	realized.Offset = w / 2
	p.Add(target, realized)
	p.Legend.Add("target", target)
	p.Legend.Add("realized", realized)
	p.Legend.Top = true
	p.NominalX(A.Names...)
	p.Y.Min = 0
	return p.Save(Width, Height, file)
}

// Monomers saves to file a bar chart of the share of each monomer in the
// system.
func Monomers(st *system.Stats, file string) error {
	if len(st.Monomers) == 0 {
		return fmt.Errorf("report: no monomers to plot")
	}
	vals := make(plotter.Values, 0, len(st.Monomers))
	codes := make([]string, 0, len(st.Monomers))
	for _, m := range st.Monomers {
		vals = append(vals, m.Percent)
		codes = append(codes, m.Code)
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Monomers (DP %.2f)", st.DegreeOfPolymerization)
	p.Y.Label.Text = "%"
	b, err := plotter.NewBarChart(vals, vg.Points(24))
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	b.Color = plotutil.Color(2)
	p.Add(b)
	p.NominalX(codes...)
	p.Y.Min = 0
	return p.Save(Width, Height, file)
}

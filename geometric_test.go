/*
 * geometric_test.go, part of assemble.
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
	"math"
	"testing"

	"github.com/degiacom/assemble/v3"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestPlaceHook(Te *testing.T) {
	cases := []struct {
		b, a, d Vec3
		bond    float64
		angle   float64
		dihed   float64
	}{
		{Vec3{0, 0, 0}, Vec3{1.5, 0, 0}, Vec3{2, 1.4, 0}, 1.53, 114, 120},
		{Vec3{1, 2, 3}, Vec3{0.2, 2.9, 3.1}, Vec3{-0.5, 3.1, 4.4}, 1.1, 109.5, -60},
		{Vec3{-3, 0.5, 2}, Vec3{-2, 0.5, 2.5}, Vec3{-1, -0.7, 2.2}, 1.47, 95, 180},
		{Vec3{0, 0, 0}, Vec3{0, 0, 1.4}, Vec3{1.2, 0.3, 1.9}, 1.0, 60, 0},
	}
	for i, c := range cases {
		h := PlaceHook(c.b, c.a, c.d, c.bond, c.angle*Deg2Rad, c.dihed*Deg2Rad)
		if !near(Distance(h, c.b), c.bond, 1e-6) {
			Te.Errorf("case %d: bond %f, expected %f", i, Distance(h, c.b), c.bond)
		}
		if !near(AngleAt(h, c.b, c.a)*Rad2Deg, c.angle, 1e-6) {
			Te.Errorf("case %d: angle %f, expected %f", i, AngleAt(h, c.b, c.a)*Rad2Deg, c.angle)
		}
		got := Dihedral(c.d, c.a, c.b, h) * Rad2Deg
		diff := math.Remainder(got-c.dihed, 360)
		if !near(diff, 0, 1e-6) {
			Te.Errorf("case %d: dihedral %f, expected %f", i, got, c.dihed)
		}
	}
}

func TestPlaceHookDegenerate(Te *testing.T) {
	//collinear reference atoms: the dihedral is undefined, but bond and angle must hold.
	b := Vec3{0, 0, 0}
	a := Vec3{0, 0, 1.5}
	d := Vec3{0, 0, 3}
	h := PlaceHook(b, a, d, 1.2, 100*Deg2Rad, 30*Deg2Rad)
	if !near(Distance(h, b), 1.2, 1e-9) || !near(AngleAt(h, b, a)*Rad2Deg, 100, 1e-9) {
		Te.Errorf("degenerate placement broke bond or angle: %v", h)
	}
	h2 := PlaceHook(b, a, d, 1.2, 100*Deg2Rad, 30*Deg2Rad)
	if h != h2 {
		Te.Error("degenerate placement is not deterministic")
	}
	//coincident bond and angle atoms
	h = PlaceHook(b, b, d, 1.0, 90*Deg2Rad, 0)
	if !near(Distance(h, b), 1.0, 1e-9) {
		Te.Errorf("coincident atoms: bond %f", Distance(h, b))
	}
}

func TestPerpendicular(Te *testing.T) {
	for _, v := range []Vec3{{1, 0, 0}, {0, 0, 3}, {1, 2, 3}, {-4, 0.1, 0.2}} {
		p := Perpendicular(v)
		if !near(dot3(p, v), 0, 1e-12) || !near(norm3(p), 1, 1e-12) {
			Te.Errorf("Perpendicular(%v)=%v is not an orthogonal unit vector", v, p)
		}
	}
}

func TestRotatorAroundAxis(Te *testing.T) {
	rot := RotatorAroundAxis(Vec3{0, 0, 1}, math.Pi/2)
	p, _ := v3.NewMatrix([]float64{1, 0, 0})
	Rotate(p, rot)
	if !near(p.At(0, 0), 0, 1e-12) || !near(p.At(0, 1), 1, 1e-12) {
		Te.Errorf("x rotated 90 degrees around z should be y, got %v", p)
	}
	from := Vec3{1, 2, -0.5}
	for _, to := range []Vec3{{0, 1, 0}, {1, 2, -0.5}, {-1, -2, 0.5}} {
		r := RotatorToAlign(from, to)
		m, _ := v3.NewMatrix([]float64{from[0], from[1], from[2]})
		Rotate(m, r)
		got := m.Vec(0)
		want := scale3(norm3(from)/norm3(to), to)
		if Distance(got, want) > 1e-9 {
			Te.Errorf("RotatorToAlign(%v, %v) gave %v", from, to, got)
		}
	}
}

func TestSuper(Te *testing.T) {
	templa, _ := v3.NewMatrix([]float64{
		0, 0, 0,
		1.5, 0, 0,
		2, 1.4, 0,
		3.5, 1.4, 0.3,
	})
	test := v3.Zeros(4)
	test.Copy(templa)
	Rotate(test, RotatorAroundAxis(Vec3{1, 1, 0.3}, 1.1))
	Translate(test, Vec3{4, -2, 7})
	super, err := Super(test, templa)
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if Distance(super.Vec(i), templa.Vec(i)) > 1e-9 {
			Te.Errorf("vector %d not superimposed: %v vs %v", i, super.Vec(i), templa.Vec(i))
		}
	}
	//mirror image: the result must still be a proper rotation.
	mirror := v3.Zeros(4)
	mirror.Copy(templa)
	for i := 0; i < 4; i++ {
		mirror.Set(i, 2, -mirror.At(i, 2))
	}
	rot, _, _, err := RotatorTranslatorToSuper(mirror, templa)
	if err != nil {
		Te.Fatal(err)
	}
	if det := rot.At(0, 0)*(rot.At(1, 1)*rot.At(2, 2)-rot.At(1, 2)*rot.At(2, 1)) -
		rot.At(0, 1)*(rot.At(1, 0)*rot.At(2, 2)-rot.At(1, 2)*rot.At(2, 0)) +
		rot.At(0, 2)*(rot.At(1, 0)*rot.At(2, 1)-rot.At(1, 1)*rot.At(2, 0)); !near(det, 1, 1e-9) {
		Te.Errorf("superposition of a mirror image gave a reflection, det %f", det)
	}
}

func TestSuperTwoPoints(Te *testing.T) {
	templa, _ := v3.NewMatrix([]float64{1, 1, 1, 2.2, 1.5, 0.4})
	test, _ := v3.NewMatrix([]float64{-3, 0, 2, -3, 0, 2 + Distance(Vec3{1, 1, 1}, Vec3{2.2, 1.5, 0.4})})
	super, err := Super(test, templa)
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if Distance(super.Vec(i), templa.Vec(i)) > 1e-9 {
			Te.Errorf("point %d not mapped exactly: %v vs %v", i, super.Vec(i), templa.Vec(i))
		}
	}
}

func TestAlignPrincipalAxes(Te *testing.T) {
	coords, _ := v3.NewMatrix([]float64{
		0, 0, 0,
		1.5, 0.3, 0.1,
		3.0, -0.2, 0.4,
		4.5, 0.5, -0.3,
		6.0, 0.1, 0.9,
		7.5, -0.6, 0.2,
		2.0, 1.5, -0.5,
	})
	Rotate(coords, RotatorAroundAxis(Vec3{0.3, -1, 0.5}, 0.8))
	Translate(coords, Vec3{10, 5, -3})
	if err := AlignPrincipalAxes(coords); err != nil {
		Te.Fatal(err)
	}
	if c := Centroid(coords); norm3(c) > 1e-9 {
		Te.Errorf("aligned coordinates not centered: %v", c)
	}
	axes, moments, err := PrincipalAxes(coords)
	if err != nil {
		Te.Fatal(err)
	}
	if !(moments[0] <= moments[1] && moments[1] <= moments[2]) {
		Te.Errorf("moments not sorted: %v", moments)
	}
	for k := 0; k < 3; k++ {
		if !near(math.Abs(axes.At(k, k)), 1, 1e-6) {
			Te.Errorf("axis %d not aligned: %v", k, axes)
		}
	}
	again := v3.Zeros(coords.NVecs())
	again.Copy(coords)
	if err := AlignPrincipalAxes(again); err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < coords.NVecs(); i++ {
		a, b := again.Vec(i), coords.Vec(i)
		for j := 0; j < 3; j++ {
			//up to axis sign flips
			if !near(math.Abs(a[j]), math.Abs(b[j]), 1e-6) {
				Te.Errorf("second alignment moved atom %d: %v vs %v", i, a, b)
			}
		}
	}
}

func TestDihedralSign(Te *testing.T) {
	a := Vec3{1, 0, 0}
	b := Vec3{0, 0, 0}
	c := Vec3{0, 0, 1}
	d := Vec3{0, 1, 1}
	if got := Dihedral(a, b, c, d) * Rad2Deg; !near(got, 90, 1e-9) {
		Te.Errorf("dihedral should be 90, got %f", got)
	}
	if got := Dihedral(d, c, b, a) * Rad2Deg; !near(got, 90, 1e-9) {
		Te.Errorf("reversed dihedral should also be 90, got %f", got)
	}
}

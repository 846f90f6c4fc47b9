/*
 * geometric.go, part of assemble.
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

	"github.com/degiacom/assemble/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	Deg2Rad = math.Pi / 180.0
	Rad2Deg = 180.0 / math.Pi
)

const appzero float64 = 1e-12

// Vec3 is a single point or direction in space.
type Vec3 = [3]float64

func sub3(a, b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func add3(a, b Vec3) Vec3 { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func scale3(f float64, a Vec3) Vec3 { return Vec3{f * a[0], f * a[1], f * a[2]} }
func dot3(a, b Vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func norm3(a Vec3) float64 { return math.Sqrt(dot3(a, a)) }

func cross3(a, b Vec3) Vec3 {
	return Vec3{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Vec3) float64 {
	return norm3(sub3(a, b))
}

// Angle returns the angle in radians between the vectors v1 and v2.
func Angle(v1, v2 Vec3) float64 {
	normproduct := norm3(v1) * norm3(v2)
	if normproduct <= appzero {
		return 0
	}
	argument := dot3(v1, v2) / normproduct
	//floating point errors can take us slightly out of [-1,1]
	argument = math.Max(-1, math.Min(1, argument))
	return math.Acos(argument)
}

// AngleAt returns the angle a-b-c in radians, with b the vertex.
func AngleAt(a, b, c Vec3) float64 {
	return Angle(sub3(a, b), sub3(c, b))
}

// Dihedral returns the dihedral angle a-b-c-d in radians, in the (-pi, pi] range.
func Dihedral(a, b, c, d Vec3) float64 {
	bma := sub3(b, a)
	cmb := sub3(c, b)
	dmc := sub3(d, c)
	bmaxcmb := cross3(bma, cmb)
	cmbxdmc := cross3(cmb, dmc)
	first := norm3(cmb) * dot3(bma, cmbxdmc)
	second := dot3(bmaxcmb, cmbxdmc)
	return math.Atan2(first, second)
}

// Perpendicular returns a unit vector orthogonal to a. The choice is
// deterministic: the component of a with the smallest magnitude is left out.
func Perpendicular(a Vec3) Vec3 {
	abs := []float64{math.Abs(a[0]), math.Abs(a[1]), math.Abs(a[2])}
	var r Vec3
	switch floats.MinIdx(abs) {
	case 0:
		r = Vec3{0, -a[2], a[1]}
	case 1:
		r = Vec3{a[2], 0, -a[0]}
	default:
		r = Vec3{-a[1], a[0], 0}
	}
	n := norm3(r)
	if n <= appzero {
		return Vec3{1, 0, 0}
	}
	return scale3(1/n, r)
}

// PlaceHook returns the position of a point at distance bond from bondAt,
// forming the angle hook-bondAt-angleAt equal to angle and the dihedral
// dihedAt-angleAt-bondAt-hook equal to dihedral. Angles are in radians.
// If the reference atoms are degenerate (coincident or collinear) a
// deterministic orthonormal frame is used instead of failing.
func PlaceHook(bondAt, angleAt, dihedAt Vec3, bond, angle, dihedral float64) Vec3 {
	z := sub3(angleAt, bondAt)
	if n := norm3(z); n < 1e-15 {
		z = Vec3{0, 0, 1}
	} else {
		z = scale3(1/n, z)
	}
	x := sub3(dihedAt, bondAt)
	x = sub3(x, scale3(dot3(x, z), z))
	if n := norm3(x); n < 1e-15 {
		x = Perpendicular(z)
	} else {
		x = scale3(1/n, x)
	}
	//left-handed frame, so the dihedral has the usual sign.
	y := scale3(-1, cross3(z, x))
	sa, ca := math.Sincos(angle)
	sd, cd := math.Sincos(dihedral)
	px := bond * cd * sa
	py := bond * sd * sa
	pz := bond * ca
	return add3(bondAt, add3(scale3(px, x), add3(scale3(py, y), scale3(pz, z))))
}

// Centroid returns the geometric center of the vectors in coords.
func Centroid(coords *v3.Matrix) Vec3 {
	n := coords.NVecs()
	var c Vec3
	if n == 0 {
		return c
	}
	for i := 0; i < n; i++ {
		c = add3(c, coords.Vec(i))
	}
	return scale3(1/float64(n), c)
}

// BoundingBox returns the minimum and maximum coordinates in each direction.
func BoundingBox(coords *v3.Matrix) (min, max Vec3) {
	n := coords.NVecs()
	for j := 0; j < 3; j++ {
		min[j] = math.Inf(1)
		max[j] = math.Inf(-1)
	}
	for i := 0; i < n; i++ {
		v := coords.Vec(i)
		for j := 0; j < 3; j++ {
			min[j] = math.Min(min[j], v[j])
			max[j] = math.Max(max[j], v[j])
		}
	}
	return min, max
}

// Extent returns the size of the bounding box of coords.
func Extent(coords *v3.Matrix) Vec3 {
	if coords.NVecs() == 0 {
		return Vec3{}
	}
	min, max := BoundingBox(coords)
	return sub3(max, min)
}

// Translate adds t to every vector in coords, in place.
func Translate(coords *v3.Matrix, t Vec3) {
	for i := 0; i < coords.NVecs(); i++ {
		coords.SetVec(i, add3(coords.Vec(i), t))
	}
}

// Rotate multiplies, in place, every vector in coords by the 3x3 rotator rot (row convention, p' = p rot).
func Rotate(coords *v3.Matrix, rot *v3.Matrix) {
	tmp := v3.Zeros(coords.NVecs())
	tmp.Mul(coords, rot)
	coords.Copy(tmp)
}

// Transform applies the superposition obtained with RotatorTranslatorToSuper
// to coords, in place: p' = (p - from) rot + to.
func Transform(coords *v3.Matrix, rot *v3.Matrix, from, to Vec3) {
	Translate(coords, scale3(-1, from))
	Rotate(coords, rot)
	Translate(coords, to)
}

// RotatorTranslatorToSuper returns the rotation that best superimposes the rows
// of test on those of templa (Kabsch algorithm), together with the centroids of
// test and templa. The rotation is corrected so it never contains a reflection.
// In order to superimpose, test must be centered on its centroid, rotated, and
// translated to the centroid of templa (see Transform).
func RotatorTranslatorToSuper(test, templa *v3.Matrix) (rot *v3.Matrix, ctest, ctempla Vec3, err error) {
	tmr := templa.NVecs()
	tsr := test.NVecs()
	if tmr != tsr || tmr == 0 {
		return nil, ctest, ctempla, NewError(KindUnknown, "ill-formed matrices for superposition: %d and %d vectors", tsr, tmr)
	}
	ctest = Centroid(test)
	ctempla = Centroid(templa)
	P := v3.Zeros(tsr)
	Q := v3.Zeros(tmr)
	for i := 0; i < tsr; i++ {
		P.SetVec(i, sub3(test.Vec(i), ctest))
		Q.SetVec(i, sub3(templa.Vec(i), ctempla))
	}
	H := mat.NewDense(3, 3, nil)
	H.Mul(P.Dense.T(), Q.Dense)
	var svd mat.SVD
	if ok := svd.Factorize(H, mat.SVDFull); !ok {
		return nil, ctest, ctempla, NewError(KindUnknown, "SVD factorization failed in superposition")
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	if mat.Det(&U)*mat.Det(&V) < 0 {
		for i := 0; i < 3; i++ {
			U.Set(i, 2, -U.At(i, 2))
		}
	}
	rot = v3.Zeros(3)
	rot.Mul(&U, V.T())
	return rot, ctest, ctempla, nil
}

// Super superimposes test onto templa and returns the transformed copy of test.
func Super(test, templa *v3.Matrix) (*v3.Matrix, error) {
	rot, ct, ctm, err := RotatorTranslatorToSuper(test, templa)
	if err != nil {
		return nil, ErrDecorate(err, "Super")
	}
	ret := v3.Zeros(test.NVecs())
	ret.Copy(test)
	Transform(ret, rot, ct, ctm)
	return ret, nil
}

// RotatorAroundAxis returns the operator (row convention) that rotates
// points by theta radians around axis, counterclockwise when looking
// down the axis. It uses the Euler-Rodrigues formula.
func RotatorAroundAxis(axis Vec3, theta float64) *v3.Matrix {
	n := norm3(axis)
	if n <= appzero {
		panic(v3.ErrZeroVector)
	}
	axis = scale3(1/n, axis)
	a := math.Cos(theta / 2)
	s := math.Sin(theta / 2)
	b, c, d := axis[0]*s, axis[1]*s, axis[2]*s
	//column convention matrix, transposed as we fill it.
	op := []float64{
		a*a + b*b - c*c - d*d, 2 * (b*c + a*d), 2 * (b*d - a*c),
		2 * (b*c - a*d), a*a + c*c - b*b - d*d, 2 * (c*d + a*b),
		2 * (b*d + a*c), 2 * (c*d - a*b), a*a + d*d - b*b - c*c,
	}
	r, _ := v3.NewMatrix(op) //hardcoded size, can't fail
	return r
}

// RotatorToAlign returns the rotator (row convention) that takes the direction
// from onto the direction to. Antiparallel vectors are handled by a half turn
// around a deterministic perpendicular axis.
func RotatorToAlign(from, to Vec3) *v3.Matrix {
	axis := cross3(from, to)
	sin := norm3(axis)
	cos := dot3(from, to)
	if sin <= 1e-12*norm3(from)*norm3(to) {
		if cos >= 0 {
			id, _ := v3.NewMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
			return id
		}
		return RotatorAroundAxis(Perpendicular(from), math.Pi)
	}
	return RotatorAroundAxis(axis, math.Atan2(sin, cos))
}

// MomentTensor returns the inertia tensor of coords, with unit masses, around
// their centroid.
func MomentTensor(coords *v3.Matrix) *v3.Matrix {
	c := Centroid(coords)
	var I [9]float64
	for i := 0; i < coords.NVecs(); i++ {
		p := sub3(coords.Vec(i), c)
		x, y, z := p[0], p[1], p[2]
		I[0] += y*y + z*z
		I[4] += x*x + z*z
		I[8] += x*x + y*y
		I[1] -= x * y
		I[2] -= x * z
		I[5] -= y * z
	}
	I[3], I[6], I[7] = I[1], I[2], I[5]
	r, _ := v3.NewMatrix(I[:])
	return r
}

// PrincipalAxes returns the principal axes of inertia of coords, as rows,
// sorted by increasing moment, and the moments.
func PrincipalAxes(coords *v3.Matrix) (*v3.Matrix, []float64, error) {
	axes, moments, err := v3.EigenWrap(MomentTensor(coords), -1)
	if err != nil {
		return nil, nil, NewError(KindUnknown, "principal axes: %v", err)
	}
	return axes, moments, nil
}

// AlignPrincipalAxes centers coords on their centroid and rotates them, in place,
// so the principal axes of inertia lie along x, y and z, with the smallest moment
// along x. Axis signs are chosen to point along the positive target axis, so
// aligning an already aligned set is the identity.
func AlignPrincipalAxes(coords *v3.Matrix) error {
	Translate(coords, scale3(-1, Centroid(coords)))
	if coords.NVecs() < 2 {
		return nil
	}
	//the axes are recomputed after each rotation.
	targets := []Vec3{{1, 0, 0}, {0, 1, 0}}
	for k, t := range targets {
		axes, _, err := PrincipalAxes(coords)
		if err != nil {
			return err
		}
		a := axes.Vec(k)
		if dot3(a, t) < 0 {
			a = scale3(-1, a)
		}
		Rotate(coords, RotatorToAlign(a, t))
	}
	return nil
}

/*
 * geometric.go, part of stitch.
 *
 * Copyright 2024 Raul Mera <rauldotmeraatusachdotcl>
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

package chem

import (
	"fmt"
	"math"

	v3 "github.com/rmera/stitch/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Centroid returns a 1x3 matrix with the geometric center of the vectors in A.
func Centroid(A *v3.Matrix) *v3.Matrix {
	n := A.NVecs()
	ret := v3.Zeros(1)
	if n == 0 {
		return ret
	}
	col := make([]float64, n)
	for j := 0; j < 3; j++ {
		mat.Col(col, j, A.Dense)
		ret.Set(0, j, floats.Sum(col)/float64(n))
	}
	return ret
}

// RotatorTranslatorToSuper returns the rotation and translations that superimpose test onto
// templa, which must have the same number of vectors. The superposition of a set of coordinates
// C is obtained as (C + toOrigin) x rotation + toTemplate.
// The rotation is obtained with the Kabsch algorithm, and it is always a proper rotation,
// reflections are never returned.
func RotatorTranslatorToSuper(test, templa *v3.Matrix) (rotation, toOrigin, toTemplate *v3.Matrix, err error) {
	tmr := templa.NVecs()
	tsr := test.NVecs()
	if tmr != tsr || tmr == 0 {
		return nil, nil, nil, CError{msg: fmt.Sprintf("Ill-formed matrices: %d and %d vectors", tsr, tmr), deco: []string{"RotatorTranslatorToSuper"}}
	}
	ctest := Centroid(test)
	ctempla := Centroid(templa)
	dtest := v3.Zeros(tsr)
	dtest.SubVec(test, ctest)
	dtempla := v3.Zeros(tmr)
	dtempla.SubVec(templa, ctempla)
	H := mat.NewDense(3, 3, nil)
	H.Mul(dtest.Dense.T(), dtempla.Dense)
	var svd mat.SVD
	if ok := svd.Factorize(H, mat.SVDFull); !ok {
		return nil, nil, nil, CError{msg: "SVD factorization failed", deco: []string{"RotatorTranslatorToSuper"}}
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	//correction so we get a rotation and not a reflection
	D := mat.NewDiagDense(3, []float64{1, 1, 1})
	if v3.Det(&U)*v3.Det(&V) < 0 {
		D.SetDiag(2, -1)
	}
	rotation = v3.Zeros(3)
	rotation.Mul(&U, D)
	rotation.Mul(rotation, V.T())
	ctest.Scale(-1, ctest.Dense)
	return rotation, ctest, ctempla, nil
}

// Super superimposes the atoms in the testlst list of test onto the atoms of templalst in templa, and
// applies the resulting transformation to all of test. test is modified in place and also returned.
// If the lists are nil, all atoms are used.
func Super(test, templa *v3.Matrix, testlst, templalst []int) (*v3.Matrix, error) {
	ctest := test
	ctempla := templa
	if testlst != nil {
		ctest = v3.Zeros(len(testlst))
		if err := ctest.SomeVecsSafe(test, testlst); err != nil {
			return nil, errDecorate(err, "Super")
		}
	}
	if templalst != nil {
		ctempla = v3.Zeros(len(templalst))
		if err := ctempla.SomeVecsSafe(templa, templalst); err != nil {
			return nil, errDecorate(err, "Super")
		}
	}
	rotation, toOrigin, toTemplate, err := RotatorTranslatorToSuper(ctest, ctempla)
	if err != nil {
		return nil, errDecorate(err, "Super")
	}
	test.AddVec(test, toOrigin)
	test.Mul(test, rotation)
	test.AddVec(test, toTemplate)
	return test, nil
}

// RMSD returns the root mean square deviation between test and templa. If indexes is given,
// only those atoms are considered, in both matrices.
func RMSD(test, templa *v3.Matrix, indexes ...[]int) (float64, error) {
	if test.NVecs() != templa.NVecs() {
		return 0, CError{msg: fmt.Sprintf("Mismatched matrices: %d and %d vectors", test.NVecs(), templa.NVecs()), deco: []string{"RMSD"}}
	}
	var a, b *v3.Matrix
	if len(indexes) > 0 && indexes[0] != nil {
		a = v3.Zeros(len(indexes[0]))
		b = v3.Zeros(len(indexes[0]))
		if err := a.SomeVecsSafe(test, indexes[0]); err != nil {
			return 0, errDecorate(err, "RMSD")
		}
		if err := b.SomeVecsSafe(templa, indexes[0]); err != nil {
			return 0, errDecorate(err, "RMSD")
		}
	} else {
		a = test.Clone()
		b = templa.Clone()
	}
	n := a.NVecs()
	if n == 0 {
		return 0, CError{msg: "No atoms to compare", deco: []string{"RMSD"}}
	}
	d := floats.Distance(a.RawMatrix().Data, b.RawMatrix().Data, 2)
	return d / math.Sqrt(float64(n)), nil
}

// cosd returns the cosine of an angle in degrees, exactly 0 for right angles.
func cosd(angle float64) float64 {
	if angle == 90 {
		return 0
	}
	return math.Cos(angle * math.Pi / 180)
}

// CellToBox puts in box the 3 box vectors, one after the other, of the unit cell with lengths
// a, b, c and angles alpha, beta and gamma, in degrees. The first vector is along x and
// the second one in the xy plane. box must have at least 9 elements.
func CellToBox(box []float64, a, b, c, alpha, beta, gamma float64) {
	cosa, cosb, cosg := cosd(alpha), cosd(beta), cosd(gamma)
	sing := math.Sqrt(1 - cosg*cosg)
	cx := c * cosb
	cy := 0.0
	if sing > 0 {
		cy = c * (cosa - cosb*cosg) / sing
	}
	cz := math.Sqrt(math.Max(c*c-cx*cx-cy*cy, 0))
	copy(box, []float64{a, 0, 0, b * cosg, b * sing, 0, cx, cy, cz})
}

// BoxToCell returns the lengths and angles (in degrees) of the unit cell given
// by the 3 box vectors in box. Angles involving a zero-length vector are 90.
func BoxToCell(box []float64) (a, b, c, alpha, beta, gamma float64) {
	v := [][]float64{box[0:3], box[3:6], box[6:9]}
	a, b, c = floats.Norm(v[0], 2), floats.Norm(v[1], 2), floats.Norm(v[2], 2)
	angle := func(i, j int, li, lj float64) float64 {
		dot := floats.Dot(v[i], v[j])
		if li == 0 || lj == 0 || dot == 0 {
			return 90
		}
		cos := math.Max(-1, math.Min(1, dot/(li*lj)))
		return math.Acos(cos) * 180 / math.Pi
	}
	return a, b, c, angle(1, 2, b, c), angle(0, 2, a, c), angle(0, 1, a, b)
}

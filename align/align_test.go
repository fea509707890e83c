/*
 * align_test.go, part of stitch.
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

package align

import (
	"math"
	"testing"

	v3 "github.com/rmera/stitch/v3"
	"gonum.org/v1/gonum/floats"
)

// testFrame returns a non-planar set of n points.
func testFrame(n int) *v3.Matrix {
	m := v3.Zeros(n)
	for i := 0; i < n; i++ {
		f := float64(i)
		m.Set(i, 0, 1.3*f+math.Sin(f))
		m.Set(i, 1, 0.5*f*f-2)
		m.Set(i, 2, math.Cos(2*f)*3)
	}
	return m
}

// moved returns a copy of A rotated by angle around z and around x, then shifted.
func moved(A *v3.Matrix, angle float64, shift [3]float64) *v3.Matrix {
	ret := A.Clone()
	c, s := math.Cos(angle), math.Sin(angle)
	for i := 0; i < ret.NVecs(); i++ {
		x, y, z := ret.At(i, 0), ret.At(i, 1), ret.At(i, 2)
		x, y = c*x-s*y, s*x+c*y
		y, z = c*y-s*z, s*y+c*z
		ret.Set(i, 0, x+shift[0])
		ret.Set(i, 1, y+shift[1])
		ret.Set(i, 2, z+shift[2])
	}
	return ret
}

func testFrames(n int) []*v3.Matrix {
	ref := testFrame(8)
	frames := []*v3.Matrix{ref.Clone()}
	for i := 1; i < n; i++ {
		frames = append(frames, moved(ref, 0.3*float64(i), [3]float64{float64(i), -2, 0.5 * float64(i)}))
	}
	return frames
}

func TestToFirstFrame(Te *testing.T) {
	for _, cpus := range []int{1, 3} {
		frames := testFrames(6)
		first := frames[0].Clone()
		o := DefaultOptions()
		o.Cpus(cpus)
		rmsd, err := ToFirstFrame(frames, []int{0, 1, 2, 3, 4, 5, 6, 7}, o)
		if err != nil {
			Te.Fatal(err)
		}
		if len(rmsd) != 6 || rmsd[0] != 0 {
			Te.Errorf("unexpected RMSD series %v", rmsd)
		}
		if !floats.Equal(frames[0].RawMatrix().Data, first.RawMatrix().Data) {
			Te.Error("frame 0 was modified")
		}
		for i, f := range frames {
			if !floats.EqualApprox(f.RawMatrix().Data, first.RawMatrix().Data, 1e-8) {
				Te.Errorf("cpus %d: frame %d not superposed onto frame 0", cpus, i)
			}
			if rmsd[i] > 1e-8 {
				Te.Errorf("cpus %d: frame %d RMSD %g, want ~0", cpus, i, rmsd[i])
			}
		}
	}
}

// A frame where an atom outside the selection moves is superposed using the
// others, and the moved atom keeps its displacement.
func TestToFirstFrameSubset(Te *testing.T) {
	frames := testFrames(2)
	ref := frames[0].Clone()
	frames[1] = moved(ref, 0, [3]float64{0, 0, 0})
	frames[1].Set(7, 0, frames[1].At(7, 0)+5)
	frames[1] = moved(frames[1], 1.1, [3]float64{3, 3, 3})
	rmsd, err := ToFirstFrame(frames, []int{0, 1, 2, 3, 4, 5, 6})
	if err != nil {
		Te.Fatal(err)
	}
	if rmsd[1] > 1e-8 {
		Te.Errorf("RMSD over the selection is %g, want ~0", rmsd[1])
	}
	d := frames[1].At(7, 0) - ref.At(7, 0)
	if math.Abs(d-5) > 1e-8 {
		Te.Errorf("the unselected atom should be displaced by 5 in x, got %g", d)
	}
}

func TestToFirstFrameErrors(Te *testing.T) {
	if _, err := ToFirstFrame(nil, []int{0}); err == nil {
		Te.Error("no frames should fail")
	}
	if _, err := ToFirstFrame(testFrames(2), nil); err == nil {
		Te.Error("no atoms should fail")
	}
	if _, err := ToFirstFrame(testFrames(2), []int{0, 8}); err == nil {
		Te.Error("index out of range should fail")
	}
	frames := testFrames(2)
	frames = append(frames, testFrame(5))
	if _, err := ToFirstFrame(frames, []int{0, 1, 2}); err == nil {
		Te.Error("a frame with a different atom count should fail")
	}
	rmsd, err := ToFirstFrame(testFrames(1), []int{0, 1, 2})
	if err != nil || len(rmsd) != 1 || rmsd[0] != 0 {
		Te.Errorf("single frame: got %v, %v", rmsd, err)
	}
}

func TestSummarize(Te *testing.T) {
	s := Summarize([]float64{0, 1, 3, 2})
	if s.Frames != 4 || s.Mean != 1.5 || s.Max != 3 || s.MaxFrame != 2 {
		Te.Errorf("unexpected summary %+v", s)
	}
	// sample standard deviation of 0,1,2,3
	if math.Abs(s.StdDev-math.Sqrt(5.0/3.0)) > 1e-12 {
		Te.Errorf("std. dev. %g, want %g", s.StdDev, math.Sqrt(5.0/3.0))
	}
	if e := Summarize(nil); e.Frames != 0 || e.MaxFrame != -1 {
		Te.Errorf("unexpected empty summary %+v", e)
	}
	if one := Summarize([]float64{2}); one.StdDev != 0 || one.Mean != 2 {
		Te.Errorf("unexpected single-value summary %+v", one)
	}
}

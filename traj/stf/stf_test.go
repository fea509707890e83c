/*
 * stf_test.go, part of stitch.
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

package stf

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/stitch/chem"
	v3 "github.com/rmera/stitch/v3"
)

func frame(natoms, n int) *v3.Matrix {
	c := v3.Zeros(natoms)
	for i := 0; i < natoms; i++ {
		c.Set(i, 0, float64(n)+0.123*float64(i))
		c.Set(i, 1, -float64(n)*1.25+float64(i))
		c.Set(i, 2, float64(i*n)*0.0371)
	}
	return c
}

func TestSTFRoundTrip(Te *testing.T) {
	dir := Te.TempDir()
	for _, ext := range []string{".stf", ".stz", ".stl", ".str"} {
		name := filepath.Join(dir, "test"+ext)
		w, err := NewWriter(name, 6, map[string]string{"prec": "3", "source": "test"})
		if err != nil {
			Te.Fatal(err)
		}
		for i := 0; i < 4; i++ {
			box := []float64{10, 0, 0, 0, 11, 0, 0, 0, 12.5}
			if err := w.WNext(frame(6, i), box); err != nil {
				Te.Fatal(err)
			}
		}
		if err := w.CloseErr(); err != nil {
			Te.Fatal(err)
		}
		r, header, err := New(name)
		if err != nil {
			Te.Fatalf("%s: %v", ext, err)
		}
		if r.Len() != 6 || r.Prec() != 3 || header["source"] != "test" {
			Te.Errorf("%s: wrong header: %d atoms, prec %d, %v", ext, r.Len(), r.Prec(), header)
		}
		out := v3.Zeros(6)
		box := make([]float64, 9)
		n := 0
		for ; ; n++ {
			var target *v3.Matrix
			if n != 2 {
				target = out
			}
			err := r.Next(target, box)
			if err != nil {
				if _, ok := err.(chem.LastFrameError); ok {
					break
				}
				Te.Fatalf("%s: %v", ext, err)
			}
			if target == nil {
				continue
			}
			want := frame(6, n)
			for a := 0; a < 6; a++ {
				for j := 0; j < 3; j++ {
					if d := math.Abs(out.At(a, j) - want.At(a, j)); d > 0.5e-3+1e-9 {
						Te.Errorf("%s: frame %d atom %d coordinate %d off by %g", ext, n, a, j, d)
					}
				}
			}
			if box[8] != 12.5 {
				Te.Errorf("%s: wrong box %v", ext, box)
			}
		}
		if n != 4 {
			Te.Errorf("%s: read %d frames, expected 4", ext, n)
		}
	}
}

func TestSTFDefaultPrecision(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "default.stf")
	w, err := NewWriter(name, 2, nil)
	if err != nil {
		Te.Fatal(err)
	}
	c, _ := v3.NewMatrix([]float64{1.234, 2.345, -3.456, 0.004, 0.006, 10})
	w.WNext(c)
	w.Close()
	r, header, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	if header["prec"] != "2" {
		Te.Errorf("Expected the precision in the header, got %v", header)
	}
	out := v3.Zeros(2)
	if err := r.Next(out); err != nil {
		Te.Fatal(err)
	}
	if out.At(0, 0) != 1.23 || out.At(0, 2) != -3.46 || out.At(1, 1) != 0.01 {
		Te.Errorf("Unexpected rounding: %v", out)
	}
}

func TestSTFErrors(Te *testing.T) {
	dir := Te.TempDir()
	if _, err := NewWriter(filepath.Join(dir, "zero.stf"), 0, nil); err == nil {
		Te.Errorf("Expected an error for a writer with no atoms")
	}
	name := filepath.Join(dir, "mismatch.stf")
	w, err := NewWriter(name, 3, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if err := w.WNext(v3.Zeros(2)); err == nil {
		Te.Errorf("Expected an error writing a frame with the wrong number of atoms")
	}
	w.WNext(frame(3, 0))
	w.Close()
	if err := w.WNext(frame(3, 1)); err == nil {
		Te.Errorf("Expected an error writing to a closed trajectory")
	}
	//A valid lzw stream whose only frame is short of atoms.
	short := filepath.Join(dir, "short.stl")
	sw, err := NewWriter(short, 2, nil)
	if err != nil {
		Te.Fatal(err)
	}
	sw.h.WriteString("100 200 300\n*\n")
	sw.Close()
	r, _, err := New(short)
	if err != nil {
		Te.Fatal(err)
	}
	err = r.Next(nil)
	if err == nil {
		Te.Fatal("Expected an error for a frame with too few atoms")
	}
	if _, ok := err.(chem.LastFrameError); ok {
		Te.Errorf("A short frame should not look like the end of the trajectory")
	}
	if r.Readable() {
		Te.Errorf("Trajectory should not be readable after a format error")
	}
	if _, _, err := New(filepath.Join(dir, "missing.stf")); err == nil {
		Te.Errorf("Expected an error for a missing file")
	}
	junk := filepath.Join(dir, "junk.stz")
	os.WriteFile(junk, []byte("not gzip data"), 0o644)
	if _, _, err := New(junk); err == nil {
		Te.Errorf("Expected an error for a file that is not gzip-compressed")
	}
}

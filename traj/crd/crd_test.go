/*
 * crd_test.go, part of stitch.
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

package crd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/rmera/stitch/chem"
	v3 "github.com/rmera/stitch/v3"
)

func value(n, atom, dim int) float64 {
	return float64(n) + 0.5*float64(atom) - 1.25*float64(dim)
}

// an Amber trajectory with nframes frames of natoms atoms, with a box line after
// each frame if box is true.
func crdText(natoms, nframes int, box bool) string {
	var b strings.Builder
	b.WriteString("generated trajectory\n")
	for n := 0; n < nframes; n++ {
		for j := 0; j < 3*natoms; j++ {
			fmt.Fprintf(&b, "%8.3f", value(n, j/3, j%3))
			if (j+1)%10 == 0 || j == 3*natoms-1 {
				b.WriteString("\n")
			}
		}
		if box {
			fmt.Fprintf(&b, "%8.3f%8.3f%8.3f\n", 30.0+float64(n), 31.0, 32.0)
		}
	}
	return b.String()
}

func writeFile(Te *testing.T, name, text string) {
	Te.Helper()
	if err := os.WriteFile(name, []byte(text), 0o644); err != nil {
		Te.Fatal(err)
	}
}

func readAll(Te *testing.T, name string, natoms int) ([]*v3.Matrix, [][]float64) {
	Te.Helper()
	r, err := New(name, natoms)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	var frames []*v3.Matrix
	var boxes [][]float64
	for {
		c := v3.Zeros(r.Len())
		box := make([]float64, 9)
		err := r.Next(c, box)
		if err != nil {
			if _, ok := err.(chem.LastFrameError); ok {
				break
			}
			Te.Fatal(err)
		}
		frames = append(frames, c)
		boxes = append(boxes, box)
	}
	return frames, boxes
}

func checkFrames(Te *testing.T, frames []*v3.Matrix, natoms, nframes int) {
	Te.Helper()
	if len(frames) != nframes {
		Te.Fatalf("Read %d frames, expected %d", len(frames), nframes)
	}
	for n, f := range frames {
		for i := 0; i < natoms; i++ {
			for j := 0; j < 3; j++ {
				if got, want := f.At(i, j), value(n, i, j); got != want {
					Te.Fatalf("Frame %d atom %d dim %d: %f, expected %f", n, i, j, got, want)
				}
			}
		}
	}
}

func TestRead(Te *testing.T) {
	dir := Te.TempDir()
	//4 atoms fill exactly 12 fields, 7 atoms fill 21, and 10 atoms, 3 full lines.
	for _, natoms := range []int{1, 4, 7, 10} {
		for _, box := range []bool{false, true} {
			if natoms == 1 && box {
				continue
			}
			name := filepath.Join(dir, fmt.Sprintf("t%d-%v.mdcrd", natoms, box))
			writeFile(Te, name, crdText(natoms, 5, box))
			frames, boxes := readAll(Te, name, natoms)
			checkFrames(Te, frames, natoms, 5)
			for n, b := range boxes {
				want := make([]float64, 9)
				if box {
					want = []float64{30 + float64(n), 0, 0, 0, 31, 0, 0, 0, 32}
				}
				for i := range want {
					if b[i] != want[i] {
						Te.Errorf("%d atoms, frame %d: box %v, expected %v", natoms, n, b, want)
						break
					}
				}
			}
		}
	}
}

func TestReadGzip(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "t.mdcrd.gz")
	f, err := os.Create(name)
	if err != nil {
		Te.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(crdText(5, 4, true))); err != nil {
		Te.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		Te.Fatal(err)
	}
	if err := f.Close(); err != nil {
		Te.Fatal(err)
	}
	frames, _ := readAll(Te, name, 5)
	checkFrames(Te, frames, 5, 4)
}

func TestSkip(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "t.crd")
	writeFile(Te, name, crdText(6, 5, true))
	r, err := New(name, 6)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	if r.Title() != "generated trajectory" {
		Te.Errorf("Wrong title %q", r.Title())
	}
	for i := 0; i < 3; i++ {
		if err := r.Next(nil); err != nil {
			Te.Fatal(err)
		}
	}
	c := v3.Zeros(6)
	if err := r.Next(c); err != nil {
		Te.Fatal(err)
	}
	if c.At(2, 1) != value(3, 2, 1) {
		Te.Errorf("Skipping didn't leave the reader at frame 3")
	}
}

func TestErrors(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "t.mdcrd")
	writeFile(Te, name, crdText(4, 2, false))
	if _, err := New(name, 0); err == nil {
		Te.Errorf("Expected an error for 0 atoms")
	}
	if _, err := New(filepath.Join(dir, "nothing.mdcrd"), 4); err == nil {
		Te.Errorf("Expected an error for a missing file")
	}
	//the frames have 12 values in two lines, so 5 atoms take lines from the second frame.
	r, err := New(name, 5)
	if err != nil {
		Te.Fatal(err)
	}
	c := v3.Zeros(5)
	if err := r.Next(c); err == nil {
		Te.Errorf("Expected an error reading with the wrong number of atoms")
	}
	r.Close()

	text := crdText(4, 2, false)
	truncated := text[:len(text)-20]
	writeFile(Te, name, truncated)
	r, err = New(name, 4)
	if err != nil {
		Te.Fatal(err)
	}
	defer r.Close()
	if err := r.Next(nil); err != nil {
		Te.Fatal(err)
	}
	err = r.Next(nil)
	if err == nil {
		Te.Fatal("Expected an error for an incomplete frame")
	}
	if _, ok := err.(chem.LastFrameError); ok {
		Te.Errorf("An incomplete frame should not look like the end of the trajectory")
	}
	if e, ok := err.(Error); !ok || !e.Critical() {
		Te.Errorf("Expected a critical Error, got %v", err)
	}
}

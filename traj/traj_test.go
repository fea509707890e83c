/*
 * traj_test.go, part of stitch.
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

package traj

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/stitch/chem"
	v3 "github.com/rmera/stitch/v3"
)

// a molecule with nframes frames, where every coordinate of frame i is i.
func countingMolecule(Te *testing.T, natoms, nframes int) *chem.Molecule {
	Te.Helper()
	ats := make([]*chem.Atom, natoms)
	for i := range ats {
		ats[i] = &chem.Atom{Name: "CA", MolName: "ALA", MolID: i + 1, Symbol: "C"}
	}
	frames := make([]*v3.Matrix, nframes)
	for i := range frames {
		frames[i] = v3.Zeros(natoms)
		for a := 0; a < natoms; a++ {
			for j := 0; j < 3; j++ {
				frames[i].Set(a, j, float64(i))
			}
		}
	}
	mol, err := chem.NewMolecule(chem.NewTopology(ats), frames, nil)
	if err != nil {
		Te.Fatal(err)
	}
	return mol
}

func TestFormat(Te *testing.T) {
	cases := map[string]string{
		"a.dcd":     "dcd",
		"a.DCD":     "dcd",
		"a.dcd.gz":  "dcd",
		"a.dcd.zst": "dcd",
		"a.stf":     "stf",
		"a.stz":     "stf",
		"a.pdb":     "pdb",
		"a.cif":     "pdb",
		"a.mdcrd":   "crd",
		"a.crd.gz":  "crd",
		"a.trj":     "crd",
		"a.crd.zst": "",
		"a.xtc":     "",
		"a.txt.gz":  "",
		"noext":     "",
	}
	for name, want := range cases {
		if got := Format(name); got != want {
			Te.Errorf("Format(%q) = %q, expected %q", name, got, want)
		}
	}
}

func TestPrefixFrameCounts(Te *testing.T) {
	for _, c := range []struct{ last, stride, want int }{
		{0, 1, 1},
		{4, 1, 5},
		{4, 2, 3},
		{5, 2, 3},
		{5, 3, 2},
		{6, 3, 3},
		{9, 10, 1},
		{9, 1, 10},
	} {
		mol := countingMolecule(Te, 3, 10)
		T, err := Prefix(mol, "mem", c.last, c.stride)
		if err != nil {
			Te.Fatalf("last %d stride %d: %v", c.last, c.stride, err)
		}
		if T.NFrames() != c.want {
			Te.Errorf("last %d stride %d: got %d frames, expected %d", c.last, c.stride, T.NFrames(), c.want)
		}
		for k, f := range T.Frames {
			if raw := int(f.At(0, 0)); raw != k*c.stride {
				Te.Errorf("last %d stride %d: frame %d is raw frame %d, expected %d", c.last, c.stride, k, raw, k*c.stride)
			}
		}
	}
}

func TestPrefixShort(Te *testing.T) {
	mol := countingMolecule(Te, 2, 3)
	_, err := Prefix(mol, "mem", 3, 1)
	var short *ShortError
	if !errors.As(err, &short) {
		Te.Fatalf("Expected a ShortError, got %v", err)
	}
	if short.Need != 4 || short.Got != 3 {
		Te.Errorf("Wrong ShortError %+v", short)
	}
	if _, err := Prefix(countingMolecule(Te, 2, 3), "mem", 1, 0); err == nil {
		Te.Errorf("Expected an error for stride 0")
	}
}

// writes an Amber trajectory where every coordinate of frame i is i.
func writeCrd(Te *testing.T, name string, natoms, nframes int) {
	Te.Helper()
	var b strings.Builder
	b.WriteString("test trajectory\n")
	for i := 0; i < nframes; i++ {
		for j := 0; j < 3*natoms; j++ {
			fmt.Fprintf(&b, "%8.3f", float64(i))
			if (j+1)%10 == 0 || j == 3*natoms-1 {
				b.WriteString("\n")
			}
		}
	}
	if err := os.WriteFile(name, []byte(b.String()), 0o644); err != nil {
		Te.Fatal(err)
	}
}

func TestLoadPrefixCrd(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "seg.mdcrd")
	writeCrd(Te, name, 4, 6)
	T, err := LoadPrefix(name, 4, 5, 2)
	if err != nil {
		Te.Fatal(err)
	}
	if T.NFrames() != 3 {
		Te.Fatalf("Got %d frames, expected 3", T.NFrames())
	}
	for k, f := range T.Frames {
		if raw := int(f.At(3, 2)); raw != 2*k {
			Te.Errorf("Frame %d is raw frame %d, expected %d", k, raw, 2*k)
		}
	}
	_, err = LoadPrefix(name, 4, 6, 1)
	var short *ShortError
	if !errors.As(err, &short) {
		Te.Errorf("Expected a ShortError, got %v", err)
	}
	if _, err := Open(name); err == nil {
		Te.Errorf("Expected an error opening an Amber trajectory without the number of atoms")
	}
}

func TestTrajectoryOwnsFrames(Te *testing.T) {
	T := NewTrajectory(2)
	f := v3.Zeros(2)
	f.Set(0, 0, 1)
	if err := T.Append(f); err != nil {
		Te.Fatal(err)
	}
	f.Set(0, 0, 5)
	if T.Frames[0].At(0, 0) != 1 {
		Te.Errorf("Trajectory frame changed with its source")
	}
	if err := T.Append(v3.Zeros(3)); err == nil {
		Te.Errorf("Expected an error appending a frame with the wrong number of atoms")
	}
	o := NewTrajectory(2)
	o.Append(v3.Zeros(2), []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	if err := T.Join(o); err != nil {
		Te.Fatal(err)
	}
	if T.NFrames() != 2 || T.Box(0) != nil || T.Box(1)[4] != 1 {
		Te.Errorf("Wrong joined trajectory: %d frames, boxes %v", T.NFrames(), T.Boxes)
	}
	if err := T.Join(NewTrajectory(4)); err == nil {
		Te.Errorf("Expected an error joining trajectories with different atom counts")
	}
}

func TestSaveAndLoad(Te *testing.T) {
	dir := Te.TempDir()
	T, err := Prefix(countingMolecule(Te, 4, 6), "mem", 5, 1)
	if err != nil {
		Te.Fatal(err)
	}
	for _, name := range []string{"out.dcd", "out.stf"} {
		full := filepath.Join(dir, name)
		if err := Save(full, T); err != nil {
			Te.Fatal(err)
		}
		L, err := LoadPrefix(full, 4, 5, 2)
		if err != nil {
			Te.Fatal(err)
		}
		if L.NFrames() != 3 || L.Frames[2].At(3, 1) != 4 {
			Te.Errorf("%s: unexpected content, %d frames", name, L.NFrames())
		}
		if st, err := os.Stat(full); err != nil || st.Mode().Perm() != 0o644 {
			Te.Errorf("%s: expected a world-readable file, got %v (%v)", name, st.Mode(), err)
		}
		var ac *AtomCountError
		if _, err := LoadPrefix(full, 5, 0, 1); !errors.As(err, &ac) {
			Te.Errorf("%s: expected an AtomCountError, got %v", name, err)
		}
	}
	bad := filepath.Join(dir, "out.xtc")
	if err := Save(bad, T); err == nil {
		Te.Errorf("Expected an error saving to an unsupported format")
	}
	if err := Save(filepath.Join(dir, "empty.dcd"), NewTrajectory(4)); err == nil {
		Te.Errorf("Expected an error saving an empty trajectory")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		Te.Fatal(err)
	}
	if len(entries) != 2 {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		Te.Errorf("Expected only the two outputs in the directory, found %v", names)
	}
	if _, err := Open(filepath.Join(dir, "nothing.xyz")); err == nil {
		Te.Errorf("Expected an error opening an unsupported format")
	}
}

// A periodic box read from a DCD unit cell must survive a conversion to STF.
func TestSaveBoxes(Te *testing.T) {
	dir := Te.TempDir()
	cells := [][6]float64{{30, 31, 32, 90, 90, 90}, {40, 40, 40, 60, 60, 90}, {20, 25, 30, 80, 95, 110}}
	T := NewTrajectory(4)
	for i, c := range cells {
		f := v3.Zeros(4)
		f.Set(2, 1, float64(i))
		box := make([]float64, 9)
		chem.CellToBox(box, c[0], c[1], c[2], c[3], c[4], c[5])
		if err := T.Append(f, box); err != nil {
			Te.Fatal(err)
		}
	}
	dcdname := filepath.Join(dir, "cell.dcd")
	if err := Save(dcdname, T); err != nil {
		Te.Fatal(err)
	}
	fromDCD, err := LoadPrefix(dcdname, 4, 2, 1)
	if err != nil {
		Te.Fatal(err)
	}
	stfname := filepath.Join(dir, "cell.stf")
	if err := Save(stfname, fromDCD); err != nil {
		Te.Fatal(err)
	}
	fromSTF, err := LoadPrefix(stfname, 4, 2, 1)
	if err != nil {
		Te.Fatal(err)
	}
	for name, L := range map[string]*Trajectory{"dcd": fromDCD, "stf": fromSTF} {
		for i := range cells {
			got := L.Box(i)
			if len(got) != 9 {
				Te.Fatalf("%s: frame %d has box %v", name, i, got)
			}
			for j := range got {
				if math.Abs(got[j]-T.Box(i)[j]) > 1e-3 {
					Te.Errorf("%s: frame %d box %v, expected %v", name, i, got, T.Box(i))
					break
				}
			}
			a, b, c, alpha, beta, gamma := chem.BoxToCell(got)
			if b == 0 || c == 0 || math.Abs(a*b*c) < 1 || alpha == 0 || beta == 0 || gamma == 0 {
				Te.Errorf("%s: frame %d has a degenerate box %v", name, i, got)
			}
		}
	}
	//without boxes, the DCD has no unit cell and nothing comes back.
	plain := NewTrajectory(4)
	plain.Append(v3.Zeros(4))
	plainname := filepath.Join(dir, "plain.dcd")
	if err := Save(plainname, plain); err != nil {
		Te.Fatal(err)
	}
	L, err := LoadPrefix(plainname, 4, 0, 1)
	if err != nil {
		Te.Fatal(err)
	}
	if L.Boxes != nil {
		Te.Errorf("Expected no boxes, got %v", L.Boxes)
	}
}

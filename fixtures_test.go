/*
 * fixtures_test.go, part of stitch.
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

package stitch

import (
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/rmera/stitch/chem"
	"github.com/rmera/stitch/labels"
	"github.com/rmera/stitch/traj"
	v3 "github.com/rmera/stitch/v3"
)

// roundTrip is a 4-segment record: segment 1 is spawned from state 0, segment 2 from
// state 2 and segment 3 from state 1.
func roundTrip() labels.Record {
	return labels.Record{
		{0},
		{0, 1, 2},
		{2, 3},
		{1, 5, 5, 7},
	}
}

// an alanine and a water.
func testTopology() *chem.Topology {
	mk := func(id int, name, res string, resid int, chain, symbol string) *chem.Atom {
		m, _ := chem.Mass(symbol)
		return &chem.Atom{ID: id, Name: name, MolName: res, MolID: resid, Chain: chain, Symbol: symbol, Mass: m, Occupancy: 1}
	}
	ats := []*chem.Atom{
		mk(1, "N", "ALA", 1, "A", "N"),
		mk(2, "CA", "ALA", 1, "A", "C"),
		mk(3, "C", "ALA", 1, "A", "C"),
		mk(4, "O", "ALA", 1, "A", "O"),
		mk(5, "CB", "ALA", 1, "A", "C"),
		mk(6, "O", "HOH", 2, "W", "O"),
	}
	ats[5].Het = true
	return chem.NewTopology(ats)
}

var basePositions = [][3]float64{
	{0, 0, 0},
	{1.45, 0, 0},
	{2.0, 1.4, 0},
	{1.3, 2.4, 0.3},
	{2.0, -0.8, 1.2},
	{5, 5, 5},
}

// frameCoords returns the coordinates for frame f of segment s: the base positions
// shifted along x by 10*s+f, so atom 0 has x = 10*s+f.
func frameCoords(s, f int) *v3.Matrix {
	m := v3.Zeros(len(basePositions))
	for i, p := range basePositions {
		m.Set(i, 0, p[0]+float64(10*s+f))
		m.Set(i, 1, p[1])
		m.Set(i, 2, p[2])
	}
	return m
}

// rotated returns a copy of A rotated around z by angle.
func rotated(A *v3.Matrix, angle float64) *v3.Matrix {
	ret := A.Clone()
	c, s := math.Cos(angle), math.Sin(angle)
	for i := 0; i < ret.NVecs(); i++ {
		x, y := ret.At(i, 0), ret.At(i, 1)
		ret.Set(i, 0, c*x-s*y)
		ret.Set(i, 1, s*x+c*y)
	}
	return ret
}

// writeTraj writes frames to the trajectory file name.
func writeTraj(Te *testing.T, name string, frames []*v3.Matrix) {
	Te.Helper()
	w, err := traj.Create(name, frames[0].NVecs())
	if err != nil {
		Te.Fatal(err)
	}
	for _, f := range frames {
		if err := w.WNext(f); err != nil {
			Te.Fatal(err)
		}
	}
	if err := w.CloseErr(); err != nil {
		Te.Fatal(err)
	}
}

// writeSegments writes, in dir, one DCD file per segment of rec, with as many
// frames as the segment has labels, and returns their names, in order.
func writeSegments(Te *testing.T, dir string, rec labels.Record) []string {
	Te.Helper()
	names := make([]string, len(rec))
	for s, seg := range rec {
		names[s] = filepath.Join(dir, fmt.Sprintf("seg-%03d.dcd", s))
		n := len(seg)
		if n == 0 {
			n = 1
		}
		frames := make([]*v3.Matrix, n)
		for f := range frames {
			frames[f] = frameCoords(s, f)
		}
		writeTraj(Te, names[s], frames)
	}
	return names
}

// frameIDs returns the x coordinate of atom 0 of each frame, rounded,
// i.e. 10*segment+frame for frames written by writeSegments.
func frameIDs(t *traj.Trajectory) []int {
	ret := make([]int, t.NFrames())
	for i, f := range t.Frames {
		ret[i] = int(math.Round(f.At(0, 0)))
	}
	return ret
}

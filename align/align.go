/*
 * align.go, part of stitch.
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

// Package align superposes the frames of a trajectory onto its first frame, and
// summarizes the resulting RMSD series.
package align

import (
	"fmt"
	"math"
	"sync"

	"github.com/rmera/stitch/chem"
	v3 "github.com/rmera/stitch/v3"
	"gonum.org/v1/gonum/stat"
)

// ToFirstFrame superposes, in place, every frame onto frame 0, using the atoms in
// indexes to obtain the rigid transformation, which is then applied to the whole frame.
// Frame 0 is never modified. It returns the RMSD of each frame against frame 0,
// over the atoms in indexes, after the superposition (the first element is always 0).
// An optional Options sets how many goroutines are used. Without it, frames are
// superposed one after the other, which is what stitch.Assemble does; the
// worker pool is only for library callers that ask for it.
func ToFirstFrame(frames []*v3.Matrix, indexes []int, o ...*Options) ([]float64, error) {
	opts := DefaultOptions()
	if len(o) > 0 && o[0] != nil {
		opts = o[0]
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("align.ToFirstFrame: no frames")
	}
	if len(indexes) == 0 {
		return nil, fmt.Errorf("align.ToFirstFrame: no atoms selected for the superposition")
	}
	natoms := frames[0].NVecs()
	for _, v := range indexes {
		if v < 0 || v >= natoms {
			return nil, fmt.Errorf("align.ToFirstFrame: atom index %d out of range for %d atoms", v, natoms)
		}
	}
	for i, f := range frames {
		if f.NVecs() != natoms {
			return nil, fmt.Errorf("align.ToFirstFrame: frame %d has %d atoms, frame 0 has %d", i, f.NVecs(), natoms)
		}
	}
	ref := frames[0].Clone()
	rmsd := make([]float64, len(frames))
	errs := make([]error, len(frames))
	work := func(i int) {
		if _, err := chem.Super(frames[i], ref, indexes, indexes); err != nil {
			errs[i] = err
			return
		}
		rmsd[i], errs[i] = chem.RMSD(frames[i], ref, indexes)
	}
	cpus := opts.Cpus()
	if cpus > len(frames)-1 {
		cpus = len(frames) - 1
	}
	if cpus <= 1 {
		for i := 1; i < len(frames); i++ {
			work(i)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < cpus; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					work(i)
				}
			}()
		}
		for i := 1; i < len(frames); i++ {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("align.ToFirstFrame: frame %d: %w", i, err)
		}
	}
	return rmsd, nil
}

// Summary describes an RMSD series.
type Summary struct {
	Frames   int
	Mean     float64
	StdDev   float64
	Max      float64
	MaxFrame int
}

func (S Summary) String() string {
	return fmt.Sprintf("RMSD over %d frames: mean %.3f, std. dev. %.3f, max %.3f (frame %d)", S.Frames, S.Mean, S.StdDev, S.Max, S.MaxFrame)
}

// Summarize returns the mean, standard deviation and maximum of an RMSD series.
// The standard deviation is 0 for series of less than 2 values.
func Summarize(rmsd []float64) Summary {
	s := Summary{Frames: len(rmsd), MaxFrame: -1}
	if len(rmsd) == 0 {
		return s
	}
	s.Mean = stat.Mean(rmsd, nil)
	if len(rmsd) > 1 {
		s.StdDev = stat.StdDev(rmsd, nil)
	}
	s.Max = math.Inf(-1)
	for i, v := range rmsd {
		if v > s.Max {
			s.Max = v
			s.MaxFrame = i
		}
	}
	return s
}

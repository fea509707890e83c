/*
 * assemble.go, part of stitch.
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
	"errors"
	"fmt"
	"strconv"

	"github.com/rmera/stitch/align"
	"github.com/rmera/stitch/chem"
	"github.com/rmera/stitch/traj"
)

// Options contains the options for Assemble.
type Options struct {
	//Only every Stride-th frame of each segment is kept, starting from frame 0.
	Stride int
	//Superpose all frames onto the first one.
	Align bool
	//Atoms used for the superposition, in the chem.Select language.
	Selection string
	//If not nil, called after each segment is read, with the position of the breakpoint
	//in the trace, the breakpoint, the segment file and the number of frames kept.
	Progress func(i int, b Breakpoint, path string, frames int)
}

// DefaultOptions returns options to keep every frame and to superpose the
// frames using the protein atoms.
func DefaultOptions() *Options {
	return &Options{Stride: 1, Align: true, Selection: "protein"}
}

func (o *Options) check() error {
	if o.Stride < 1 {
		return &ConfigurationError{Param: "stride", Value: strconv.Itoa(o.Stride), Reason: "must be at least 1"}
	}
	return nil
}

// selection resolves o.Selection against top.
func (o *Options) selection(top chem.Atomer) ([]int, error) {
	indexes, err := chem.Select(top, o.Selection)
	if err != nil {
		return nil, &ConfigurationError{Param: "selection", Value: o.Selection, Reason: err.Error()}
	}
	if len(indexes) == 0 {
		return nil, &StructuralMismatchError{Segment: -1, Reason: fmt.Sprintf("alignment selection %q matches no atoms", o.Selection)}
	}
	return indexes, nil
}

// Assemble reads, for each breakpoint in tr, the frames from 0 to the breakpoint's frame,
// both included, of the segment file paths[breakpoint.Segment], keeping one of every
// o.Stride frames. A breakpoint at frame f thus contributes ceil((f+1)/o.Stride) frames.
// The frames are joined in the order of tr and, if o.Align is set, superposed onto the
// first one. The segments must all have as many atoms as top, and in the same order.
// If o is nil, DefaultOptions() is used.
//
// The errors returned are *ConfigurationError, *SegmentLoadError and *StructuralMismatchError.
// No trajectory is returned on error.
func Assemble(top chem.Atomer, paths []string, tr Breakpoints, o *Options) (*traj.Trajectory, error) {
	t, _, err := assemble(top, paths, tr, o)
	return t, err
}

// assemble is Assemble, but also returns the RMSD series of the superposition, if done.
func assemble(top chem.Atomer, paths []string, tr Breakpoints, o *Options) (*traj.Trajectory, []float64, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if err := o.check(); err != nil {
		return nil, nil, err
	}
	if len(tr) == 0 {
		return nil, nil, &ConfigurationError{Param: "trace", Reason: "the trace is empty, start and end states are identical, nothing to stitch"}
	}
	for _, b := range tr {
		if b.Segment < 0 || b.Segment >= len(paths) {
			return nil, nil, &SegmentLoadError{Segment: b.Segment, Need: b.Frame + 1, Err: fmt.Errorf("no file for segment %d, only %d segment files given", b.Segment, len(paths))}
		}
	}
	var indexes []int
	var err error
	if o.Align {
		if indexes, err = o.selection(top); err != nil {
			return nil, nil, err
		}
	}
	natoms := top.Len()
	ret := traj.NewTrajectory(natoms)
	for i, b := range tr {
		path := paths[b.Segment]
		seg, err := traj.LoadPrefix(path, natoms, b.Frame, o.Stride)
		if err != nil {
			return nil, nil, segmentError(b, path, err)
		}
		if err := ret.Join(seg); err != nil {
			return nil, nil, &StructuralMismatchError{Segment: b.Segment, Path: path, Want: natoms, Got: seg.Len(), Reason: err.Error()}
		}
		if o.Progress != nil {
			o.Progress(i, b, path, seg.NFrames())
		}
	}
	var rmsd []float64
	if o.Align {
		if rmsd, err = align.ToFirstFrame(ret.Frames, indexes); err != nil {
			return nil, nil, &StructuralMismatchError{Segment: -1, Reason: fmt.Sprintf("superposition failed: %v", err)}
		}
	}
	return ret, rmsd, nil
}

// segmentError turns an error from loading the segment of b into a SegmentLoadError
// or a StructuralMismatchError.
func segmentError(b Breakpoint, path string, err error) error {
	var count *traj.AtomCountError
	if errors.As(err, &count) {
		return &StructuralMismatchError{Segment: b.Segment, Path: path, Want: count.Want, Got: count.Got, Reason: "atom count differs from the topology"}
	}
	ret := &SegmentLoadError{Segment: b.Segment, Path: path, Need: b.Frame + 1, Err: err}
	var short *traj.ShortError
	if errors.As(err, &short) {
		ret.Got = short.Got
	}
	return ret
}

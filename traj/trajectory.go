/*
 * trajectory.go, part of stitch.
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
	"fmt"

	"github.com/rmera/stitch/chem"
	v3 "github.com/rmera/stitch/v3"
)

// Trajectory is an ordered set of frames kept in memory. It owns its coordinates:
// frames are always copied in.
type Trajectory struct {
	natoms int
	Frames []*v3.Matrix
	Boxes  [][]float64 //nil, or one per frame. A box with no information is nil.
}

// NewTrajectory returns an empty trajectory for natoms atoms.
func NewTrajectory(natoms int) *Trajectory {
	return &Trajectory{natoms: natoms}
}

// Len returns the number of atoms per frame.
func (T *Trajectory) Len() int {
	return T.natoms
}

// NFrames returns the number of frames.
func (T *Trajectory) NFrames() int {
	return len(T.Frames)
}

// Append adds a copy of frame, and of box, if given, at the end of the trajectory.
func (T *Trajectory) Append(frame *v3.Matrix, box ...[]float64) error {
	if frame.NVecs() != T.natoms {
		return &AtomCountError{Name: "frame", Want: T.natoms, Got: frame.NVecs()}
	}
	T.Frames = append(T.Frames, frame.Clone())
	var b []float64
	if len(box) > 0 && box[0] != nil {
		b = append([]float64(nil), box[0]...)
	}
	if b != nil && T.Boxes == nil {
		T.Boxes = make([][]float64, len(T.Frames)-1, len(T.Frames))
	}
	if T.Boxes != nil {
		T.Boxes = append(T.Boxes, b)
	}
	return nil
}

// Join appends the frames of o to T. Both must have the same number of atoms.
// The frames of o are not copied, so o should not be used afterwards.
func (T *Trajectory) Join(o *Trajectory) error {
	if o.natoms != T.natoms {
		return &AtomCountError{Name: "joined trajectory", Want: T.natoms, Got: o.natoms}
	}
	if T.Boxes != nil || o.Boxes != nil {
		if T.Boxes == nil {
			T.Boxes = make([][]float64, len(T.Frames))
		}
		if o.Boxes == nil {
			T.Boxes = append(T.Boxes, make([][]float64, len(o.Frames))...)
		} else {
			T.Boxes = append(T.Boxes, o.Boxes...)
		}
	}
	T.Frames = append(T.Frames, o.Frames...)
	return nil
}

// Box returns the box for frame i, or nil if there is none.
func (T *Trajectory) Box(i int) []float64 {
	if T.Boxes == nil || i >= len(T.Boxes) {
		return nil
	}
	return T.Boxes[i]
}

// Prefix reads the raw frames 0..last of r, both included, and keeps the ones
// whose index is a multiple of stride, so ceil((last+1)/stride) frames are returned.
// The frames that are not kept are skipped without being decoded into coordinates.
// name is only used in error messages.
func Prefix(r chem.Traj, name string, last, stride int) (*Trajectory, error) {
	if stride < 1 {
		return nil, fmt.Errorf("traj.Prefix: stride must be at least 1, got %d", stride)
	}
	if last < 0 {
		return nil, fmt.Errorf("traj.Prefix: invalid last frame %d", last)
	}
	T := NewTrajectory(r.Len())
	buf := v3.Zeros(r.Len())
	box := make([]float64, 9)
	for i := 0; i <= last; i++ {
		var target *v3.Matrix
		if i%stride == 0 {
			target = buf
		}
		for j := range box {
			box[j] = 0
		}
		if err := r.Next(target, box); err != nil {
			if _, ok := err.(chem.LastFrameError); ok {
				return nil, &ShortError{Name: name, Need: last + 1, Got: i}
			}
			return nil, err
		}
		if target == nil {
			continue
		}
		var b []float64
		if !allZero(box) {
			b = box
		}
		T.Append(target, b)
	}
	return T, nil
}

func allZero(s []float64) bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

// LoadPrefix opens the trajectory file name, checks that it has natoms atoms
// and returns Prefix(file, name, last, stride).
func LoadPrefix(name string, natoms, last, stride int) (*Trajectory, error) {
	r, err := Open(name, natoms)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if r.Len() != natoms {
		return nil, &AtomCountError{Name: name, Want: natoms, Got: r.Len()}
	}
	return Prefix(r, name, last, stride)
}

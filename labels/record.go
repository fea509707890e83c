/*
 * record.go, part of stitch.
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

// Package labels holds the per-frame state label record of a set of adaptive sampling
// segments, and reads and writes it in text, JSON and SQLite containers.
package labels

import (
	"fmt"
	"sort"
)

// Record is a ragged set of state labels: Record[s][f] is the state of frame f
// of segment s. Frame 0 of each segment is the state the segment was spawned from.
type Record [][]int

// NSegments returns the number of segments in the record.
func (R Record) NSegments() int {
	return len(R)
}

// NFrames returns the total number of frames, over all segments.
func (R Record) NFrames() int {
	n := 0
	for _, s := range R {
		n += len(s)
	}
	return n
}

// Contains returns true if state appears anywhere in the record.
func (R Record) Contains(state int) bool {
	_, _, ok := R.First(state)
	return ok
}

// First returns the first segment and frame, in (segment, frame) order,
// labeled with state. ok is false if the state is not in the record.
func (R Record) First(state int) (segment, frame int, ok bool) {
	for s, seg := range R {
		for f, v := range seg {
			if v == state {
				return s, f, true
			}
		}
	}
	return -1, -1, false
}

// Branch returns the state segment s was spawned from, i.e. the label of its
// first frame. ok is false if the segment doesn't exist or is empty.
func (R Record) Branch(s int) (state int, ok bool) {
	if s < 0 || s >= len(R) || len(R[s]) == 0 {
		return 0, false
	}
	return R[s][0], true
}

// States returns the distinct states in the record, sorted.
func (R Record) States() []int {
	seen := make(map[int]bool)
	for _, seg := range R {
		for _, v := range seg {
			seen[v] = true
		}
	}
	ret := make([]int, 0, len(seen))
	for k := range seen {
		ret = append(ret, k)
	}
	sort.Ints(ret)
	return ret
}

// String returns a short summary of the record.
func (R Record) String() string {
	return fmt.Sprintf("%d segments, %d frames, %d states", R.NSegments(), R.NFrames(), len(R.States()))
}

/*
 * trace.go, part of stitch.
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
	"strings"
)

// Labels is a per-frame state label record, as implemented by labels.Record.
type Labels interface {
	NSegments() int
	Contains(state int) bool
	//first (segment, frame) with the state, in (segment, frame) order.
	First(state int) (segment, frame int, ok bool)
	//the state of frame 0 of the segment.
	Branch(segment int) (state int, ok bool)
}

// Breakpoint is a frame of a segment where a state in the traced path was reached.
// It is the last frame needed from that segment.
type Breakpoint struct {
	Segment int
	Frame   int
}

func (b Breakpoint) String() string {
	return fmt.Sprintf("(%d,%d)", b.Segment, b.Frame)
}

// Breakpoints is a trace: a sequence of breakpoints in chronological order,
// from the one nearest to the start state to the one nearest to the end state.
type Breakpoints []Breakpoint

func (B Breakpoints) String() string {
	s := make([]string, len(B))
	for i, v := range B {
		s[i] = v.String()
	}
	return "[" + strings.Join(s, " ") + "]"
}

// Segments returns the segment indexes of the trace, in order.
func (B Breakpoints) Segments() []int {
	ret := make([]int, len(B))
	for i, v := range B {
		ret[i] = v.Segment
	}
	return ret
}

// Trace returns the breakpoints connecting the start and end states in rec.
// Starting from the end state, it finds the first frame, in (segment, frame) order,
// labeled with the current state, records it, and moves to the state the segment of
// that frame was spawned from, until it reaches the start state. A state that
// appears more than once is only considered at its first occurrence, so later
// occurrences never extend how much of a segment is used.
//
// If the start state is not reached in as many hops as rec has segments, a
// *TraceError is returned. A state that is not in rec gives a *StateNotFoundError.
// If start and end are the same, an empty (non-nil) trace is returned.
func Trace(rec Labels, start, end int) (Breakpoints, error) {
	ret := make(Breakpoints, 0, 10)
	current := end
	hops := 0
	for current != start && hops < rec.NSegments() {
		s, f, ok := rec.First(current)
		if !ok {
			role := "branch"
			if current == end {
				role = "end"
			}
			return nil, &StateNotFoundError{State: current, Role: role}
		}
		ret = append(ret, Breakpoint{Segment: s, Frame: f})
		hops++
		branch, ok := rec.Branch(s)
		if !ok {
			//First never returns a segment with no frames, so this is a broken Labels.
			return nil, &TraceError{Start: start, End: end, Hops: hops, Partial: ret}
		}
		current = branch
	}
	if current != start {
		return nil, &TraceError{Start: start, End: end, Hops: hops, Partial: ret}
	}
	for i, j := 0, len(ret)-1; i < j; i, j = i+1, j-1 {
		ret[i], ret[j] = ret[j], ret[i]
	}
	return ret, nil
}

// Validate returns a *StateNotFoundError if either the start or the end state
// is absent from rec. source names the record in the error.
func Validate(rec Labels, start, end int, source string) error {
	if !rec.Contains(start) {
		return &StateNotFoundError{State: start, Role: "start", Source: source}
	}
	if !rec.Contains(end) {
		return &StateNotFoundError{State: end, Role: "end", Source: source}
	}
	return nil
}

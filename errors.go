/*
 * errors.go, part of stitch.
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
	"strings"
)

// ConfigurationError is returned for invalid parameters, before any input is read.
type ConfigurationError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Param, e.Value, e.Reason)
}

// StateNotFoundError is returned when a state is not in the label record.
// Role is "start" or "end" when the state is one of the requested endpoints,
// and "branch" when it was reached while tracing.
type StateNotFoundError struct {
	State  int
	Role   string
	Source string
}

func (e *StateNotFoundError) Error() string {
	src := e.Source
	if src == "" {
		src = "the label record"
	}
	return fmt.Sprintf("%s state %d not found in %s", e.Role, e.State, src)
}

// TraceError is returned when the backward trace doesn't reach the start state
// within as many hops as there are segments. Partial contains the breakpoints found,
// from the end state backward. If the spawn graph of the record does connect both states
// (which the first-occurrence trace can miss) Reachable is true and Path has the
// states along one such connection.
type TraceError struct {
	Start     int
	End       int
	Hops      int
	Partial   Breakpoints
	Reachable bool
	Path      []int
}

func (e *TraceError) Error() string {
	msg := fmt.Sprintf("no path from state %d to state %d within %d hops (breakpoints found: %v); the label record may be disconnected or cyclic", e.Start, e.End, e.Hops, e.Partial)
	if e.Reachable {
		msg += fmt.Sprintf(". The spawn graph does connect the states, through %s, but not through the first occurrence of each state", statePath(e.Path))
	}
	return msg
}

func statePath(p []int) string {
	s := make([]string, len(p))
	for i, v := range p {
		s[i] = fmt.Sprint(v)
	}
	return strings.Join(s, " -> ")
}

// SegmentLoadError is returned when a segment needed by the trace can't be read
// or is shorter than its breakpoint requires. Need and Got count raw frames.
type SegmentLoadError struct {
	Segment int
	Path    string
	Need    int
	Got     int
	Err     error
}

func (e *SegmentLoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("segment %d (%s): %d frames needed, %d available", e.Segment, e.Path, e.Need, e.Got)
	}
	return fmt.Sprintf("segment %d (%s): %v", e.Segment, e.Path, e.Err)
}

func (e *SegmentLoadError) Unwrap() error {
	return e.Err
}

// StructuralMismatchError is returned when a segment doesn't match the topology or the
// segments before it, or when the alignment selection matches no atoms. Segment is -1
// when the error doesn't concern a particular segment.
type StructuralMismatchError struct {
	Segment int
	Path    string
	Want    int
	Got     int
	Reason  string
}

func (e *StructuralMismatchError) Error() string {
	if e.Segment < 0 {
		return fmt.Sprintf("structural mismatch: %s", e.Reason)
	}
	return fmt.Sprintf("structural mismatch in segment %d (%s): %s (expected %d atoms, got %d)", e.Segment, e.Path, e.Reason, e.Want, e.Got)
}

// Kind returns a short name for the kind of err: "configuration", "state_not_found",
// "trace", "segment_load", "structural_mismatch", or "other" for any other error.
func Kind(err error) string {
	var (
		conf  *ConfigurationError
		state *StateNotFoundError
		trace *TraceError
		seg   *SegmentLoadError
		str   *StructuralMismatchError
	)
	switch {
	case errors.As(err, &conf):
		return "configuration"
	case errors.As(err, &state):
		return "state_not_found"
	case errors.As(err, &trace):
		return "trace"
	case errors.As(err, &seg):
		return "segment_load"
	case errors.As(err, &str):
		return "structural_mismatch"
	}
	return "other"
}

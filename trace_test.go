/*
 * trace_test.go, part of stitch.
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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rmera/stitch/labels"
)

func TestTraceRoundTrip(Te *testing.T) {
	rec := roundTrip()
	cases := []struct {
		start, end int
		want       Breakpoints
	}{
		{0, 2, Breakpoints{{1, 2}}},
		{0, 1, Breakpoints{{1, 1}}},
		{0, 3, Breakpoints{{1, 2}, {2, 1}}},
		{0, 7, Breakpoints{{1, 1}, {3, 3}}},
		{0, 5, Breakpoints{{1, 1}, {3, 1}}},
		{2, 3, Breakpoints{{2, 1}}},
		{1, 7, Breakpoints{{3, 3}}},
	}
	for _, c := range cases {
		got, err := Trace(rec, c.start, c.end)
		if err != nil {
			Te.Errorf("Trace(%d, %d): %v", c.start, c.end, err)
			continue
		}
		if d := cmp.Diff(c.want, got); d != "" {
			Te.Errorf("Trace(%d, %d) mismatch (-want +got):\n%s", c.start, c.end, d)
		}
	}
	if s := (Breakpoints{{1, 0}, {1, 2}}).String(); s != "[(1,0) (1,2)]" {
		Te.Errorf("unexpected string %s", s)
	}
}

// Walking the branch chain forward from the first breakpoint leads from the
// start state to the end state.
func TestTraceOrdering(Te *testing.T) {
	rec := labels.Record{
		{0, 0, 4},
		{4, 6, 6, 8},
		{0, 1, 2},
		{6, 9, 10},
		{8, 11},
		{10, 12, 13},
	}
	for _, end := range []int{4, 6, 8, 9, 10, 11, 12, 13, 1, 2} {
		tr, err := Trace(rec, 0, end)
		if err != nil {
			Te.Fatalf("Trace(0, %d): %v", end, err)
		}
		if len(tr) == 0 || len(tr) > rec.NSegments() {
			Te.Fatalf("Trace(0, %d) has %d breakpoints", end, len(tr))
		}
		if rec[tr[0].Segment][0] != 0 {
			Te.Errorf("Trace(0, %d): first segment %d is not spawned from the start state", end, tr[0].Segment)
		}
		for i := 1; i < len(tr); i++ {
			prev := tr[i-1]
			if rec[tr[i].Segment][0] != rec[prev.Segment][prev.Frame] {
				Te.Errorf("Trace(0, %d): breakpoint %d is not spawned from the state of breakpoint %d", end, i, i-1)
			}
		}
		last := tr[len(tr)-1]
		if rec[last.Segment][last.Frame] != end {
			Te.Errorf("Trace(0, %d): the last breakpoint has state %d", end, rec[last.Segment][last.Frame])
		}
	}
}

func TestTraceTermination(Te *testing.T) {
	//exactly as many hops as segments.
	chain := labels.Record{{0, 1}, {1, 2}, {2, 3}}
	tr, err := Trace(chain, 0, 3)
	if err != nil {
		Te.Fatal(err)
	}
	if d := cmp.Diff(Breakpoints{{0, 1}, {1, 1}, {2, 1}}, tr); d != "" {
		Te.Errorf("mismatch (-want +got):\n%s", d)
	}
	//a cycle that never reaches the start state.
	cyclic := labels.Record{{1, 2}, {2, 1}}
	_, err = Trace(cyclic, 0, 2)
	var te *TraceError
	if !errors.As(err, &te) {
		Te.Fatalf("expected a TraceError, got %v", err)
	}
	if te.Hops != 2 || te.Start != 0 || te.End != 2 {
		Te.Errorf("unexpected error %+v", te)
	}
	if d := cmp.Diff(Breakpoints{{0, 1}, {0, 0}}, te.Partial); d != "" {
		Te.Errorf("partial trace mismatch (-want +got):\n%s", d)
	}
	//disconnected: 3 is reached only from 9.
	_, err = Trace(labels.Record{{0, 1}, {9, 3}}, 0, 3)
	if !errors.As(err, &te) {
		Te.Errorf("expected a TraceError, got %v", err)
	}
}

func TestTraceEdgeCases(Te *testing.T) {
	rec := roundTrip()
	tr, err := Trace(rec, 2, 2)
	if err != nil || tr == nil || len(tr) != 0 {
		Te.Errorf("identical states: got %v, %v; want an empty trace", tr, err)
	}
	_, err = Trace(rec, 0, 42)
	var snf *StateNotFoundError
	if !errors.As(err, &snf) || snf.State != 42 || snf.Role != "end" {
		Te.Errorf("expected a StateNotFoundError for the end state, got %v", err)
	}
	//segments with no frames are skipped.
	tr, err = Trace(labels.Record{{}, {0, 4}}, 0, 4)
	if err != nil {
		Te.Fatal(err)
	}
	if d := cmp.Diff(Breakpoints{{1, 1}}, tr); d != "" {
		Te.Errorf("mismatch (-want +got):\n%s", d)
	}
}

func TestValidate(Te *testing.T) {
	rec := roundTrip()
	if err := Validate(rec, 0, 7, "labels.txt"); err != nil {
		Te.Error(err)
	}
	var snf *StateNotFoundError
	err := Validate(rec, 4, 7, "labels.txt")
	if !errors.As(err, &snf) || snf.Role != "start" || snf.State != 4 || snf.Source != "labels.txt" {
		Te.Errorf("unexpected error %v", err)
	}
	err = Validate(rec, 0, 8, "labels.txt")
	if !errors.As(err, &snf) || snf.Role != "end" || snf.State != 8 {
		Te.Errorf("unexpected error %v", err)
	}
}

func TestSpawnGraph(Te *testing.T) {
	g := NewSpawnGraph(roundTrip())
	if d := cmp.Diff([]int{0, 1, 2, 3, 5, 7}, g.Reachable(0)); d != "" {
		Te.Errorf("Reachable(0) mismatch (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]int{2, 3}, g.Reachable(2)); d != "" {
		Te.Errorf("Reachable(2) mismatch (-want +got):\n%s", d)
	}
	if g.Reachable(99) != nil {
		Te.Error("a missing state reaches nothing")
	}
	states, segs, ok := g.Path(0, 7)
	if !ok {
		Te.Fatal("no path from 0 to 7")
	}
	if d := cmp.Diff([]int{0, 1, 7}, states); d != "" {
		Te.Errorf("states mismatch (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]int{1, 3}, segs); d != "" {
		Te.Errorf("segments mismatch (-want +got):\n%s", d)
	}
	if _, _, ok := g.Path(3, 0); ok {
		Te.Error("there is no path from 3 to 0")
	}
	if states, _, ok := g.Path(5, 5); !ok || len(states) != 1 {
		Te.Errorf("a state reaches itself, got %v %v", states, ok)
	}
}

// The first occurrence of 5 is in a segment spawned from 3, which is never reached
// from 0, even though segment 1 goes from 0 to 5.
func TestTraceDiagnosis(Te *testing.T) {
	rec := labels.Record{{3, 5}, {0, 5}}
	_, err := Trace(rec, 0, 5)
	err = Diagnose(rec, "labels.txt", err)
	var te *TraceError
	if !errors.As(err, &te) {
		Te.Fatalf("expected a TraceError, got %v", err)
	}
	if !te.Reachable {
		Te.Error("the spawn graph connects 0 and 5")
	}
	if d := cmp.Diff([]int{0, 5}, te.Path); d != "" {
		Te.Errorf("path mismatch (-want +got):\n%s", d)
	}
	_, err = Trace(rec, 0, 9)
	err = Diagnose(rec, "labels.txt", err)
	var snf *StateNotFoundError
	if !errors.As(err, &snf) || snf.Source != "labels.txt" {
		Te.Errorf("expected a StateNotFoundError naming the source, got %v", err)
	}
}

func TestKind(Te *testing.T) {
	cases := map[string]error{
		"configuration":       &ConfigurationError{Param: "stride"},
		"state_not_found":     &StateNotFoundError{},
		"trace":               &TraceError{},
		"segment_load":        &SegmentLoadError{},
		"structural_mismatch": &StructuralMismatchError{},
		"other":               errors.New("boom"),
	}
	for want, err := range cases {
		if got := Kind(err); got != want {
			Te.Errorf("Kind(%T) = %s, want %s", err, got, want)
		}
	}
}

/*
 * graph.go, part of stitch.
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
	"sort"

	"github.com/rmera/stitch/labels"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// State is a node of the spawn graph.
type State int

// ID implements gonum's graph.Node.
func (S State) ID() int64 {
	return int64(S)
}

// Spawn is an edge of the spawn graph: segment Segment was spawned from state F and visited state T.
type Spawn struct {
	F, T    State
	Segment int
}

func (S Spawn) From() graph.Node { return S.F }
func (S Spawn) To() graph.Node   { return S.T }

// ReversedEdge returns the edge with F and T swapped.
func (S Spawn) ReversedEdge() graph.Edge {
	return Spawn{F: S.T, T: S.F, Segment: S.Segment}
}

// SpawnGraph is the directed graph of all the states of a label record, with an edge from
// the branch state of each segment to every other state visited by that segment.
// Unlike Trace, it considers every occurrence of every state.
type SpawnGraph struct {
	g *simple.DirectedGraph
}

// NewSpawnGraph builds the spawn graph of rec. For each pair of states, the edge kept
// is the one from the first segment connecting them.
func NewSpawnGraph(rec labels.Record) *SpawnGraph {
	g := simple.NewDirectedGraph()
	for s, seg := range rec {
		if len(seg) == 0 {
			continue
		}
		b := State(seg[0])
		if g.Node(b.ID()) == nil {
			g.AddNode(b)
		}
		for _, v := range seg[1:] {
			t := State(v)
			if t == b {
				continue
			}
			if g.Node(t.ID()) == nil {
				g.AddNode(t)
			}
			if g.HasEdgeFromTo(b.ID(), t.ID()) {
				continue
			}
			g.SetEdge(Spawn{F: b, T: t, Segment: s})
		}
	}
	return &SpawnGraph{g: g}
}

// Has returns true if state is in the graph.
func (G *SpawnGraph) Has(state int) bool {
	return G.g.Node(int64(state)) != nil
}

// Reachable returns, sorted, the states that can be reached from start, start included.
// It returns nil if start is not in the graph.
func (G *SpawnGraph) Reachable(start int) []int {
	if !G.Has(start) {
		return nil
	}
	ret := make([]int, 0)
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) {
			ret = append(ret, int(n.ID()))
		},
	}
	bf.Walk(G.g, State(start), nil)
	sort.Ints(ret)
	return ret
}

// Path returns the states along a shortest spawn path from start to end, both
// included, and the segment that makes each step. ok is false if there is no such path.
func (G *SpawnGraph) Path(start, end int) (states []int, segments []int, ok bool) {
	if !G.Has(start) || !G.Has(end) {
		return nil, nil, false
	}
	if start == end {
		return []int{start}, []int{}, true
	}
	parent := make(map[int64]Spawn)
	bf := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			to := e.To().ID()
			if _, seen := parent[to]; !seen && to != int64(start) {
				parent[to] = e.(Spawn)
			}
			return true
		},
	}
	found := bf.Walk(G.g, State(start), func(n graph.Node, _ int) bool {
		return n.ID() == int64(end)
	})
	if found == nil {
		return nil, nil, false
	}
	for cur := int64(end); cur != int64(start); {
		e := parent[cur]
		states = append(states, int(e.T))
		segments = append(segments, e.Segment)
		cur = e.F.ID()
	}
	states = append(states, start)
	for i, j := 0, len(states)-1; i < j; i, j = i+1, j-1 {
		states[i], states[j] = states[j], states[i]
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return states, segments, true
}

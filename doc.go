/*
 * doc.go, part of stitch.
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

/*
Package stitch rebuilds one continuous trajectory out of the segments of an adaptive
sampling simulation.

In adaptive sampling, many short segments are spawned from states found in earlier
segments. A label record gives the state of every frame of every segment, and the
first frame of each segment carries the state it was spawned from. Trace walks
that spawn tree backward, from an end state to a start state, and returns the
breakpoints, i.e. the (segment, frame) pairs where each step of the path was first
reached, in chronological order. Assemble then reads, for each breakpoint, the frames
of its segment up to the breakpoint frame, joins them, and optionally subsamples them
and superposes them onto the first frame.

	rec, err := labels.Load("labels.txt")
	//handle the error
	tr, err := stitch.Trace(rec, 0, 7)
	//handle the error
	top, err := chem.PDBFileRead("topology.pdb")
	//handle the error
	t, err := stitch.Assemble(top, segmentPaths, tr, stitch.DefaultOptions())

Run does all of the above from a Config, and also validates the input, saves the result
and, optionally, plots the RMSD series and writes metrics.

All errors that depend on the input (as opposed to I/O failures in writing the output)
are one of the types ConfigurationError, StateNotFoundError, TraceError, SegmentLoadError
or StructuralMismatchError, and can be told apart with errors.As.
*/
package stitch

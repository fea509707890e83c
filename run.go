/*
 * run.go, part of stitch.
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
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rmera/stitch/align"
	"github.com/rmera/stitch/chem"
	"github.com/rmera/stitch/chemplot"
	"github.com/rmera/stitch/internal/logger"
	"github.com/rmera/stitch/internal/metrics"
	"github.com/rmera/stitch/labels"
	"github.com/rmera/stitch/traj"
)

// Config contains everything needed for a stitching run.
type Config struct {
	Labels    string   //label record file
	Topology  string   //PDB or PDBx/mmCIF file
	Segments  []string //segment trajectory files, in the order of the label record
	Start     int
	End       int
	Stride    int
	Align     bool
	Selection string
	Output    string //trajectory to write, .dcd or .stf (and its compressed variants)
	Plot      string //if not empty, the RMSD series is plotted here. Requires Align.
	Metrics   string //if not empty, run metrics are written here in the Prometheus text format
}

// DefaultOutputName returns the default output name for a run from start to end
// in the format given by the extension ext.
func DefaultOutputName(start, end int, ext string) string {
	return fmt.Sprintf("trace-%d-to-%d.%s", start, end, strings.TrimPrefix(ext, "."))
}

// Result describes a successful run.
type Result struct {
	Trace  Breakpoints
	Frames int
	Output string
	RMSD   *align.Summary //nil if the trajectory was not superposed.
}

var plotFormats = []string{".png", ".svg", ".pdf", ".eps", ".jpg", ".jpeg", ".tif", ".tiff"}

// check returns a *ConfigurationError for the first problem found in C, if any.
// It does no I/O.
func (C *Config) check() error {
	switch {
	case C.Stride < 1:
		return &ConfigurationError{Param: "stride", Value: strconv.Itoa(C.Stride), Reason: "must be at least 1"}
	case len(C.Segments) == 0:
		return &ConfigurationError{Param: "segments", Reason: "no segment files given"}
	case C.Labels == "":
		return &ConfigurationError{Param: "labels", Reason: "no label record given"}
	case labels.Container(C.Labels) == "":
		return &ConfigurationError{Param: "labels", Value: C.Labels, Reason: "unknown container (use .txt, .dat, .lab, .json, .sqlite or .db)"}
	case C.Topology == "":
		return &ConfigurationError{Param: "topology", Reason: "no topology file given"}
	case C.Output == "":
		return &ConfigurationError{Param: "output", Reason: "no output file given"}
	case !traj.Creatable(C.Output):
		return &ConfigurationError{Param: "output", Value: C.Output, Reason: "can't write this format (use .dcd or .stf, .stz, .stl, .str)"}
	case C.Start == C.End:
		return &ConfigurationError{Param: "end state", Value: strconv.Itoa(C.End), Reason: "start and end states are identical, nothing to stitch"}
	case C.Plot != "" && !C.Align:
		return &ConfigurationError{Param: "plot", Value: C.Plot, Reason: "the RMSD plot requires alignment"}
	case C.Plot != "" && !isInString(strings.ToLower(filepath.Ext(C.Plot)), plotFormats):
		return &ConfigurationError{Param: "plot", Value: C.Plot, Reason: "unknown image format"}
	}
	return nil
}

// Run validates C, traces the path between C.Start and C.End in the label record,
// assembles the trajectory and saves it to C.Output. Progress is logged to l,
// which can be nil. The output file is only created if the run succeeds.
func Run(C *Config, l *slog.Logger) (res *Result, err error) {
	if l == nil {
		l = logger.Discard()
	}
	began := time.Now()
	var m *metrics.Metrics
	if C.Metrics != "" {
		m = metrics.New()
		defer func() {
			if err != nil {
				m.Failure(Kind(err))
			}
			m.Done(began, err == nil)
			if merr := m.WriteTextfile(C.Metrics); merr != nil {
				l.Error("could not write metrics", "file", C.Metrics, "error", merr)
			}
		}()
	}
	if err := C.check(); err != nil {
		return nil, err
	}
	l.Info("stitching trajectory", "start", C.Start, "end", C.End, "labels", C.Labels, "segment_files", len(C.Segments))
	rec, err := labels.Load(C.Labels)
	if err != nil {
		return nil, &ConfigurationError{Param: "labels", Value: C.Labels, Reason: err.Error()}
	}
	l.Debug("label record read", "record", rec.String())
	if rec.NSegments() != len(C.Segments) {
		l.Warn("the number of segment files doesn't match the label record", "files", len(C.Segments), "segments", rec.NSegments())
	}
	if err := Validate(rec, C.Start, C.End, C.Labels); err != nil {
		return nil, err
	}
	tr, err := Trace(rec, C.Start, C.End)
	if err != nil {
		return nil, Diagnose(rec, C.Labels, err)
	}
	l.Info("trace found", "breakpoints", tr.String())
	if m != nil {
		m.SetTraceLength(len(tr))
	}
	top, err := chem.TopologyFileRead(C.Topology)
	if err != nil {
		return nil, &ConfigurationError{Param: "topology", Value: C.Topology, Reason: err.Error()}
	}
	parts := make([]chemplot.Part, 0, len(tr))
	o := &Options{
		Stride:    C.Stride,
		Align:     C.Align,
		Selection: C.Selection,
		Progress: func(i int, b Breakpoint, path string, frames int) {
			l.Info("segment read", "n", i+1, "of", len(tr), "segment", b.Segment, "frame", b.Frame, "file", path, "frames_kept", frames)
			parts = append(parts, chemplot.Part{Label: fmt.Sprintf("segment %d", b.Segment), Frames: frames})
			if m != nil {
				m.AddSegment(frames)
			}
		},
	}
	t, rmsd, err := assemble(top, C.Segments, tr, o)
	if err != nil {
		return nil, err
	}
	res = &Result{Trace: tr, Frames: t.NFrames(), Output: C.Output}
	if rmsd != nil {
		s := align.Summarize(rmsd)
		res.RMSD = &s
		l.Info("frames superposed", "selection", C.Selection, "rmsd_mean", s.Mean, "rmsd_stddev", s.StdDev, "rmsd_max", s.Max, "rmsd_max_frame", s.MaxFrame)
	}
	if err := traj.Save(C.Output, t); err != nil {
		return nil, fmt.Errorf("saving the trajectory: %w", err)
	}
	l.Info("trajectory written", "file", C.Output, "frames", res.Frames)
	if C.Plot != "" {
		title := fmt.Sprintf("States %d to %d", C.Start, C.End)
		if err := chemplot.RMSDPlot(rmsd, parts, title, C.Plot); err != nil {
			l.Error("could not plot the RMSD", "file", C.Plot, "error", err)
		} else {
			l.Info("RMSD plot written", "file", C.Plot)
		}
	}
	return res, nil
}

// Diagnose completes the error from a failed trace with the label source and,
// for a *TraceError, with what the spawn graph of rec says about the two states.
// rec is only read for a *TraceError.
func Diagnose(rec labels.Record, source string, err error) error {
	var state *StateNotFoundError
	if errors.As(err, &state) {
		state.Source = source
		return err
	}
	var te *TraceError
	if errors.As(err, &te) {
		if path, _, ok := NewSpawnGraph(rec).Path(te.Start, te.End); ok {
			te.Reachable = true
			te.Path = path
		}
	}
	return err
}

func isInString(test string, container []string) bool {
	for _, v := range container {
		if test == v {
			return true
		}
	}
	return false
}

/*
 * main.go, part of stitch.
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

// Command stitch rebuilds a continuous trajectory between two states out of the
// segments of an adaptive sampling simulation.
//
// Usage:
//
//	stitch [flags] <segments-glob> <topology.pdb> <labels> <end-state>
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/rmera/stitch"
	"github.com/rmera/stitch/internal/config"
	"github.com/rmera/stitch/internal/logger"
	"github.com/spf13/pflag"
)

// Exit codes
const (
	exitOK            = 0
	exitOther         = 1
	exitConfiguration = 2
	exitStateNotFound = 3
	exitTrace         = 4
	exitSegmentLoad   = 5
	exitStructural    = 6
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(fs *pflag.FlagSet, w io.Writer) func() {
	return func() {
		fmt.Fprintf(w, "Usage: stitch [flags] <segments-glob> <topology.pdb> <labels> <end-state>\n\n")
		fmt.Fprintf(w, "Rebuilds the continuous trajectory from the start state to end-state out of the\n")
		fmt.Fprintf(w, "segment files matching segments-glob, sorted by name, which must be in the same\n")
		fmt.Fprintf(w, "order as the segments of the label record (.txt, .dat, .lab, .json, .sqlite or .db).\n")
		fmt.Fprintf(w, "Segments can be DCD (also compressed), STF, Amber mdcrd or multi-model PDB files.\n\n")
		fmt.Fprintf(w, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nDefaults can be set with the STITCH_STRIDE, STITCH_SELECTION, STITCH_ALIGN, STITCH_FORMAT,\n")
		fmt.Fprintf(w, "STITCH_LOG_LEVEL and STITCH_LOG_FORMAT environment variables, also read from the --env file.\n")
		fmt.Fprintf(w, "\nExit codes: 0 success, 2 bad arguments, 3 state not found, 4 no trace found,\n")
		fmt.Fprintf(w, "5 segment not readable, 6 structural mismatch, 1 other errors.\n")
	}
}

// envFile returns the value of the --env flag in args, or ".env" if not given.
func envFile(args []string) (string, bool) {
	fs := pflag.NewFlagSet("env", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist = pflag.ParseErrorsWhitelist{UnknownFlags: true}
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	env := fs.String("env", ".env", "")
	fs.BoolP("help", "h", false, "")
	fs.Parse(args)
	return *env, fs.Changed("env")
}

// run runs the program with the arguments args, and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	envname, explicit := envFile(args)
	if err := config.Load(envname); err != nil && explicit {
		fmt.Fprintf(stderr, "stitch: reading %s: %v\n", envname, err)
		return exitConfiguration
	}
	fs := pflag.NewFlagSet("stitch", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs, stderr)
	fs.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "subsample" {
			name = "stride"
		}
		return pflag.NormalizedName(name)
	})
	start := fs.IntP("start-state", "s", 0, "State to start the trajectory from")
	stride := fs.IntP("stride", "k", config.GetEnvInt("STITCH_STRIDE", 1), "Keep one of every `k` frames of each segment (also --subsample)")
	alignf := fs.Bool("align", config.GetEnvBool("STITCH_ALIGN", true), "Superpose all frames onto the first one")
	selection := fs.String("selection", config.GetEnv("STITCH_SELECTION", "protein"), "Atoms used for the superposition")
	out := fs.StringP("out", "o", "", "Output trajectory (default trace-<start>-to-<end>.<format>)")
	format := fs.StringP("format", "f", config.GetEnv("STITCH_FORMAT", "dcd"), "Output format, used for the default output name: dcd, stf, stz, stl or str")
	plot := fs.String("plot", "", "Plot the RMSD of the superposition to this image file (png, svg, pdf...)")
	metricsFile := fs.String("metrics-file", "", "Write run metrics to this file, in the Prometheus text format")
	logLevel := fs.String("log-level", config.GetEnv("STITCH_LOG_LEVEL", "info"), "Log level: debug, info, warn or error")
	logFormat := fs.String("log-format", config.GetEnv("STITCH_LOG_FORMAT", "text"), "Log format: text or json")
	fs.String("env", ".env", "File with environment variables to load")
	help := fs.BoolP("help", "h", false, "Show this help")
	if err := fs.Parse(args); err != nil {
		return exitConfiguration
	}
	if *help {
		fs.Usage()
		return exitOK
	}
	if fs.NArg() != 4 {
		fmt.Fprintf(stderr, "stitch: expected 4 arguments, got %d\n\n", fs.NArg())
		fs.Usage()
		return exitConfiguration
	}
	l := logger.New(*logLevel, *logFormat, stderr).With("run_id", uuid.NewString())
	//no file is touched before the stride is known to be valid.
	if *stride < 1 {
		return fail(l, stderr, &stitch.ConfigurationError{Param: "stride", Value: strconv.Itoa(*stride), Reason: "must be at least 1"})
	}
	end, err := strconv.Atoi(fs.Arg(3))
	if err != nil {
		return fail(l, stderr, &stitch.ConfigurationError{Param: "end state", Value: fs.Arg(3), Reason: "not an integer"})
	}
	segments, err := segmentFiles(fs.Arg(0))
	if err != nil {
		return fail(l, stderr, err)
	}
	l.Debug("segment files", "pattern", fs.Arg(0), "n", len(segments), "first", segments[0], "last", segments[len(segments)-1])
	output := *out
	if output == "" {
		output = stitch.DefaultOutputName(*start, end, *format)
	}
	cfg := &stitch.Config{
		Labels:    fs.Arg(2),
		Topology:  fs.Arg(1),
		Segments:  segments,
		Start:     *start,
		End:       end,
		Stride:    *stride,
		Align:     *alignf,
		Selection: *selection,
		Output:    output,
		Plot:      *plot,
		Metrics:   *metricsFile,
	}
	res, err := stitch.Run(cfg, l)
	if err != nil {
		return fail(l, stderr, err)
	}
	fmt.Fprintln(stdout, res.Output)
	return exitOK
}

// segmentFiles returns the files matching the glob pattern, sorted by name.
func segmentFiles(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, &stitch.ConfigurationError{Param: "segments", Value: pattern, Reason: err.Error()}
	}
	if len(matches) == 0 {
		return nil, &stitch.ConfigurationError{Param: "segments", Value: pattern, Reason: "no files match"}
	}
	sort.Strings(matches)
	return matches, nil
}

func fail(l *slog.Logger, stderr io.Writer, err error) int {
	code := exitCode(err)
	l.Error("stitching failed", "kind", stitch.Kind(err), "error", err)
	fmt.Fprintf(stderr, "stitch: %v\n", err)
	return code
}

// exitCode returns the exit code for the kind of err.
func exitCode(err error) int {
	var (
		conf  *stitch.ConfigurationError
		state *stitch.StateNotFoundError
		trace *stitch.TraceError
		seg   *stitch.SegmentLoadError
		str   *stitch.StructuralMismatchError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &conf):
		return exitConfiguration
	case errors.As(err, &state):
		return exitStateNotFound
	case errors.As(err, &trace):
		return exitTrace
	case errors.As(err, &seg):
		return exitSegmentLoad
	case errors.As(err, &str):
		return exitStructural
	}
	return exitOther
}

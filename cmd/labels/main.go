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

// Command labels inspects and converts the label records used by stitch.
//
// Usage:
//
//	labels info <file> [start-state]
//	labels trace <file> <start-state> <end-state>
//	labels convert <in> <out>
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rmera/stitch"
	"github.com/rmera/stitch/labels"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(fs *pflag.FlagSet, w io.Writer) func() {
	return func() {
		fmt.Fprintf(w, "Usage:\n")
		fmt.Fprintf(w, "  labels info <file> [start-state]         summary of a label record, and the states reachable from start-state\n")
		fmt.Fprintf(w, "  labels trace <file> <start> <end>        breakpoints of the trace from start to end\n")
		fmt.Fprintf(w, "  labels convert <in> <out>                re-encode a label record (.txt, .dat, .lab, .json, .sqlite, .db)\n\n")
		fmt.Fprintf(w, "Flags:\n")
		fs.PrintDefaults()
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("labels", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs, stderr)
	help := fs.BoolP("help", "h", false, "Show this help")
	force := fs.BoolP("force", "f", false, "convert: overwrite the output file if it exists")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		fs.Usage()
		return 0
	}
	a := fs.Args()
	var err error
	switch {
	case len(a) >= 2 && len(a) <= 3 && a[0] == "info":
		err = info(stdout, a[1:])
	case len(a) == 4 && a[0] == "trace":
		err = trace(stdout, a[1:])
	case len(a) == 3 && a[0] == "convert":
		err = convert(stdout, a[1], a[2], *force)
	default:
		fs.Usage()
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "labels: %v\n", err)
		var conf *stitch.ConfigurationError
		if errors.As(err, &conf) {
			return 2
		}
		return 1
	}
	return 0
}

func atoi(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &stitch.ConfigurationError{Param: name, Value: s, Reason: "not an integer"}
	}
	return v, nil
}

func info(w io.Writer, a []string) error {
	rec, err := labels.Load(a[0])
	if err != nil {
		return err
	}
	states := rec.States()
	fmt.Fprintf(w, "file:     %s\n", a[0])
	fmt.Fprintf(w, "segments: %d\n", rec.NSegments())
	fmt.Fprintf(w, "frames:   %d\n", rec.NFrames())
	fmt.Fprintf(w, "states:   %d\n", len(states))
	empty := 0
	for _, s := range rec {
		if len(s) == 0 {
			empty++
		}
	}
	if empty > 0 {
		fmt.Fprintf(w, "empty segments: %d\n", empty)
	}
	if len(a) < 2 {
		return nil
	}
	start, err := atoi("start state", a[1])
	if err != nil {
		return err
	}
	g := stitch.NewSpawnGraph(rec)
	if !g.Has(start) {
		return &stitch.StateNotFoundError{State: start, Role: "start", Source: a[0]}
	}
	r := g.Reachable(start)
	fmt.Fprintf(w, "reachable from %d: %d states %v\n", start, len(r), r)
	return nil
}

func trace(w io.Writer, a []string) error {
	start, err := atoi("start state", a[1])
	if err != nil {
		return err
	}
	end, err := atoi("end state", a[2])
	if err != nil {
		return err
	}
	if labels.Container(a[0]) == "sqlite" {
		return traceStore(w, a[0], start, end)
	}
	rec, err := labels.Load(a[0])
	if err != nil {
		return err
	}
	if err := stitch.Validate(rec, start, end, a[0]); err != nil {
		return err
	}
	tr, err := stitch.Trace(rec, start, end)
	if err != nil {
		return stitch.Diagnose(rec, a[0], err)
	}
	fmt.Fprintln(w, tr)
	return nil
}

// traceStore traces on a SQLite store without loading the record, which is
// only read in full to diagnose a failed trace.
func traceStore(w io.Writer, name string, start, end int) error {
	if _, err := os.Stat(name); err != nil {
		return err
	}
	st, err := labels.OpenStore(name)
	if err != nil {
		return err
	}
	defer st.Close()
	q, err := st.Query()
	if err != nil {
		return err
	}
	err = stitch.Validate(q, start, end, name)
	if err == nil {
		var tr stitch.Breakpoints
		if tr, err = stitch.Trace(q, start, end); err == nil && q.Err() == nil {
			fmt.Fprintln(w, tr)
			return nil
		}
	}
	if q.Err() != nil {
		return q.Err()
	}
	var te *stitch.TraceError
	if !errors.As(err, &te) {
		return stitch.Diagnose(nil, name, err)
	}
	rec, rerr := st.Record()
	if rerr != nil {
		return err
	}
	return stitch.Diagnose(rec, name, err)
}

func convert(w io.Writer, in, out string, force bool) error {
	if labels.Container(out) == "" {
		return &stitch.ConfigurationError{Param: "output", Value: out, Reason: "unknown container"}
	}
	if _, err := os.Stat(out); err == nil && !force {
		return &stitch.ConfigurationError{Param: "output", Value: out, Reason: "file exists (use --force to overwrite)"}
	}
	rec, err := labels.Load(in)
	if err != nil {
		return err
	}
	if err := labels.Save(out, rec); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s\n", out, rec)
	return nil
}

/*
 * main_test.go, part of stitch.
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

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/stitch"
	"github.com/rmera/stitch/chem"
	"github.com/rmera/stitch/labels"
	"github.com/rmera/stitch/traj"
	v3 "github.com/rmera/stitch/v3"
	"github.com/stretchr/testify/require"
)

// fixture writes a label record, its segments, named so that the lexical
// order is the record order, and a one-residue topology. It returns the directory.
func fixture(Te *testing.T) string {
	Te.Helper()
	dir := Te.TempDir()
	rec := labels.Record{{0}, {0, 1, 2}, {2, 3}, {1, 5, 5, 7}}
	require.NoError(Te, labels.Save(filepath.Join(dir, "labels.json"), rec))
	ats := []*chem.Atom{
		{ID: 1, Name: "N", MolName: "GLY", MolID: 1, Chain: "A", Symbol: "N"},
		{ID: 2, Name: "CA", MolName: "GLY", MolID: 1, Chain: "A", Symbol: "C"},
		{ID: 3, Name: "C", MolName: "GLY", MolID: 1, Chain: "A", Symbol: "C"},
		{ID: 4, Name: "O", MolName: "GLY", MolID: 1, Chain: "A", Symbol: "O"},
	}
	top := chem.NewTopology(ats)
	coords := func(shift float64) *v3.Matrix {
		m, err := v3.NewMatrix([]float64{0, 0, 0, 1.45, 0, 0, 2.0, 1.4, 0, 1.3, 2.4, 0.6})
		require.NoError(Te, err)
		for i := 0; i < 4; i++ {
			m.Set(i, 0, m.At(i, 0)+shift)
		}
		return m
	}
	require.NoError(Te, chem.PDBFileWrite(filepath.Join(dir, "top.pdb"), top, []*v3.Matrix{coords(0)}, nil))
	for s, seg := range rec {
		w, err := traj.Create(filepath.Join(dir, fmt.Sprintf("seg%02d.dcd", s)), 4)
		require.NoError(Te, err)
		for f := range seg {
			require.NoError(Te, w.WNext(coords(float64(10*s+f))))
		}
		require.NoError(Te, w.CloseErr())
	}
	return dir
}

func args(dir string, end string, flags ...string) []string {
	return append(flags, filepath.Join(dir, "seg*.dcd"), filepath.Join(dir, "top.pdb"), filepath.Join(dir, "labels.json"), end)
}

func TestRun(Te *testing.T) {
	dir := fixture(Te)
	out := filepath.Join(dir, "out.stf")
	var stdout, stderr bytes.Buffer
	code := run(args(dir, "7", "-o", out, "--subsample", "2", "--log-format", "json"), &stdout, &stderr)
	require.Equal(Te, exitOK, code, stderr.String())
	require.Equal(Te, out+"\n", stdout.String())
	require.Contains(Te, stderr.String(), `"run_id"`)
	// segment 1, frames 0..1 and segment 3, frames 0..3, every other frame.
	t, err := traj.LoadPrefix(out, 4, 2, 1)
	require.NoError(Te, err)
	require.Equal(Te, 3, t.NFrames())
}

func TestRunDefaults(Te *testing.T) {
	dir := fixture(Te)
	Te.Chdir(dir)
	//registered so the variables the env file sets are removed after the test.
	for _, v := range []string{"STITCH_FORMAT", "STITCH_ALIGN"} {
		Te.Setenv(v, "")
		os.Unsetenv(v)
	}
	require.NoError(Te, os.WriteFile(filepath.Join(dir, "stitch.env"), []byte("STITCH_FORMAT=stz\nSTITCH_ALIGN=no\n"), 0o644))
	var stdout, stderr bytes.Buffer
	code := run(args(dir, "3", "-s", "0", "--env", "stitch.env"), &stdout, &stderr)
	require.Equal(Te, exitOK, code, stderr.String())
	require.Equal(Te, "trace-0-to-3.stz\n", stdout.String())
	_, err := os.Stat(filepath.Join(dir, "trace-0-to-3.stz"))
	require.NoError(Te, err)
	code = run(args(dir, "3", "--env", "missing.env"), &stdout, &stderr)
	require.Equal(Te, exitConfiguration, code)
}

func TestRunExitCodes(Te *testing.T) {
	dir := fixture(Te)
	out := filepath.Join(dir, "never.dcd")
	cases := []struct {
		name string
		args []string
		code int
	}{
		{"help", []string{"--help"}, exitOK},
		{"arguments", []string{"a", "b"}, exitConfiguration},
		{"unknown flag", args(dir, "7", "--frobnicate"), exitConfiguration},
		{"end state", args(dir, "seven", "-o", out), exitConfiguration},
		{"stride", args(dir, "7", "-o", out, "-k", "0"), exitConfiguration},
		{"no segments", []string{filepath.Join(dir, "nothing*.dcd"), filepath.Join(dir, "top.pdb"), filepath.Join(dir, "labels.json"), "7"}, exitConfiguration},
		{"state not found", args(dir, "70", "-o", out), exitStateNotFound},
		{"trace", args(dir, "7", "-o", out, "-s", "2"), exitTrace},
		{"structural", args(dir, "7", "-o", out, "--selection", "resname ALA"), exitStructural},
	}
	for _, c := range cases {
		var stdout, stderr bytes.Buffer
		code := run(c.args, &stdout, &stderr)
		require.Equal(Te, c.code, code, "%s: %s", c.name, stderr.String())
		if c.code != exitOK {
			require.Empty(Te, stdout.String(), c.name)
		}
	}
	_, err := os.Stat(out)
	require.True(Te, os.IsNotExist(err))

	//a bad stride is reported before the segment pattern is even looked at.
	var sout, serr bytes.Buffer
	nothing := []string{filepath.Join(dir, "nothing*.dcd"), filepath.Join(dir, "top.pdb"), filepath.Join(dir, "labels.json"), "7", "--stride", "0"}
	require.Equal(Te, exitConfiguration, run(nothing, &sout, &serr))
	require.Contains(Te, serr.String(), "stride")
	require.NotContains(Te, serr.String(), "segments")

	//a segment file that is too short.
	require.NoError(Te, os.Truncate(filepath.Join(dir, "seg03.dcd"), 0))
	var stdout, stderr bytes.Buffer
	code := run(args(dir, "7", "-o", out), &stdout, &stderr)
	require.Equal(Te, exitSegmentLoad, code, stderr.String())
}

func TestExitCode(Te *testing.T) {
	require.Equal(Te, exitOK, exitCode(nil))
	require.Equal(Te, exitOther, exitCode(errors.New("disk on fire")))
	wrapped := fmt.Errorf("wrapped: %w", &stitch.SegmentLoadError{Segment: 2})
	require.Equal(Te, exitSegmentLoad, exitCode(wrapped))
	require.Equal(Te, exitStructural, exitCode(&stitch.StructuralMismatchError{}))
	require.Equal(Te, exitTrace, exitCode(&stitch.TraceError{}))
}

func TestSegmentFiles(Te *testing.T) {
	dir := Te.TempDir()
	for _, n := range []string{"b.dcd", "a.dcd", "c.dcd", "notes.txt"} {
		require.NoError(Te, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
	got, err := segmentFiles(filepath.Join(dir, "*.dcd"))
	require.NoError(Te, err)
	for i, n := range []string{"a.dcd", "b.dcd", "c.dcd"} {
		require.True(Te, strings.HasSuffix(got[i], n))
	}
	_, err = segmentFiles(filepath.Join(dir, "[")) //bad pattern
	var conf *stitch.ConfigurationError
	require.ErrorAs(Te, err, &conf)
}

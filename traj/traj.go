/*
 * traj.go, part of stitch.
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

// Package traj opens and creates trajectory files by their extension, and keeps
// trajectories in memory.
//
// Supported containers are DCD (optionally compressed, for reading only) and STF for
// trajectories, Amber ASCII trajectories (mdcrd, optionally gzipped) for reading only,
// plus PDB and PDBx/mmCIF files, read as one frame per model.
package traj

import (
	"path/filepath"
	"strings"

	"github.com/rmera/stitch/chem"
	"github.com/rmera/stitch/traj/crd"
	"github.com/rmera/stitch/traj/dcd"
	"github.com/rmera/stitch/traj/stf"
)

// Reader is a trajectory open for reading.
type Reader interface {
	chem.Traj
	Close()
}

// Writer is a trajectory open for writing. CloseErr must be called to
// complete the file.
type Writer interface {
	chem.TrajWriter
	CloseErr() error
}

// Format returns the trajectory format of the file name, "dcd", "stf", "crd" or "pdb",
// judging by its extension, or "" if the extension is not known.
// Compressed DCD files (name.dcd.gz, for instance) are "dcd", gzipped
// Amber trajectories are "crd".
func Format(name string) string {
	name = strings.ToLower(name)
	ext := filepath.Ext(name)
	if c := dcd.Compression(name); c != "" {
		ext = filepath.Ext(strings.TrimSuffix(name, ext))
		switch {
		case ext == ".dcd":
			return "dcd"
		case c == "gz" && isCrd(ext):
			return "crd"
		}
		return ""
	}
	if isCrd(ext) {
		return "crd"
	}
	switch ext {
	case ".dcd":
		return "dcd"
	case ".stf", ".stz", ".stl", ".str":
		return "stf"
	case ".pdb", ".ent", ".cif", ".mmcif":
		return "pdb"
	}
	return ""
}

// Writable returns true if trajectories can be written in format.
func Writable(format string) bool {
	return format == "dcd" || format == "stf"
}

// Creatable returns true if Create can write to the file name. Compressed DCD
// files can be read but not written.
func Creatable(name string) bool {
	f := Format(name)
	return Writable(f) && (f != "dcd" || dcd.Compression(name) == "")
}

func isCrd(ext string) bool {
	return ext == ".mdcrd" || ext == ".crd" || ext == ".trj"
}

// Open opens the trajectory file name for reading. Amber trajectories
// don't store the number of atoms, so it must be given as natoms for them.
// It is ignored for the other formats.
func Open(name string, natoms ...int) (Reader, error) {
	switch Format(name) {
	case "crd":
		n := 0
		if len(natoms) > 0 {
			n = natoms[0]
		}
		r, err := crd.New(name, n)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "dcd":
		r, err := dcd.New(name)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "stf":
		r, _, err := stf.New(name)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "pdb":
		mol, err := chem.TopologyFileRead(name)
		if err != nil {
			return nil, err
		}
		return mol, nil
	}
	return nil, &FormatError{Name: name}
}

// Create creates the trajectory file name for writing frames of natoms atoms.
// If box is given and true, the file is prepared to store a periodic box with
// every frame, which DCD files need to know up front. STF files store boxes anyway.
func Create(name string, natoms int, box ...bool) (Writer, error) {
	if !Creatable(name) {
		return nil, &FormatError{Name: name, Write: true}
	}
	switch Format(name) {
	case "dcd":
		w, err := dcd.NewWriter(name, natoms, box...)
		if err != nil {
			return nil, err
		}
		return w, nil
	case "stf":
		w, err := stf.NewWriter(name, natoms, nil)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	return nil, &FormatError{Name: name, Write: true}
}

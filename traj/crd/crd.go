/*
 * crd.go, part of stitch.
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

// Package crd reads Amber ASCII trajectories (mdcrd). The files have a title line,
// followed by the coordinates of each frame in lines of ten 8-character fields,
// each frame starting in a new line, and, optionally, a line with the
// box lengths after each frame. The number of atoms is not in the file, so
// it has to be given. Gzip-compressed files (name.mdcrd.gz) are also read.
package crd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rmera/stitch/chem"
	v3 "github.com/rmera/stitch/v3"

	"github.com/klauspost/compress/gzip"
)

const fieldWidth = 8

// CrdObj is an Amber ASCII trajectory open for reading. It implements chem.Traj.
type CrdObj struct {
	natoms   int
	readable bool
	filename string
	title    string
	fhandle  *os.File
	closers  []io.Closer
	crd      *bufio.Reader
	pending  []float64 //values of a line read past the end of the previous frame
	eof      bool
	values   []float64
}

// New opens the Amber trajectory filename, with natoms atoms per frame.
func New(filename string, natoms int) (*CrdObj, error) {
	if natoms < 1 {
		return nil, Error{NoAtoms, filename, []string{"New"}, true}
	}
	C := &CrdObj{natoms: natoms, filename: filename}
	var err error
	C.fhandle, err = os.Open(filename)
	if err != nil {
		return nil, Error{err.Error(), filename, []string{"os.Open", "New"}, true}
	}
	var r io.Reader = C.fhandle
	if strings.ToLower(filepath.Ext(filename)) == ".gz" {
		zr, err := gzip.NewReader(C.fhandle)
		if err != nil {
			C.fhandle.Close()
			return nil, Error{err.Error(), filename, []string{"gzip.NewReader", "New"}, true}
		}
		C.closers = append(C.closers, zr)
		r = zr
	}
	C.crd = bufio.NewReader(r)
	//The first line is just a title
	C.title, err = C.crd.ReadString('\n')
	if err != nil && (err != io.EOF || C.title == "") {
		C.Close()
		return nil, Error{"Unable to read the title line: " + err.Error(), filename, []string{"New"}, true}
	}
	C.title = strings.TrimSpace(C.title)
	C.values = make([]float64, 0, 3*natoms)
	C.readable = true
	return C, nil
}

// Readable returns true if the object is ready to be read from
// false otherwise. It doesnt guarantee that there is something
// to read.
func (C *CrdObj) Readable() bool {
	return C.readable
}

// Len returns the number of atoms per frame.
func (C *CrdObj) Len() int {
	return C.natoms
}

// Title returns the title line of the file.
func (C *CrdObj) Title() string {
	return C.title
}

// Close closes the file. The object can't be read afterwards.
func (C *CrdObj) Close() {
	if !C.readable && C.fhandle == nil {
		return
	}
	for _, v := range C.closers {
		v.Close()
	}
	if C.fhandle != nil {
		C.fhandle.Close()
		C.fhandle = nil
	}
	C.readable = false
}

// line reads the next line and returns its fields. It returns io.EOF
// only if there is nothing left to read.
func (C *CrdObj) line() ([]float64, error) {
	l, err := C.crd.ReadString('\n')
	if err != nil && (err != io.EOF || l == "") {
		return nil, err
	}
	l = strings.TrimRight(l, " \r\n")
	ret := make([]float64, 0, 10)
	for i := 0; i < len(l); i += fieldWidth {
		j := i + fieldWidth
		if j > len(l) {
			j = len(l)
		}
		f := strings.TrimSpace(l[i:j])
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("can't parse %q: %w", f, err)
		}
		ret = append(ret, v)
	}
	return ret, nil
}

// Next reads the next frame into keep, or skips it if keep is nil. If a box is
// given and the file has box information, the first slice in box, which needs
// at least 9 elements, is filled with the 3 box vectors. Amber trajectories only
// store the box lengths, so the box is taken to be rectangular.
func (C *CrdObj) Next(keep *v3.Matrix, box ...[]float64) error {
	if !C.readable {
		return Error{TrajUnIni, C.filename, []string{"Next"}, true}
	}
	if C.eof {
		C.readable = false
		return newLastFrameError(C.filename, "Next")
	}
	need := 3 * C.natoms
	C.values = append(C.values[:0], C.pending...)
	C.pending = C.pending[:0]
	for len(C.values) < need {
		l, err := C.line()
		if err == io.EOF {
			C.readable = false
			if len(C.values) == 0 {
				return newLastFrameError(C.filename, "Next")
			}
			return Error{IncompleteFrame, C.filename, []string{"Next"}, true}
		}
		if err != nil {
			C.readable = false
			return Error{err.Error(), C.filename, []string{"Next"}, true}
		}
		C.values = append(C.values, l...)
	}
	if len(C.values) > need {
		C.readable = false
		return Error{fmt.Sprintf("Frame has %d values, %d expected. Wrong number of atoms?", len(C.values), need), C.filename, []string{"Next"}, true}
	}
	if keep != nil {
		if keep.NVecs() != C.natoms {
			return Error{fmt.Sprintf("Matrix has %d vectors, the trajectory has %d atoms", keep.NVecs(), C.natoms), C.filename, []string{"Next"}, true}
		}
		for i := 0; i < C.natoms; i++ {
			keep.Set(i, 0, C.values[3*i])
			keep.Set(i, 1, C.values[3*i+1])
			keep.Set(i, 2, C.values[3*i+2])
		}
	}
	return C.nextBox(box...)
}

// nextBox reads the line after a frame. If it is a box line, it is put in box,
// otherwise it is kept as the first line of the next frame.
func (C *CrdObj) nextBox(box ...[]float64) error {
	l, err := C.line()
	if err == io.EOF {
		C.eof = true
		return nil
	}
	if err != nil {
		C.readable = false
		return Error{err.Error(), C.filename, []string{"nextBox"}, true}
	}
	//the first line of a frame with more than one atom has more than 3 values.
	if len(l) == 3 && C.natoms > 1 {
		if len(box) > 0 && len(box[0]) >= 9 {
			chem.CellToBox(box[0], l[0], l[1], l[2], 90, 90, 90)
		}
		return nil
	}
	C.pending = append(C.pending, l...)
	return nil
}

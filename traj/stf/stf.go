/*
 * stf.go, part of stitch.
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

package stf

import (
	"bufio"
	"compress/lzw"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/stitch/v3"
)

const (
	lzwLitwidth int = 8
	//DefaultPrec is the number of decimal places kept when no precision is given.
	DefaultPrec = 2
)

// compression returns the compression scheme for a file name, chosen by its last letter.
func compression(name string) byte {
	if name == "" {
		return 's'
	}
	switch c := strings.ToLower(name)[len(name)-1]; c {
	case 'l', 'z', 'r':
		return c
	default:
		return 's' //zstd
	}
}

// StfR is a STF trajectory open for reading.
type StfR struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	mult     float64
	readable bool
}

// New opens a STF trajectory for reading, and returns a pointer
// to the handle, a map with the metadata (possibly empty, never nil)
// and error or nil.
func New(name string) (*StfR, map[string]string, error) {
	S := new(StfR)
	S.natoms = -1 //just so we know if things don't work
	S.prec = DefaultPrec
	m := make(map[string]string)
	var err error
	S.filename = name
	S.f, err = os.Open(S.filename)
	if err != nil {
		return nil, nil, Error{err.Error(), name, []string{"os.Open", "New"}, true}
	}
	intermediate := bufio.NewReader(S.f)
	switch compression(name) {
	case 'l':
		S.dec = lzw.NewReader(intermediate, lzw.MSB, lzwLitwidth)
	case 'z':
		S.dec, err = gzip.NewReader(intermediate)
	case 'r':
		S.dec = flate.NewReader(intermediate)
	default:
		var zr *zstd.Decoder
		zr, err = zstd.NewReader(intermediate)
		if err == nil {
			S.dec = zr.IOReadCloser()
		}
	}
	if err != nil {
		S.f.Close()
		return nil, nil, Error{"Can't open decompressor: " + err.Error(), S.filename, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.dec)
	fail := func(msg string) (*StfR, map[string]string, error) {
		S.dec.Close()
		S.f.Close()
		return nil, nil, Error{msg, S.filename, []string{"New"}, true}
	}
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			return fail("Can't read header: " + err.Error())
		}
		str = strings.TrimSpace(str)
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				return fail(fmt.Sprintf("Can't read atom number from '%s'", str))
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil || S.natoms <= 0 {
				return fail(fmt.Sprintf("Can't read atom number from '%s'", nat[1]))
			}
			break
		}
		if str == "" {
			continue
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			return fail(fmt.Sprintf("Malformed header line '%s'", str))
		}
		m[k] = v
	}
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			S.prec = prec
		} else {
			log.Printf("Invalid precision for trajectory %s. Will assume the default", S.filename)
		}
	}
	S.mult = math.Pow(10, float64(S.prec))
	S.readable = true
	return S, m, nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S.readable
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}

// Prec returns the number of decimal places stored in the trajectory.
func (S *StfR) Prec() int {
	return S.prec
}

func coordsDecode(str string, temp *[3]float64, mult float64) error {
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: %d fields in '%s'", len(s), str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s). Error: %s", i, v, err.Error())
		}
		temp[i] = float64(f) / mult
	}
	return nil
}

// Next puts in the given matrix (c) the coordinates for the next frame of the trajectory
// and, if given, and the information is present, puts the box vector information in box.
// If c is nil, the frame is read, and checked, but discarded.
// At the end of the trajectory a chem.LastFrameError is returned.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() != S.natoms {
		return Error{fmt.Sprintf("Output matrix has %d rows, the trajectory %d atoms", c.NVecs(), S.natoms), S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			// EOF should only happen when reading the first atom
			if errors.Is(err, io.EOF) && i == 0 && strings.TrimSpace(b) == "" {
				//nothing bad happened here, the trajectory just ended.
				S.Close()
				return newLastFrameError(S.filename, "Next")
			}
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			S.Close()
			return Error{fmt.Sprintf("Reading atom %d: %s", i, err.Error()), S.filename, []string{"Next"}, true}
		}
		if strings.HasPrefix(b, "*") {
			S.Close()
			return Error{fmt.Sprintf("%s: frame with %d atoms, expected %d", WrongFormat, i, S.natoms), S.filename, []string{"Next"}, true}
		}
		if err := coordsDecode(b, &temp, S.mult); err != nil {
			S.Close()
			return Error{err.Error(), S.filename, []string{"coordsDecode", "Next"}, true}
		}
		if c == nil {
			continue //We ignore this whole frame, reading the content but not saving it.
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		S.Close()
		return Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if !strings.HasPrefix(s, "*") {
		S.Close()
		return Error{WrongFormat + ": wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		S.readBox(s, box[0])
	}
	return nil
}

// readBox fills b with the 9 numbers after the "*" in the frame termination line.
// If something fails, b is zeroed and the problem is logged, no error returned.
func (S *StfR) readBox(s string, b []float64) {
	fields := strings.Fields(s)
	if len(fields) == 1 {
		return //no box in this frame
	}
	if len(fields) < 10 { // The "*" and the 9 numbers
		log.Printf("Trajectory file %s does not contain (correct) box information: %s", S.filename, fields) //just a heads-up
		return
	}
	for j, v := range fields[1:10] {
		var err error
		b[j], err = strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("Failed to read box in a frame from %s", S.filename)
			for i := range b {
				b[i] = 0.0
			}
			return
		}
	}
}

// Close closes the object, and marks it as unreadable
func (S *StfR) Close() {
	if !S.readable {
		return
	}
	S.dec.Close()
	S.f.Close()
	S.readable = false
}

/*
 * stf_write.go, part of stitch.
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
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/stitch/v3"
)

// StfW is a STF trajectory open for writing.
type StfW struct {
	f         *os.File
	enc       io.WriteCloser
	h         *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	prec      int
	mult      float64
}

// NewWriter creates the STF file name, for trajectories with natoms atoms, and writes the header.
// The header map can be nil. Its "prec" key, if present, sets the precision (default 2).
// compressionLevel, if given, is passed to the compressor (deflate levels for gzip/deflate,
// zstd levels for zstd, ignored for lzw).
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	if natoms <= 0 {
		return nil, Error{fmt.Sprintf("Invalid number of atoms %d", natoms), name, []string{"NewWriter"}, true}
	}
	S := new(StfW)
	S.filename = name
	S.natoms = natoms
	S.prec = DefaultPrec
	if header == nil {
		header = make(map[string]string)
	}
	if p, ok := header["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			S.prec = prec
		} else {
			log.Printf("Invalid precision for trajectory %s. Will use the default", S.filename)
		}
	}
	S.mult = math.Pow(10, float64(S.prec))
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"os.Create", "NewWriter"}, true}
	}
	level := flate.DefaultCompression
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	switch compression(name) {
	case 'l':
		S.enc = lzw.NewWriter(S.f, lzw.MSB, lzwLitwidth)
	case 'z':
		S.enc, err = gzip.NewWriterLevel(S.f, level)
	case 'r':
		S.enc, err = flate.NewWriter(S.f, level)
	default:
		zlevel := zstd.SpeedDefault
		if len(compressionLevel) > 0 {
			zlevel = zstd.EncoderLevelFromZstd(compressionLevel[0])
		}
		S.enc, err = zstd.NewWriter(S.f, zstd.WithEncoderLevel(zlevel))
	}
	if err != nil {
		S.f.Close()
		return nil, Error{"Can't create compressor: " + err.Error(), S.filename, []string{"NewWriter"}, true}
	}
	S.h = bufio.NewWriter(S.enc)
	S.writeable = true
	keys := make([]string, 0, len(header))
	for k := range header {
		if k != "prec" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fmt.Fprintf(S.h, "prec=%d\n", S.prec)
	for _, k := range keys {
		fmt.Fprintf(S.h, "%s=%s\n", k, header[k])
	}
	fmt.Fprintf(S.h, "** %d\n", S.natoms)
	return S, nil
}

// Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

// WNext writes a frame. If a box with at least 9 numbers is given, it is
// stored with the frame.
func (S *StfW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	v := coord.NVecs()
	if v != S.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	buf := make([]byte, 0, 64)
	for i := 0; i < v; i++ {
		buf = buf[:0]
		for j := 0; j < 3; j++ {
			if j > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendInt(buf, int64(math.RoundToEven(coord.At(i, j)*S.mult)), 10)
		}
		buf = append(buf, '\n')
		S.h.Write(buf)
	}
	var err error
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		_, err = fmt.Fprintf(S.h, "* %.4f %.4f %.4f %.4f %.4f %.4f %.4f %.4f %.4f\n", b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		_, err = S.h.WriteString("*\n")
	}
	//bufio.Writer errors are sticky, so checking the last write is enough.
	if err != nil {
		return Error{err.Error(), S.filename, []string{"WNext"}, true}
	}
	return nil
}

// Close flushes and closes the trajectory, ignoring errors.
func (S *StfW) Close() {
	S.CloseErr()
}

// CloseErr flushes and closes the trajectory, returning the first error found.
// Close must be called for the file to be complete.
func (S *StfW) CloseErr() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	errs := []error{S.h.Flush(), S.enc.Close(), S.f.Close()}
	for _, err := range errs {
		if err != nil {
			return Error{err.Error(), S.filename, []string{"CloseErr"}, true}
		}
	}
	return nil
}

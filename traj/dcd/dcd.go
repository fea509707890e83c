/*
 * dcd.go, part of stitch.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

// Package dcd reads and writes CHARMM/NAMD binary (DCD) trajectories.
// Both endiannesses are read; files are always written little-endian.
// Fixed atoms and X-PLOR files are not supported.
package dcd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/rmera/stitch/chem"
	v3 "github.com/rmera/stitch/v3"
)

const mAXTITLE int32 = 80

// DCDObj is a container for an Charmm/NAMD binary trajectory file, opened for reading.
type DCDObj struct {
	natoms     int32
	nframes    int32 //as declared in the header. May be wrong in truncated files.
	readLast   bool  //Have we read the last frame?
	readable   bool  //Is it ready to be read?
	filename   string
	charmm     bool //Charmm traj?
	extrablock bool
	fourdim    bool
	fixed      int32     //Fixed atoms (not supported)
	fhandle    *os.File  //The DCD file
	dcd        io.Reader //what we read from, maybe a decompressor over fhandle
	closers    []io.Closer
	dcdFields  [][]float32
	endian     binary.ByteOrder
}

// New opens the DCD file filename for reading. Files ending in .gz, .flate, .zst or .lzw
// are decompressed on the fly.
func New(filename string) (*DCDObj, error) {
	traj := new(DCDObj)
	if err := traj.initRead(filename); err != nil {
		traj.Close()
		return nil, errDecorate(err, "New")
	}
	traj.dcdFields = make([][]float32, 3)
	for i := range traj.dcdFields {
		traj.dcdFields[i] = make([]float32, int(traj.natoms))
	}
	return traj, nil
}

// Readable returns true if the object is ready to be read from
// false otherwise. It doesnt guarantee that there is something
// to read.
func (D *DCDObj) Readable() bool {
	return D.readable
}

// Len returns the number of atoms per frame in the DCDObj.
func (D *DCDObj) Len() int {
	return int(D.natoms)
}

// DeclaredFrames returns the number of frames stated in the file header.
func (D *DCDObj) DeclaredFrames() int {
	return int(D.nframes)
}

// Close closes the underlying file. The object is not readable afterwards.
func (D *DCDObj) Close() {
	for i := len(D.closers) - 1; i >= 0; i-- {
		D.closers[i].Close()
	}
	D.closers = nil
	if D.fhandle != nil {
		D.fhandle.Close()
		D.fhandle = nil
	}
	D.readable = false
}

// initRead initializes a DCDObj for reading.
// It requires only the filename, which must be valid.
// It support big and little endianness, charmm or (namd>=2.1) and no
// fixed atoms.
func (D *DCDObj) initRead(name string) error {
	var err error
	D.dcd, err = D.prepSource(name)
	if err != nil {
		return err
	}
	wrap := func(err error, caller string) error {
		return Error{err.Error(), D.filename, []string{caller, "initRead"}, true}
	}
	wrong := func(msg string) error {
		return Error{WrongFormat + ": " + msg, D.filename, []string{"initRead"}, true}
	}
	D.endian = binary.LittleEndian
	var check int32
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrap(err, "binary.Read")
	}
	//The first thing we should read is an 84.
	//If this fails it means that the file is big endian.
	if check != 84 {
		if swapped := int32(binary.BigEndian.Uint32(binary.LittleEndian.AppendUint32(nil, uint32(check)))); swapped != 84 {
			return wrong("header doesn't start with 84")
		}
		D.endian = binary.BigEndian
	}
	//Then the magic number "CORD"
	magic := make([]byte, 4)
	if _, err := io.ReadFull(D.dcd, magic); err != nil {
		return wrap(err, "io.ReadFull")
	}
	if string(magic) != "CORD" {
		return wrong("wrong magic number")
	}
	//We first read a big chunk for random access.
	buf := make([]byte, 80)
	if _, err := io.ReadFull(D.dcd, buf); err != nil {
		return wrap(err, "io.ReadFull")
	}
	NB := bytes.NewReader //shortness sake
	binary.Read(NB(buf[0:]), D.endian, &D.nframes)
	//X-plor sets this last int to zero, charmm sets it to its version number.
	//if we have a charmm file we get some additional flags.
	binary.Read(NB(buf[76:]), D.endian, &check)
	if check == 0 {
		return wrong("X-plor DCD not supported")
	}
	D.charmm = true
	binary.Read(NB(buf[40:]), D.endian, &check)
	D.extrablock = check != 0
	binary.Read(NB(buf[44:]), D.endian, &check)
	D.fourdim = check == 1
	binary.Read(NB(buf[32:]), D.endian, &D.fixed)
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrap(err, "binary.Read")
	}
	if check != 84 {
		return wrong("header block doesn't end with 84")
	}
	var blocksize int32
	if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
		return wrap(err, "binary.Read")
	}
	//how many units of MAXTITLE does the title have?
	var ntitle int32
	if err := binary.Read(D.dcd, D.endian, &ntitle); err != nil {
		return wrap(err, "binary.Read")
	}
	if ntitle < 0 || 4+ntitle*mAXTITLE != blocksize {
		return wrong(fmt.Sprintf("title block of %d bytes can't hold %d lines", blocksize, ntitle))
	}
	title := make([]byte, mAXTITLE*ntitle)
	if _, err := io.ReadFull(D.dcd, title); err != nil {
		return wrap(err, "io.ReadFull")
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrap(err, "binary.Read")
	}
	if check != blocksize {
		return wrong("title block size mismatch")
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrap(err, "binary.Read")
	}
	if check != 4 { //one must read a 4 before the natoms
		return wrong("no 4 before the number of atoms")
	}
	if err := binary.Read(D.dcd, D.endian, &D.natoms); err != nil {
		return wrap(err, "binary.Read")
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrap(err, "binary.Read")
	}
	if check != 4 { //and one more 4
		return wrong("no 4 after the number of atoms")
	}
	if D.natoms <= 0 {
		return wrong(fmt.Sprintf("invalid number of atoms %d", D.natoms))
	}
	if D.fixed != 0 {
		return Error{"Fixed atoms not supported", D.filename, []string{"initRead"}, true}
	}
	D.readable = true
	return nil
}

// Next Reads the next frame in a DCDObj that has been initialized for read
// With initread. If keep is not nil, the coordinates are put in it, otherwise
// they are discarded. If the file contains unit cell information and box is given,
// the first slice in box, which needs at least 9 elements, is filled with the 3 box vectors.
func (D *DCDObj) Next(keep *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return Error{TrajUnIni, D.filename, []string{"Next"}, true}
	}
	var cell []float64
	if len(box) > 0 {
		cell = box[0]
	}
	if err := D.nextRaw(D.dcdFields, cell); err != nil {
		D.readable = false
		return errDecorate(err, "Next")
	}
	if keep == nil {
		return nil
	}
	if keep.NVecs() != int(D.natoms) {
		return Error{fmt.Sprintf("Output matrix has %d rows, the trajectory %d atoms", keep.NVecs(), D.natoms), D.filename, []string{"Next"}, true}
	}
	for i := 0; i < int(D.natoms); i++ {
		keep.Set(i, 0, float64(D.dcdFields[0][i]))
		keep.Set(i, 1, float64(D.dcdFields[1][i]))
		keep.Set(i, 2, float64(D.dcdFields[2][i]))
	}
	return nil
}

// nextRaw reads the next frame into blocks, and the unit cell, if any, into cell.
// A clean end of file before the frame starts returns a lastFrameError.
func (D *DCDObj) nextRaw(blocks [][]float32, cell []float64) error {
	if len(blocks[0]) != int(D.natoms) || len(blocks[1]) != int(D.natoms) || len(blocks[2]) != int(D.natoms) {
		return Error{NotEnoughSpace, D.filename, []string{"nextRaw"}, true}
	}
	if D.readLast {
		return newLastFrameError(D.filename, "nextRaw")
	}
	var blocksize int32
	if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
		if errors.Is(err, io.EOF) {
			D.readLast = true
			return newLastFrameError(D.filename, "nextRaw")
		}
		return D.wrapRead(err)
	}
	//Sadly, even when there is an extra block, it is not present in all
	//snapshots for some trajectories, so we must use the block size to see if
	//there is an extra block or if the X block starts inmediately
	if D.extrablock && blocksize != D.natoms*4 {
		b, err := D.readByteBlock(blocksize)
		if err != nil {
			return err
		}
		//the CHARMM unit cell is A, gamma, B, beta, alpha, C, as float64
		if len(b) == 48 && len(cell) >= 9 {
			var uc [6]float64
			for i := range uc {
				uc[i] = math.Float64frombits(D.endian.Uint64(b[i*8 : i*8+8]))
			}
			chem.CellToBox(cell, uc[0], uc[2], uc[5], dcdAngle(uc[4]), dcdAngle(uc[3]), dcdAngle(uc[1]))
		}
		if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
			return D.wrapRead(err)
		}
	}
	for i := 0; i < 3; i++ {
		if i > 0 {
			if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
				return D.wrapRead(err)
			}
		}
		if blocksize != D.natoms*4 {
			return Error{fmt.Sprintf("%s: coordinate block of %d bytes for %d atoms", WrongFormat, blocksize, D.natoms), D.filename, []string{"nextRaw"}, true}
		}
		if err := D.readFloat32Block(blocksize, blocks[i]); err != nil {
			return err
		}
	}
	//we skip the 4-D values if they exist. Apparently this is not present in the
	//last snapshot, so we use an EOF here to signal that we have read the last snapshot.
	if D.fourdim {
		if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
			if errors.Is(err, io.EOF) {
				D.readLast = true
				return nil
			}
			return D.wrapRead(err)
		}
		if _, err := D.readByteBlock(blocksize); err != nil {
			return err
		}
	}
	return nil
}

// an EOF in the middle of a frame means a truncated file.
func (D *DCDObj) wrapRead(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return Error{err.Error(), D.filename, []string{"binary.Read", "nextRaw"}, true}
}

// Reads a block of float32 of known size into block, which must have the
// appropiate size, and checks the size mark at the end.
func (D *DCDObj) readFloat32Block(blocksize int32, block []float32) error {
	var check int32
	if err := binary.Read(D.dcd, D.endian, block); err != nil {
		return D.wrapRead(err)
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return D.wrapRead(err)
	}
	if check != blocksize {
		return Error{"Failed security check", D.filename, []string{"readFloat32Block"}, true}
	}
	return nil
}

// Reads blocksize bytes, and checks the size mark at the end.
func (D *DCDObj) readByteBlock(blocksize int32) ([]byte, error) {
	if blocksize < 0 {
		return nil, Error{WrongFormat, D.filename, []string{"readByteBlock"}, true}
	}
	var check int32
	block := make([]byte, blocksize)
	if _, err := io.ReadFull(D.dcd, block); err != nil {
		return nil, D.wrapRead(err)
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return nil, D.wrapRead(err)
	}
	if check != blocksize {
		return nil, Error{"Failed security check", D.filename, []string{"readByteBlock"}, true}
	}
	return block, nil
}

// dcdAngle returns, in degrees, a unit cell angle as stored in a DCD file.
// Newer NAMD versions store the cosine of the angle, older ones the angle itself.
func dcdAngle(v float64) float64 {
	if v == 0 {
		return 90
	}
	if v >= -1 && v <= 1 {
		return math.Acos(v) * 180 / math.Pi
	}
	return v
}

/*
 * dcd_write.go, part of stitch.
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

package dcd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/rmera/stitch/chem"
	v3 "github.com/rmera/stitch/v3"
)

// DCDWObj is a container for an Charmm/NAMD binary trajectory file
// opened for writing
type DCDWObj struct {
	natoms   int32
	writable bool //Is it ready to be written on
	filename string
	frames   int32
	dcd      *os.File //The DCD file
	buf      bytes.Buffer
	endian   binary.ByteOrder
	unitcell bool
}

// NewWriter initializes a DCD trajectory for writing. The file is always
// a plain, little-endian CHARMM DCD, whatever its extension.
// If unitcell is given and true, every frame carries a unit cell block.
func NewWriter(filename string, natoms int, unitcell ...bool) (*DCDWObj, error) {
	traj := new(DCDWObj)
	traj.natoms = int32(natoms)
	traj.filename = filename
	traj.unitcell = len(unitcell) > 0 && unitcell[0]
	if err := traj.initWrite(filename); err != nil {
		if traj.dcd != nil {
			traj.dcd.Close()
		}
		return nil, errDecorate(err, "NewWriter")
	}
	return traj, nil
}

// Len returns the number of atoms per frame.
func (D *DCDWObj) Len() int {
	return int(D.natoms)
}

// Frames returns the number of frames written so far.
func (D *DCDWObj) Frames() int {
	return int(D.frames)
}

// Close closes the file. Further writes will fail.
func (D *DCDWObj) Close() {
	if !D.writable {
		return
	}
	D.dcd.Close()
	D.writable = false
}

// CloseErr is like Close but it returns the error from closing the file,
// which can reveal a failed write.
func (D *DCDWObj) CloseErr() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	if err := D.dcd.Close(); err != nil {
		return Error{err.Error(), D.filename, []string{"os.File.Close", "CloseErr"}, true}
	}
	return nil
}

// initWrite creates the file and writes the header.
func (D *DCDWObj) initWrite(name string) error {
	//if it's zero it means it hasn't been set.
	if D.natoms <= 0 {
		return Error{"Trajectory not initialized correctly, the number of atoms is not positive", D.filename, []string{"initWrite"}, true}
	}
	D.endian = binary.LittleEndian
	var err error
	D.dcd, err = os.Create(name)
	if err != nil {
		return Error{err.Error(), D.filename, []string{"os.Create", "initWrite"}, true}
	}
	b := &D.buf
	b.Reset()
	w := func(data any) {
		binary.Write(b, D.endian, data) //bytes.Buffer writes don't fail
	}
	w(int32(84))
	//For some reason, we have to write this magic number.
	b.WriteString("CORD")
	//The frames in the file go here. No frames written yet, updateFrames fixes it after every write.
	w(int32(0))
	w(int32(0)) //Initial time
	w(int32(1)) //step interval (nsavc)
	//5 zeros plus natom-nfreat (fixed atoms)
	for i := 0; i < 6; i++ {
		w(int32(0))
	}
	w(float32(1)) //delta time
	if D.unitcell {
		w(int32(1))
	} else {
		w(int32(0))
	}
	//8 zeros for charmm
	for i := 0; i < 8; i++ {
		w(int32(0))
	}
	w(int32(24)) //charmm version, let's say, 24
	w(int32(84))
	var ntitle int32 = 2
	w(4 + ntitle*mAXTITLE)
	w(ntitle)
	title := make([]byte, ntitle*mAXTITLE)
	for j := range title {
		title[j] = ' '
	}
	copy(title, "REMARKS WRITTEN BY STITCH")
	b.Write(title)
	w(4 + ntitle*mAXTITLE)
	w(int32(4))
	w(D.natoms) //the number of atoms in each snapshot
	w(int32(4))
	if _, err := D.dcd.Write(b.Bytes()); err != nil {
		return Error{err.Error(), D.filename, []string{"os.File.Write", "initWrite"}, true}
	}
	D.writable = true
	return nil
}

// WNext writes the next frame to the trajectory. If the trajectory was created with
// a unit cell, the box (9 numbers, the 3 box vectors) is written as the frame's cell.
// A frame with no box gets an empty cell. Otherwise the box is ignored.
func (D *DCDWObj) WNext(towrite *v3.Matrix, box ...[]float64) error {
	if !D.writable {
		return Error{TrajUnIni, D.filename, []string{"WNext"}, true}
	}
	if towrite == nil {
		return Error{"got nil coordinates", D.filename, []string{"WNext"}, true}
	}
	if int32(towrite.NVecs()) != D.natoms {
		return Error{fmt.Sprintf("Coordinates (%d atoms) don't match the trajectory size (%d)", towrite.NVecs(), D.natoms), D.filename, []string{"WNext"}, true}
	}
	b := &D.buf
	b.Reset()
	if D.unitcell {
		//A, cos(gamma), B, cos(beta), cos(alpha), C, as NAMD does.
		uc := [6]float64{}
		if len(box) > 0 && len(box[0]) >= 9 {
			la, lb, lc, alpha, beta, gamma := chem.BoxToCell(box[0])
			uc = [6]float64{la, cosd(gamma), lb, cosd(beta), cosd(alpha), lc}
		}
		binary.Write(b, D.endian, int32(48))
		binary.Write(b, D.endian, uc)
		binary.Write(b, D.endian, int32(48))
	}
	blocksize := D.natoms * 4 //the size is required in bytes
	block := make([]float32, D.natoms)
	for j := 0; j < 3; j++ {
		for i := range block {
			block[i] = float32(towrite.At(i, j))
		}
		binary.Write(b, D.endian, blocksize)
		binary.Write(b, D.endian, block)
		binary.Write(b, D.endian, blocksize)
	}
	if _, err := D.dcd.Write(b.Bytes()); err != nil {
		return Error{err.Error(), D.filename, []string{"os.File.Write", "WNext"}, true}
	}
	D.frames++
	return errDecorate(D.updateFrames(), "WNext")
}

// DCD requires the number of frames at the begining.
func (D *DCDWObj) updateFrames() error {
	var nf [4]byte
	D.endian.PutUint32(nf[:], uint32(D.frames))
	//84 and "CORD" come before the number of frames.
	if _, err := D.dcd.WriteAt(nf[:], 8); err != nil {
		return Error{err.Error(), D.filename, []string{"os.File.WriteAt", "updateFrames"}, true}
	}
	//WriteAt doesn't move the offset, but we make sure we are at the end.
	if _, err := D.dcd.Seek(0, io.SeekEnd); err != nil {
		return Error{err.Error(), D.filename, []string{"os.File.Seek", "updateFrames"}, true}
	}
	return nil
}

func cosd(angle float64) float64 {
	if angle == 90 {
		return 0
	}
	return math.Cos(angle * math.Pi / 180)
}

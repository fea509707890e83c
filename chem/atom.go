/*
 * atom.go, part of stitch.
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

package chem

import (
	"fmt"

	v3 "github.com/rmera/stitch/v3"
)

// Atom contains the atoms read except for the coordinates, which will be in a matrix
// and the b-factors, which are in a separate slice of float64.
type Atom struct {
	Name      string
	ID        int
	MolName   string
	MolName1  byte //the one letter name for residues and nucleotids
	MolID     int
	Chain     string
	Mass      float64
	Occupancy float64
	Charge    float64
	Symbol    string
	Het       bool // is hetatm in the pdb file?
}

// Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	ret := *A
	return &ret
}

/*****Topology type***/

// Topology contains information about a molecule which is not expected to change in time (i.e. everything except for coordinates and b-factors)
type Topology struct {
	Atoms []*Atom
}

// NewTopology returns a topology containing the given atoms. The slice is not copied.
func NewTopology(ats []*Atom) *Topology {
	return &Topology{Atoms: ats}
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. Panics if
// out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() || i < 0 {
		panic(fmt.Sprintf("Topology: Requested Atom %d out of bounds (%d atoms)", i, T.Len()))
	}
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// SomeAtoms returns a new topology with the atoms in atomlist, in that order.
// The atoms themselves are shared with T.
func (T *Topology) SomeAtoms(atomlist []int) (*Topology, error) {
	ret := make([]*Atom, 0, len(atomlist))
	for k, j := range atomlist {
		if j >= T.Len() || j < 0 {
			return nil, CError{msg: fmt.Sprintf("Atom requested (Number: %d, value: %d) out of range", k, j), deco: []string{"SomeAtoms"}}
		}
		ret = append(ret, T.Atoms[j])
	}
	return NewTopology(ret), nil
}

// Masses returns a slice with the masses of the atoms, and an error if
// some mass is not set.
func (T *Topology) Masses() ([]float64, error) {
	mass := make([]float64, T.Len())
	for i, at := range T.Atoms {
		if at.Mass == 0 {
			return nil, CError{msg: fmt.Sprintf("Not all the masses have been obtained: %d %s", i, at.Name), deco: []string{"Masses"}}
		}
		mass[i] = at.Mass
	}
	return mass, nil
}

/**Type Molecule**/

// Molecule contains all the info for a molecule in many states. The info that is expected to change between states,
// Coordinates and b-factors are stored separately from other atomic info.
// A Molecule implements Traj, so a multi-model PDB file can be used as a trajectory segment.
type Molecule struct {
	*Topology
	Coords   []*v3.Matrix
	Bfactors [][]float64
	current  int
}

// NewMolecule makes a molecule with ats atoms, coords coordinates and bfactors b-factors.
// It returns error if the number of atoms in any frame differs from the topology.
func NewMolecule(ats *Topology, coords []*v3.Matrix, bfactors [][]float64) (*Molecule, error) {
	if ats == nil {
		return nil, CError{msg: "Supplied a nil Topology", deco: []string{"NewMolecule"}}
	}
	for i, c := range coords {
		if c.NVecs() != ats.Len() {
			return nil, CError{msg: fmt.Sprintf("Frame %d has %d atoms, the topology %d", i, c.NVecs(), ats.Len()), deco: []string{"NewMolecule"}}
		}
	}
	for i, b := range bfactors {
		if len(b) != ats.Len() {
			return nil, CError{msg: fmt.Sprintf("B-factor set %d has %d values, the topology %d atoms", i, len(b), ats.Len()), deco: []string{"NewMolecule"}}
		}
	}
	return &Molecule{Topology: ats, Coords: coords, Bfactors: bfactors}, nil
}

// LenFrames returns the number of frames in the molecule
func (M *Molecule) LenFrames() int {
	return len(M.Coords)
}

// Current returns the number of the next frame to be read
func (M *Molecule) Current() int {
	return M.current
}

// Readable returns true if the molecule has a frame ready to be read.
func (M *Molecule) Readable() bool {
	return M != nil && M.current < len(M.Coords)
}

// Next puts the next frame into V and returns an error or nil.
// The box argument is ignored, as a Molecule carries no box information.
// if V is nil the frame is skipped.
func (M *Molecule) Next(V *v3.Matrix, box ...[]float64) error {
	if M.current >= len(M.Coords) {
		return newLastFrameError("", "molecule")
	}
	M.current++
	if V == nil {
		return nil
	}
	if V.NVecs() != M.Len() {
		return CError{msg: fmt.Sprintf("Output matrix has %d rows, the molecule %d atoms", V.NVecs(), M.Len()), deco: []string{"Next"}}
	}
	V.Copy(M.Coords[M.current-1])
	return nil
}

// Close implements TrajCloser. It rewinds the molecule.
func (M *Molecule) Close() {
	M.current = 0
}

/*
 * pdb.go, part of stitch.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	v3 "github.com/rmera/stitch/v3"
)

// TopologyFileRead reads a structure file, PDB or PDBx/mmCIF, chosen by the extension
// (.cif and .mmcif are read as PDBx, anything else as PDB).
func TopologyFileRead(name string) (*Molecule, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".cif", ".mmcif":
		mol, err := PDBxFileRead(name)
		return mol, errDecorate(err, "TopologyFileRead")
	default:
		mol, err := PDBFileRead(name)
		return mol, errDecorate(err, "TopologyFileRead")
	}
}

// PDBFileRead reads a pdb file. Returns a Molecule. If there is one frame in the PDB
// the coordinates slice will be of lenght 1.
func PDBFileRead(pdbname string) (*Molecule, error) {
	pdbfile, err := os.Open(pdbname)
	if err != nil {
		return nil, CError{msg: err.Error(), deco: []string{"os.Open", "PDBFileRead"}}
	}
	defer pdbfile.Close()
	mol, err := PDBRead(pdbfile)
	return mol, errDecorate(err, "PDBFileRead "+pdbname)
}

// PDBRead reads a PDB from an io.Reader. Atom information is taken from the first model only,
// the following models only contribute coordinates and b-factors.
func PDBRead(pdb io.Reader) (*Molecule, error) {
	atoms := make([]*Atom, 0)
	coords := [][]float64{make([]float64, 0, 3)}
	bfactors := [][]float64{make([]float64, 0)}
	firstModel := true
	started := false //an atom line has been read in the current model
	scanner := bufio.NewScanner(pdb)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	nline := 0
	for scanner.Scan() {
		nline++
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			var c []float64
			var bfac float64
			var err error
			if firstModel {
				var at *Atom
				at, c, bfac, err = readFullPDBLine(line, nline)
				if err != nil {
					return nil, errDecorate(err, "PDBRead")
				}
				atoms = append(atoms, at)
			} else {
				c, bfac, err = readOnlyCoordsPDBLine(line, nline)
				if err != nil {
					return nil, errDecorate(err, "PDBRead")
				}
			}
			last := len(coords) - 1
			coords[last] = append(coords[last], c...)
			bfactors[last] = append(bfactors[last], bfac)
			started = true
		case strings.HasPrefix(line, "ENDMDL"):
			if started {
				firstModel = false
			}
		case strings.HasPrefix(line, "MODEL"):
			//A MODEL line after a model with atoms starts a new frame.
			if started {
				firstModel = false
				coords = append(coords, make([]float64, 0, len(atoms)*3))
				bfactors = append(bfactors, make([]float64, 0, len(atoms)))
				started = false
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, CError{msg: err.Error(), deco: []string{"bufio.Scanner", "PDBRead"}}
	}
	if len(atoms) == 0 {
		return nil, CError{msg: "No atoms found in PDB", deco: []string{"PDBRead"}}
	}
	//a trailing MODEL line with no atoms
	if len(coords[len(coords)-1]) == 0 {
		coords = coords[:len(coords)-1]
		bfactors = bfactors[:len(bfactors)-1]
	}
	mcoords := make([]*v3.Matrix, len(coords))
	for i, c := range coords {
		if len(c) != len(atoms)*3 {
			return nil, CError{msg: fmt.Sprintf("Model %d has %d atoms, the first model %d", i+1, len(c)/3, len(atoms)), deco: []string{"PDBRead"}}
		}
		var err error
		mcoords[i], err = v3.NewMatrix(c)
		if err != nil {
			return nil, errDecorate(err, "PDBRead")
		}
	}
	return NewMolecule(NewTopology(atoms), mcoords, bfactors)
}

// Parses a valid ATOM or HETATM line of a PDB file, returns an Atom
// object with the info except for the coordinates and b-factors, which are returned
// separately.
func readFullPDBLine(line string, nline int) (*Atom, []float64, float64, error) {
	if len(line) < 54 {
		return nil, nil, 0, CError{msg: fmt.Sprintf("Line %d too short for an atom line", nline), deco: []string{"readFullPDBLine"}}
	}
	atom := new(Atom)
	var err error
	atom.Het = strings.HasPrefix(line, "HETATM")
	atom.ID, err = strconv.Atoi(strings.TrimSpace(line[6:12]))
	if err != nil {
		return nil, nil, 0, pdbLineError(nline, "atom serial", err)
	}
	atom.Name = strings.TrimSpace(line[12:16])
	atom.MolName = strings.TrimSpace(line[17:20])
	atom.MolName1 = three2OneLetter[atom.MolName]
	atom.Chain = strings.TrimSpace(line[21:22])
	atom.MolID, err = strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return nil, nil, 0, pdbLineError(nline, "residue number", err)
	}
	coords, bfactor, err := readOnlyCoordsPDBLine(line, nline)
	if err != nil {
		return nil, nil, 0, err
	}
	if len(line) >= 60 {
		atom.Occupancy, _ = strconv.ParseFloat(strings.TrimSpace(line[54:60]), 64)
	}
	//we try to read the additional only if it is there
	if len(line) >= 78 {
		atom.Symbol = strings.TrimSpace(line[76:78])
		if len(atom.Symbol) == 2 {
			atom.Symbol = atom.Symbol[:1] + strings.ToLower(atom.Symbol[1:])
		}
	}
	if len(line) >= 80 {
		q := strings.TrimSpace(line[78:80])
		if len(q) == 2 {
			charge, err := strconv.ParseFloat(q[:1], 64)
			if err == nil {
				if q[1] == '-' {
					charge = -charge
				}
				atom.Charge = charge
			}
		}
	}
	//This part tries to guess the symbol from the atom name, if it has not been read
	//No error checking here, just fills symbol with the empty string the function returns
	if atom.Symbol == "" {
		atom.Symbol, _ = symbolFromName(atom.Name)
	}
	atom.Mass = symbolMass[atom.Symbol]
	return atom, coords, bfactor, nil
}

// Parses a PDB line if only the coordinates and bfactors are to be read.
func readOnlyCoordsPDBLine(line string, nline int) ([]float64, float64, error) {
	if len(line) < 54 {
		return nil, 0, CError{msg: fmt.Sprintf("Line %d too short for an atom line", nline), deco: []string{"readOnlyCoordsPDBLine"}}
	}
	coords := make([]float64, 3)
	var err error
	for i := 0; i < 3; i++ {
		coords[i], err = strconv.ParseFloat(strings.TrimSpace(line[30+8*i:38+8*i]), 64)
		if err != nil {
			return nil, 0, pdbLineError(nline, "coordinates", err)
		}
	}
	var bfactor float64
	if len(line) >= 66 {
		//missing b-factors are just left as zero.
		bfactor, _ = strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	}
	return coords, bfactor, nil
}

func pdbLineError(nline int, field string, err error) error {
	return CError{msg: fmt.Sprintf("Couldn't parse %s in line %d: %s", field, nline, err.Error()), deco: []string{"PDBRead"}}
}

// PDBFileWrite writes the frames in coords, with the atoms in mol, to a file with name pdbname.
// Each frame is written as a MODEL. bfact can be nil.
func PDBFileWrite(pdbname string, mol Atomer, coords []*v3.Matrix, bfact [][]float64) error {
	out, err := os.Create(pdbname)
	if err != nil {
		return CError{msg: err.Error(), deco: []string{"os.Create", "PDBFileWrite"}}
	}
	defer out.Close()
	return errDecorate(PDBWrite(out, mol, coords, bfact), "PDBFileWrite")
}

// PDBWrite writes the frames in coords, with the atoms in mol, to out, in PDB format.
func PDBWrite(out io.Writer, mol Atomer, coords []*v3.Matrix, bfact [][]float64) error {
	w := bufio.NewWriter(out)
	fmt.Fprint(w, "REMARK     WRITTEN WITH STITCH\n")
	for j, c := range coords {
		if c.NVecs() != mol.Len() {
			return CError{msg: fmt.Sprintf("Frame %d has %d atoms, the topology %d", j, c.NVecs(), mol.Len()), deco: []string{"PDBWrite"}}
		}
		fmt.Fprintf(w, "MODEL %8d\n", j+1)
		chainprev := mol.Atom(0).Chain
		for i := 0; i < mol.Len(); i++ {
			at := mol.Atom(i)
			if at.Chain != chainprev {
				fmt.Fprintln(w, "TER")
				chainprev = at.Chain
			}
			first := "ATOM"
			if at.Het {
				first = "HETATM"
			}
			var bf float64
			if j < len(bfact) && i < len(bfact[j]) {
				bf = bfact[j][i]
			}
			name := at.Name
			//4 chars for the atom name are used when hydrogens are included.
			if len(name) < 4 {
				name = " " + name
			}
			chain := at.Chain
			if chain == "" {
				chain = " "
			}
			_, err := fmt.Fprintf(w, "%-6s%5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s  \n", first, at.ID%100000, name, at.MolName, chain[:1],
				at.MolID%10000, c.At(i, 0), c.At(i, 1), c.At(i, 2), at.Occupancy, bf, strings.ToUpper(at.Symbol))
			if err != nil {
				return CError{msg: err.Error(), deco: []string{"PDBWrite"}}
			}
		}
		fmt.Fprint(w, "ENDMDL\n")
	}
	fmt.Fprint(w, "END\n")
	if err := w.Flush(); err != nil {
		return CError{msg: err.Error(), deco: []string{"bufio.Flush", "PDBWrite"}}
	}
	return nil
}

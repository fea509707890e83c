/*
 * pdbx.go, part of stitch.
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
	"log"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/stitch/v3"
)

var tl func(string) string = strings.ToLower

// PDBxFileRead reads a PDBx/mmCIF file. Returns a Molecule with one frame per model.
func PDBxFileRead(name string) (*Molecule, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, CError{msg: err.Error(), deco: []string{"os.Open", "PDBxFileRead"}}
	}
	defer f.Close()
	mol, err := PDBxRead(f)
	return mol, errDecorate(err, "PDBxFileRead "+name)
}

// the _atom_site fields that are understood, and the column in which
// each was found. -1 means not present.
type pdbxmap map[string]int

func newPDBxMap() pdbxmap {
	m := make(pdbxmap, len(pdbxFields))
	for _, v := range pdbxFields {
		m[v] = -1
	}
	return m
}

// sets s to column i, if s is a field we know. If not,
// does nothing.
func (m pdbxmap) add(s string, i int) {
	s = tl(strings.TrimSpace(s))
	if _, ok := m[s]; ok {
		m[s] = i
	}
}

// returns the column for the field s or -1 if the field is not known or not present.
func (m pdbxmap) get(s string) int {
	if i, ok := m[s]; ok {
		return i
	}
	return -1
}

// returns the value of the field s in data, and false if the field is not present.
func (m pdbxmap) value(s string, data []string) (string, bool) {
	k := m.get(s)
	if k < 0 || k >= len(data) {
		return "", false
	}
	v := data[k]
	if v == "?" || v == "." {
		return "", false
	}
	return strings.Trim(v, `"'`), true
}

func pdbxFillAtom(data []string, m pdbxmap) (*Atom, error) {
	at := new(Atom)
	if s, ok := m.value("_atom_site.auth_atom_id", data); ok {
		at.Name = s
	} else if s, ok := m.value("_atom_site.label_atom_id", data); ok {
		at.Name = s
	}
	if s, ok := m.value("_atom_site.type_symbol", data); ok {
		if len(s) > 1 {
			s = s[:1] + tl(s[1:])
		}
		at.Symbol = s
	} else {
		at.Symbol, _ = symbolFromName(at.Name)
	}
	at.Mass = symbolMass[at.Symbol]
	if s, ok := m.value("_atom_site.auth_comp_id", data); ok {
		at.MolName = s
	} else if s, ok := m.value("_atom_site.label_comp_id", data); ok {
		at.MolName = s
	}
	at.MolName1 = three2OneLetter[at.MolName]
	if s, ok := m.value("_atom_site.auth_asym_id", data); ok {
		at.Chain = s
	} else if s, ok := m.value("_atom_site.label_asym_id", data); ok {
		at.Chain = s
	}
	var err error
	if s, ok := m.value("_atom_site.id", data); ok {
		if at.ID, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("pdbxFillAtom: Couldn't parse ID from %s: %w", s, err)
		}
	}
	resid, ok := m.value("_atom_site.auth_seq_id", data)
	if !ok {
		resid, ok = m.value("_atom_site.label_seq_id", data)
	}
	if ok {
		if at.MolID, err = strconv.Atoi(resid); err != nil {
			return nil, fmt.Errorf("pdbxFillAtom: Couldn't parse MolID from %s: %w", resid, err)
		}
	}
	if s, ok := m.value("_atom_site.occupancy", data); ok {
		if at.Occupancy, err = strconv.ParseFloat(s, 64); err != nil {
			return nil, fmt.Errorf("pdbxFillAtom: Couldn't parse Occupancy from %s: %w", s, err)
		}
	}
	//Charge, but we won't do anything if we somehow can't read it.
	if s, ok := m.value("_atom_site.pdbx_formal_charge", data); ok {
		if q, err := strconv.ParseFloat(s, 64); err == nil {
			at.Charge = q
		}
	}
	if s, ok := m.value("_atom_site.group_pdb", data); ok {
		at.Het = s != "ATOM"
	}
	return at, nil
}

func pdbxFillCoords(data []string, coord []float64, m pdbxmap) ([]float64, error) {
	for j, v := range []string{"_atom_site.cartn_x", "_atom_site.cartn_y", "_atom_site.cartn_z"} {
		s, ok := m.value(v, data)
		if !ok {
			return coord, fmt.Errorf("pdbxFillCoords: Field %s not present in data %v", v, data)
		}
		fl, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return coord, fmt.Errorf("pdbxFillCoords: Couldn't parse %d cartesian coordinate from %s: %w", j, s, err)
		}
		coord = append(coord, fl)
	}
	return coord, nil
}

// PDBxRead reads a PDBx/mmCIF file from an io.Reader. Only the _atom_site loop is read.
// Atom information is taken from the first model; later models only add coordinates.
func PDBxRead(r io.Reader) (*Molecule, error) {
	m := newPDBxMap()
	molecule := make([]*Atom, 0)
	coords := [][]float64{make([]float64, 0, 3)}
	bfactors := [][]float64{make([]float64, 0)}
	currentmodel := -1
	var reading, inLoop bool
	field := 0
	havebfactors := true
	hp := strings.HasPrefix
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if hp(line, "#") || hp(line, ";") || line == "" {
			continue
		}
		if hp(tl(line), "loop_") {
			if reading && field > 0 && len(molecule) > 0 {
				break //the atom_site loop is over
			}
			inLoop = true
			reading = false
			continue
		}
		if hp(line, "_") {
			if inLoop && hp(tl(line), "_atom_site.") {
				reading = true
				m.add(line, field)
				field++
				continue
			}
			if reading && len(molecule) > 0 {
				break
			}
			reading = false
			continue
		}
		if !reading {
			continue
		}
		//Here we should be reading the content lines.
		fields := strings.Fields(line)
		if s, ok := m.value("_atom_site.pdbx_pdb_model_num", fields); ok {
			model, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("PDBxRead: Couldn't parse model number from %s: %w", s, err)
			}
			if currentmodel < 0 {
				currentmodel = model
			}
			if model != currentmodel {
				coords = append(coords, make([]float64, 0, len(molecule)*3))
				bfactors = append(bfactors, make([]float64, 0, len(molecule)))
				currentmodel = model
			}
		}
		//we don't read the atoms again for the next models.
		if len(coords) == 1 {
			at, err := pdbxFillAtom(fields, m)
			if err != nil {
				return nil, fmt.Errorf("PDBxRead: Couldn't read atom %d: %w", len(molecule)+1, err)
			}
			molecule = append(molecule, at)
		}
		c := len(coords) - 1
		var err error
		coords[c], err = pdbxFillCoords(fields, coords[c], m)
		if err != nil {
			return nil, fmt.Errorf("PDBxRead: Couldn't read coordinates for frame %d: %w", c, err)
		}
		bf, ok := m.value("_atom_site.b_iso_or_equiv", fields)
		fl, err := strconv.ParseFloat(bf, 64)
		if (!ok || err != nil) && havebfactors {
			//It can very well be that the file just doesn't contain b-factors.
			log.Printf("PDBxRead: Couldn't read b-factors for frame %d, they will be ignored", c)
			havebfactors = false
		}
		bfactors[c] = append(bfactors[c], fl)
	}
	if err := scanner.Err(); err != nil {
		return nil, CError{msg: err.Error(), deco: []string{"bufio.Scanner", "PDBxRead"}}
	}
	if len(molecule) == 0 {
		return nil, CError{msg: "No _atom_site records found", deco: []string{"PDBxRead"}}
	}
	mcoords := make([]*v3.Matrix, len(coords))
	for i, c := range coords {
		if len(c) != 3*len(molecule) {
			return nil, CError{msg: fmt.Sprintf("Model %d has %d atoms, the first model %d", i+1, len(c)/3, len(molecule)), deco: []string{"PDBxRead"}}
		}
		var err error
		mcoords[i], err = v3.NewMatrix(c)
		if err != nil {
			return nil, errDecorate(err, "PDBxRead")
		}
	}
	if !havebfactors {
		bfactors = nil
	}
	return NewMolecule(NewTopology(molecule), mcoords, bfactors)
}

var pdbxFields = []string{
	"_atom_site.group_pdb",
	"_atom_site.id",
	"_atom_site.type_symbol",
	"_atom_site.label_atom_id",
	"_atom_site.label_alt_id",
	"_atom_site.label_comp_id",
	"_atom_site.label_asym_id",
	"_atom_site.label_seq_id",
	"_atom_site.cartn_x",
	"_atom_site.cartn_y",
	"_atom_site.cartn_z",
	"_atom_site.occupancy",
	"_atom_site.b_iso_or_equiv",
	"_atom_site.pdbx_formal_charge",
	"_atom_site.auth_seq_id",
	"_atom_site.auth_comp_id",
	"_atom_site.auth_asym_id",
	"_atom_site.auth_atom_id",
	"_atom_site.pdbx_pdb_model_num",
}

/*
 * errors.go, part of stitch.
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

package traj

import "fmt"

// FormatError is returned when a file name doesn't map to a supported format.
type FormatError struct {
	Name  string
	Write bool
}

func (e *FormatError) Error() string {
	if e.Write {
		return fmt.Sprintf("can't write trajectory %s: unsupported format (use .dcd or .stf)", e.Name)
	}
	return fmt.Sprintf("can't read trajectory %s: unsupported format", e.Name)
}

// ShortError is returned when a trajectory ends before a requested frame.
type ShortError struct {
	Name string
	Need int //raw frames needed
	Got  int //raw frames present
}

func (e *ShortError) Error() string {
	return fmt.Sprintf("trajectory %s has %d frames, at least %d needed", e.Name, e.Got, e.Need)
}

// AtomCountError is returned when a trajectory doesn't have the expected number of atoms.
type AtomCountError struct {
	Name string
	Want int
	Got  int
}

func (e *AtomCountError) Error() string {
	return fmt.Sprintf("trajectory %s has %d atoms, expected %d", e.Name, e.Got, e.Want)
}

/*
 * doc.go, part of stitch.
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

/*
Package chem provides the atom, topology and molecule structures used by stitch, the
interfaces that trajectory readers and writers implement, a PDB/PDBx reader, an atom
selection language, and the rigid superposition used to align trajectory frames.

Coordinates are kept in v3.Matrix objects, one atom per row. Topologies never hold
coordinates, so the same topology can be shared by every segment of a trajectory.

Errors returned by this package, and by the trajectory packages, implement the Error
interface. Trajectory readers signal a normal end of the trajectory with an error that
implements LastFrameError, so it can be told apart from an actual failure:

	err := traj.Next(coords)
	if _, ok := err.(chem.LastFrameError); ok {
		//no more frames
	}
*/
package chem

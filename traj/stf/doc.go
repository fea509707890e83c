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

/*
Package stf implements the simple trajectory format (STF), a compressed plain-text trajectory
format that is small, fast to read, and easy to implement in other languages.

An STF file may only contain ASCII symbols. It starts with a header of key=value lines, that
must include the precision ("prec=2", for instance) and ends with a line starting with "**",
followed by one or more spaces and the number of atoms per frame.

After the header, there is one line per atom per frame, with the x, y and z coordinates in
Angstrom, multiplied by 10^prec and rounded to integers. Each frame ends with a line starting
with "*", optionally followed by 9 numbers with the box vectors in Angstrom. The "**" sequence
can't appear anywhere but in the header termination.

The compression is chosen by the last letter of the file name: "l" for lzw, "z" for gzip, "r"
for raw deflate, and zstd (the default) for anything else (.stf, for instance).
Files written by this package use a precision of 2 unless told otherwise.
*/
package stf

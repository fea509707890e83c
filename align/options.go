/*
 * options.go, part of stitch.
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

package align

// Options contains the options for ToFirstFrame.
type Options struct {
	cpus int
}

// DefaultOptions returns options that superpose frames sequentially, in a single goroutine.
func DefaultOptions() *Options {
	r := new(Options)
	r.cpus = 1
	return r
}

// Cpus returns the number of goroutines used to superpose frames,
// and sets it to a new value, if given and positive.
func (O *Options) Cpus(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.cpus = n[0]
	}
	return O.cpus
}

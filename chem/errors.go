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

package chem

import (
	"fmt"
	"strings"
)

// CError is the concrete error type for the chem package. It fullfills Error.
type CError struct {
	msg  string
	deco []string
}

// Error returns a string with the message and, if present, the trail of functions
// that passed the error up.
func (err CError) Error() string {
	if len(err.deco) == 0 {
		return err.msg
	}
	return fmt.Sprintf("%s (%s)", err.msg, strings.Join(err.deco, " < "))
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// errDecorate decorates err with the caller's name if err implements Error,
// and returns it. Any other error is wrapped so the information is not lost.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(CError); ok {
		e.deco = append(e.deco, caller)
		return e
	}
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
		return e
	}
	return fmt.Errorf("%s: %w", caller, err)
}

// lastFrameError is returned by Molecule.Next when there are no more frames.
type lastFrameError struct {
	fileName string
	format   string
	deco     []string
}

func newLastFrameError(filename, format string) *lastFrameError {
	return &lastFrameError{fileName: filename, format: format}
}

func (E *lastFrameError) Error() string { return "No more frames" }

func (E *lastFrameError) Decorate(dec string) []string {
	if dec != "" {
		E.deco = append(E.deco, dec)
	}
	return E.deco
}

func (E *lastFrameError) Critical() bool   { return false }
func (E *lastFrameError) FileName() string { return E.fileName }
func (E *lastFrameError) Format() string   { return E.format }

// NormalLastFrameTermination does nothing, it is there so the type fullfills LastFrameError.
func (E *lastFrameError) NormalLastFrameTermination() {}

/*
 * compressed.go, part of stitch.
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
	"bufio"
	"compress/lzw"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	lzwOrder        = lzw.MSB
	lzwLitwidth int = 8
)

// Compression returns the compression scheme implied by the extension of fname:
// "gz" (gzip), "flate" (raw deflate), "lzw", "zst" (zstd) or "" for a plain DCD.
func Compression(fname string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fname), "."))
	switch ext {
	case "gz", "lzw", "zst", "flate":
		return ext
	}
	return ""
}

// prepSource takes a filename, opens the file and returns an object that will
// read data from the file, either 'as is' or decompressing first, depending on the file extension.
// File extensions supported are .dcd (non-compressed dcd), .gz (gzip), .flate (raw deflate), .zst (zstd)
// and .lzw. If the extension doesn't match any supported compression, the file is assumed to be a plain DCD.
// Compressed sources are read sequentially, which is all the reader needs.
func (D *DCDObj) prepSource(fname string) (io.Reader, error) {
	var err error
	D.filename = fname
	D.fhandle, err = os.Open(fname)
	if err != nil {
		return nil, Error{err.Error(), D.filename, []string{"os.Open", "prepSource"}, true}
	}
	reader := bufio.NewReader(D.fhandle)
	switch c := Compression(fname); c {
	case "":
		if ext := strings.ToLower(filepath.Ext(fname)); ext != ".dcd" {
			//if it's not a plain DCD, you'll get an error later.
			log.Printf("Extension %s not recognized. %s will be assumed to be a plain DCD file", ext, fname)
		}
		return reader, nil
	case "lzw":
		rc := lzw.NewReader(reader, lzwOrder, lzwLitwidth)
		D.closers = append(D.closers, rc)
		return rc, nil
	case "flate":
		rc := flate.NewReader(reader)
		D.closers = append(D.closers, rc)
		return rc, nil
	case "gz":
		rc, err := gzip.NewReader(reader)
		if err != nil {
			D.fhandle.Close()
			return nil, Error{err.Error(), D.filename, []string{"gzip.NewReader", "prepSource"}, true}
		}
		D.closers = append(D.closers, rc)
		return rc, nil
	default: //zst
		zr, err := zstd.NewReader(reader)
		if err != nil {
			D.fhandle.Close()
			return nil, Error{err.Error(), D.filename, []string{"zstd.NewReader", "prepSource"}, true}
		}
		rc := zr.IOReadCloser()
		D.closers = append(D.closers, rc)
		return rc, nil
	}
}

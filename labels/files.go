/*
 * files.go, part of stitch.
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

package labels

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Container returns the container kind for a file name, by extension:
// "text" (.txt, .dat, .lab), "json" (.json) or "sqlite" (.sqlite, .db).
// It returns "" for anything else.
func Container(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".dat", ".lab":
		return "text"
	case ".json":
		return "json"
	case ".sqlite", ".db", ".sqlite3":
		return "sqlite"
	}
	return ""
}

// Load reads the label record in the file name. The container is chosen by the extension.
func Load(name string) (Record, error) {
	switch Container(name) {
	case "text", "json":
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("labels.Load: %w", err)
		}
		defer f.Close()
		var rec Record
		if Container(name) == "text" {
			rec, err = ReadText(f)
		} else {
			rec, err = ReadJSON(f)
		}
		if err != nil {
			return nil, fmt.Errorf("labels.Load %s: %w", name, err)
		}
		return rec, nil
	case "sqlite":
		if _, err := os.Stat(name); err != nil {
			return nil, fmt.Errorf("labels.Load: %w", err)
		}
		st, err := OpenStore(name)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.Record()
	}
	return nil, fmt.Errorf("labels.Load: unknown container for %s (use .txt, .dat, .lab, .json, .sqlite or .db)", name)
}

// Save writes rec to the file name. The container is chosen by the extension.
// Text and JSON files are replaced, SQLite stores have their contents replaced.
func Save(name string, rec Record) error {
	switch c := Container(name); c {
	case "text", "json":
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("labels.Save: %w", err)
		}
		if c == "text" {
			err = WriteText(f, rec)
		} else {
			err = WriteJSON(f, rec)
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("labels.Save %s: %w", name, err)
		}
		return nil
	case "sqlite":
		st, err := OpenStore(name)
		if err != nil {
			return err
		}
		defer st.Close()
		return st.Put(rec)
	}
	return fmt.Errorf("labels.Save: unknown container for %s (use .txt, .dat, .lab, .json, .sqlite or .db)", name)
}

// ReadText reads a text label record: one segment per line, with the states as integers separated
// by spaces, tabs or commas. Everything after a '#' is a comment, and lines with only a comment
// are ignored. Blank lines are segments with no frames.
func ReadText(r io.Reader) (Record, error) {
	rec := make(Record, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	nline := 0
	for scanner.Scan() {
		nline++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			if strings.TrimSpace(line[:i]) == "" {
				continue
			}
			line = line[:i]
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ',' || r == '\r'
		})
		seg := make([]int, len(fields))
		for i, v := range fields {
			s, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("line %d, field %d: %q is not an integer state", nline, i+1, v)
			}
			seg[i] = s
		}
		rec = append(rec, seg)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

// WriteText writes rec in the text container format.
func WriteText(w io.Writer, rec Record) error {
	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "# state labels, one segment per line: %d segments\n", rec.NSegments())
	buf := make([]byte, 0, 256)
	for _, seg := range rec {
		buf = buf[:0]
		for i, v := range seg {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendInt(buf, int64(v), 10)
		}
		buf = append(buf, '\n')
		b.Write(buf)
	}
	return b.Flush()
}

// ReadJSON reads a record encoded as a JSON array of arrays of integers.
func ReadJSON(r io.Reader) (Record, error) {
	var rec Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("JSON label record is null")
	}
	for i := range rec {
		if rec[i] == nil {
			rec[i] = []int{}
		}
	}
	return rec, nil
}

// WriteJSON writes rec as a JSON array of arrays.
func WriteJSON(w io.Writer, rec Record) error {
	out := make([][]int, len(rec))
	for i, seg := range rec {
		out[i] = seg
		if seg == nil {
			out[i] = []int{}
		}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

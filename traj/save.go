/*
 * save.go, part of stitch.
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

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Save writes T to the file name, in the format implied by its extension.
// The trajectory is written to a temporary file in the same directory and renamed
// into place only when complete, so a failed save never leaves a partial file behind.
func Save(name string, T *Trajectory) (err error) {
	if T.NFrames() == 0 {
		return fmt.Errorf("traj.Save: refusing to write an empty trajectory to %s", name)
	}
	if !Creatable(name) {
		return &FormatError{Name: name, Write: true}
	}
	dir := filepath.Dir(name)
	//the extension is kept so the format (and compression) is the same.
	tmp, err := os.CreateTemp(dir, ".stitch-*-"+filepath.Base(name))
	if err != nil {
		return fmt.Errorf("traj.Save: %w", err)
	}
	tmpname := tmp.Name()
	tmp.Close()
	defer func() {
		if err != nil {
			os.Remove(tmpname)
		}
	}()
	w, err := Create(tmpname, T.Len(), T.Boxes != nil)
	if err != nil {
		return err
	}
	for i, f := range T.Frames {
		var box [][]float64
		if b := T.Box(i); b != nil {
			box = append(box, b)
		}
		if err = w.WNext(f, box...); err != nil {
			w.Close()
			return err
		}
	}
	if err = w.CloseErr(); err != nil {
		return err
	}
	if err = syncFile(tmpname); err != nil {
		return fmt.Errorf("traj.Save: %w", err)
	}
	//CreateTemp makes the file readable only by its owner.
	if err = os.Chmod(tmpname, 0o644); err != nil {
		return fmt.Errorf("traj.Save: %w", err)
	}
	if err = os.Rename(tmpname, name); err != nil {
		return fmt.Errorf("traj.Save: %w", err)
	}
	//the rename is done, failing to sync the directory is not worth deleting the output.
	if derr := syncDir(dir); derr != nil {
		log.Printf("traj.Save: %s written but the directory could not be synced: %v", name, derr)
	}
	return nil
}

func syncFile(name string) error {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

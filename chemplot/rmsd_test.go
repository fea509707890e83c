/*
 * rmsd_test.go, part of stitch.
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

package chemplot

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestRMSDPlot(Te *testing.T) {
	rmsd := make([]float64, 30)
	for i := range rmsd {
		rmsd[i] = 1 + math.Sin(float64(i)/4)
	}
	rmsd[0] = 0
	dir := Te.TempDir()
	for _, name := range []string{"rmsd.png", "rmsd.svg"} {
		name = filepath.Join(dir, name)
		parts := []Part{{"segment 1", 10}, {"", 0}, {"segment 4", 20}}
		if err := RMSDPlot(rmsd, parts, "Test RMSD", name); err != nil {
			Te.Fatal(err)
		}
		info, err := os.Stat(name)
		if err != nil {
			Te.Fatal(err)
		}
		if info.Size() == 0 {
			Te.Errorf("%s is empty", name)
		}
	}
	if err := RMSDPlot(rmsd, nil, "", filepath.Join(dir, "single.png")); err != nil {
		Te.Error(err)
	}
	if err := RMSDPlot(rmsd, []Part{{"a", 3}}, "", filepath.Join(dir, "bad.png")); err == nil {
		Te.Error("parts that don't cover the series should fail")
	}
	if err := RMSDPlot(nil, nil, "", filepath.Join(dir, "empty.png")); err == nil {
		Te.Error("an empty series should fail")
	}
}

func TestPartColor(Te *testing.T) {
	seen := make(map[[3]uint32]bool)
	for i := 0; i < 5; i++ {
		r, g, b, _ := partColor(i, 5).RGBA()
		seen[[3]uint32{r, g, b}] = true
	}
	if len(seen) != 5 {
		Te.Errorf("expected 5 distinct colors, got %d", len(seen))
	}
}

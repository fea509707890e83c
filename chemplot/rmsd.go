/*
 * rmsd.go, part of stitch.
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

// Package chemplot draws plots of trajectory data.
package chemplot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Part is a consecutive run of frames in a trajectory, plotted in its own color.
type Part struct {
	Label  string
	Frames int
}

// RMSDPlot plots an RMSD-vs-frame series to the file filename. The image format
// is taken from the extension (png, svg, pdf, eps, jpg or tif). If parts is not
// empty, the frame counts in it must add up to len(rmsd), and each part is drawn
// with its own color and legend entry.
func RMSDPlot(rmsd []float64, parts []Part, title, filename string) error {
	if len(rmsd) == 0 {
		return fmt.Errorf("chemplot.RMSDPlot: no data to plot")
	}
	if len(parts) == 0 {
		parts = []Part{{Frames: len(rmsd)}}
	}
	total := 0
	for _, v := range parts {
		if v.Frames < 0 {
			return fmt.Errorf("chemplot.RMSDPlot: part %q has a negative frame count", v.Label)
		}
		total += v.Frames
	}
	if total != len(rmsd) {
		return fmt.Errorf("chemplot.RMSDPlot: parts cover %d frames, the series has %d", total, len(rmsd))
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "RMSD (A)"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())
	first := 0
	for i, part := range parts {
		if part.Frames == 0 {
			continue
		}
		//each part starts at the last point of the previous one, so the curve has no gaps.
		from := first
		if from > 0 {
			from--
		}
		pts := make(plotter.XYs, 0, first+part.Frames-from)
		for j := from; j < first+part.Frames; j++ {
			pts = append(pts, plotter.XY{X: float64(j), Y: rmsd[j]})
		}
		first += part.Frames
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("chemplot.RMSDPlot: %w", err)
		}
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Color = partColor(i, len(parts))
		p.Add(l)
		if part.Label != "" {
			p.Legend.Add(part.Label, l)
		}
	}
	p.Legend.Top = true
	if err := p.Save(8*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("chemplot.RMSDPlot: %w", err)
	}
	return nil
}

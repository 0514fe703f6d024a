// Copyright 2025 Sonic Labs
// This file is part of Aida Testing Infrastructure for Sonic
//
// Aida is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Aida is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Aida. If not, see <http://www.gnu.org/licenses/>.

package report

import (
	"fmt"
	"io"
	"os"

	"github.com/0xsoniclabs/ppa/sebb"
	"github.com/cockroachdb/errors"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// newHeatmap charts the match counts of the equivalence matrix.
func newHeatmap(title string, eq *sebb.Equivalence) *charts.HeatMap {
	m := eq.Matrix()
	maxP, maxS := m.MaxIDs()

	xAxis := make([]string, 0, maxS)
	for s := uint64(1); s <= maxS; s++ {
		xAxis = append(xAxis, fmt.Sprint(s))
	}
	yAxis := make([]string, 0, maxP)
	for p := uint64(1); p <= maxP; p++ {
		yAxis = append(yAxis, fmt.Sprint(p))
	}
	items := make([]opts.HeatMapData, 0, maxP*maxS)
	for p := uint64(1); p <= maxP; p++ {
		for s := uint64(1); s <= maxS; s++ {
			items = append(items, opts.HeatMapData{Value: [3]interface{}{s - 1, p - 1, m.Count(p, s)}})
		}
	}

	chart := charts.NewHeatMap()
	chart.SetGlobalOptions(charts.WithInitializationOpts(opts.Initialization{
		Theme:     types.ThemeChalk,
		PageTitle: title,
		Height:    "900px",
	}),
		charts.WithToolboxOpts(opts.Toolbox{
			Show: true,
			Feature: &opts.ToolBoxFeature{
				SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{
					Show:  true,
					Title: "Save",
				},
			},
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d training cases, threshold %.2f", m.Cases(), eq.Fraction()),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "suspicious block", Type: "category", Data: xAxis}),
		charts.WithYAxisOpts(opts.YAxis{Name: "plaintiff block", Type: "category", Data: yAxis}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        0,
			Max:        float32(max(m.Cases(), 1)),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#313695", "#fee090", "#a50026"},
			},
		}))
	chart.SetXAxis(xAxis).AddSeries("matches", items)
	return chart
}

// RenderHeatmap writes an HTML heatmap of the equivalence matrix to w.
func RenderHeatmap(w io.Writer, title string, eq *sebb.Equivalence) error {
	return newHeatmap(title, eq).Render(w)
}

// PrinterToHtml saves the equivalence heatmap as an HTML page.
type PrinterToHtml struct {
	filepath string
	title    string
	eq       *sebb.Equivalence
}

func NewPrinterToHtml(filepath, title string, eq *sebb.Equivalence) *PrinterToHtml {
	return &PrinterToHtml{filepath, title, eq}
}

func (ps *Printers) AddPrinterToHtml(filepath, title string, eq *sebb.Equivalence) *Printers {
	if filepath != "" && eq != nil {
		ps.AddPrinter(NewPrinterToHtml(filepath, title, eq))
	}
	return ps
}

func (p *PrinterToHtml) Print() (err error) {
	file, err := os.Create(p.filepath)
	if err != nil {
		return errors.Wrapf(err, "unable to print to file %s", p.filepath)
	}
	defer func() {
		if e := file.Close(); e != nil {
			err = errors.Join(err, e)
		}
	}()
	return RenderHeatmap(file, p.title, p.eq)
}

func (p *PrinterToHtml) Close() error {
	return nil
}

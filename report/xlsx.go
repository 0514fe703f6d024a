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
	"github.com/0xsoniclabs/ppa/analysis"
	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"
)

// PrinterToXlsx saves a report as an Excel workbook.
type PrinterToXlsx struct {
	filepath string
	report   *analysis.Report
}

func NewPrinterToXlsx(filepath string, r *analysis.Report) *PrinterToXlsx {
	return &PrinterToXlsx{filepath, r}
}

func (ps *Printers) AddPrinterToXlsx(filepath string, r *analysis.Report) *Printers {
	if filepath != "" {
		ps.AddPrinter(NewPrinterToXlsx(filepath, r))
	}
	return ps
}

func (p *PrinterToXlsx) Close() error {
	return nil
}

func (p *PrinterToXlsx) Print() (err error) {
	f := excelize.NewFile()
	defer func() {
		if e := f.Close(); e != nil {
			err = errors.Join(err, e)
		}
	}()

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	switch p.report.Mode {
	case analysis.ModeHistogram:
		err = p.writeHistogram(f, header)
	case analysis.ModeSEBB:
		err = p.writeAlignment(f, header)
		if err == nil {
			err = p.writeMatrix(f, header)
		}
	default:
		err = errors.Newf("unsupported analysis %v", p.report.Mode)
	}
	if err != nil {
		return err
	}
	if err = f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if err = f.SaveAs(p.filepath); err != nil {
		return errors.Wrapf(err, "cannot save workbook %s", p.filepath)
	}
	return nil
}

// writeRow fills row (1-based) starting at column A.
func writeRow(f *excelize.File, sheet string, row int, values []any, style int) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err = f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
		if style != 0 {
			if err = f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func newSheet(f *excelize.File, name string) error {
	index, err := f.NewSheet(name)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	return nil
}

func (p *PrinterToXlsx) writeHistogram(f *excelize.File, header int) error {
	const sheet = "Histogram"
	if err := newSheet(f, sheet); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1, []any{"Plaintiff", "Instructions", "Suspicious", "Instructions", "Score (%)"}, header); err != nil {
		return err
	}
	h := p.report.Histogram
	return writeRow(f, sheet, 2, []any{p.report.Plaintiff, h.PlaintiffInstructions, p.report.Suspicious, h.SuspiciousInstructions, h.Score}, 0)
}

func (p *PrinterToXlsx) writeAlignment(f *excelize.File, header int) error {
	const sheet = "Alignment"
	if err := newSheet(f, sheet); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 1, []any{"Test case", "Plaintiff length", "Suspicious length", "LCS length", "Similarity"}, header); err != nil {
		return err
	}
	for i, c := range p.report.SEBB.Cases {
		if err := writeRow(f, sheet, i+2, []any{c.TestCase, c.PlaintiffLen, c.SuspiciousLen, c.Length, c.Similarity()}, 0); err != nil {
			return err
		}
	}
	return nil
}

// writeMatrix lays out the match counts with confirmed pairs highlighted.
func (p *PrinterToXlsx) writeMatrix(f *excelize.File, header int) error {
	const sheet = "Equivalence"
	if err := newSheet(f, sheet); err != nil {
		return err
	}
	confirmed, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	eq := p.report.SEBB.Equivalence
	m := eq.Matrix()
	maxP, maxS := m.MaxIDs()

	top := []any{"P \\ S"}
	for s := uint64(1); s <= maxS; s++ {
		top = append(top, s)
	}
	if err = writeRow(f, sheet, 1, top, header); err != nil {
		return err
	}
	for pid := uint64(1); pid <= maxP; pid++ {
		row := int(pid) + 1
		values := []any{pid}
		for s := uint64(1); s <= maxS; s++ {
			values = append(values, m.Count(pid, s))
		}
		if err = writeRow(f, sheet, row, values, 0); err != nil {
			return err
		}
		for s := uint64(1); s <= maxS; s++ {
			if m.Count(pid, s) == 0 || !eq.Confirmed(pid, s) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(int(s)+1, row)
			if err != nil {
				return err
			}
			if err = f.SetCellStyle(sheet, cell, cell, confirmed); err != nil {
				return err
			}
		}
	}
	return nil
}

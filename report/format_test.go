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
	"bytes"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/0xsoniclabs/ppa/align"
	"github.com/0xsoniclabs/ppa/analysis"
	"github.com/0xsoniclabs/ppa/histogram"
	"github.com/0xsoniclabs/ppa/sebb"
	"github.com/0xsoniclabs/ppa/tracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func histogramReport() *analysis.Report {
	return &analysis.Report{
		Mode:       analysis.ModeHistogram,
		Plaintiff:  "p.ll",
		Suspicious: "s.ll",
		Histogram:  &analysis.HistogramReport{Score: 67, PlaintiffInstructions: 2, SuspiciousInstructions: 1},
	}
}

// sebbReport confirms the pairs (1,2) and (2,1) on one training case.
func sebbReport(t *testing.T) *analysis.Report {
	t.Helper()
	p, s := tracer.NewRunLog(), tracer.NewRunLog()
	p.Append(1, &tracer.BlockInvocation{Inputs: []uint64{1}})
	p.Append(2, &tracer.BlockInvocation{Inputs: []uint64{2}})
	s.Append(1, &tracer.BlockInvocation{Inputs: []uint64{2}})
	s.Append(2, &tracer.BlockInvocation{Inputs: []uint64{1}})

	agg := sebb.NewAggregator(sebb.DefaultOptions())
	require.NoError(t, agg.Add(p, s))
	eq, err := agg.Finalize()
	require.NoError(t, err)

	return &analysis.Report{
		Mode:       analysis.ModeSEBB,
		Plaintiff:  "p",
		Suspicious: "s",
		SEBB: &analysis.SEBBReport{
			TrainingCases: 1,
			Equivalence:   eq,
			Confirmed:     eq.Pairs(),
			Cases: []analysis.CaseResult{
				{TestCase: "case-9", Result: align.Result{PlaintiffLen: 4, SuspiciousLen: 5, Length: 3}},
			},
		},
	}
}

func TestSummary_Histogram(t *testing.T) {
	out := Summary(histogramReport())
	assert.Contains(t, strings.ToLower(out), "instruction histogram")
	assert.Contains(t, out, "p.ll")
	assert.Contains(t, out, "67%")
	assert.Equal(t, "67%", Score(histogramReport()))
	assert.Empty(t, Score(&analysis.Report{}))
}

func TestSummary_SEBB(t *testing.T) {
	out := Summary(sebbReport(t))
	assert.Contains(t, out, "case-9")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, strings.ToLower(out), "1 training cases, 2 confirmed block pairs")
}

func TestMatrix(t *testing.T) {
	r := sebbReport(t)
	out := Matrix(r.SEBB.Equivalence)
	assert.Contains(t, out, "1*")
	assert.Equal(t, 2, strings.Count(out, "*"))

	pairs := Pairs(r.SEBB.Equivalence)
	assert.Contains(t, strings.ToLower(pairs), "confirmed equivalent blocks")
}

func TestRunLog(t *testing.T) {
	log := tracer.NewRunLog()
	log.Append(3, &tracer.BlockInvocation{Inputs: []uint64{0x2a}, Outputs: []uint64{1, 2}})
	log.Append(3, &tracer.BlockInvocation{})

	out := RunLog(log, false)
	assert.Contains(t, strings.ToLower(out), "1 blocks, 2 invocations")

	out = RunLog(log, true)
	assert.Contains(t, out, "0x2a")
	assert.Contains(t, out, "0x1 0x2")
}

func TestControlFlow(t *testing.T) {
	out := ControlFlow(tracer.ControlFlowTraceLog{1, 2, 3, 4, 5}, 2)
	assert.Equal(t, "5 block completions\n1 2\n3 4\n5", out)
	assert.Equal(t, "0 block completions\n", ControlFlow(nil, 0))
}

func TestHistogram(t *testing.T) {
	out := Histogram(histogram.Histogram{"add": 3, "ret": 1})
	assert.Contains(t, out, "75.0%")
	assert.Less(t, strings.Index(out, "add"), strings.Index(out, "ret"))
}

func TestAddReportToSqlite3(t *testing.T) {
	conn := filepath.Join(t.TempDir(), "results.db")
	ps, err := NewPrinters().AddReportToSqlite3(conn, sebbReport(t))
	require.NoError(t, err)
	ps, err = ps.AddReportToSqlite3(conn, histogramReport())
	require.NoError(t, err)
	require.Len(t, ps.printers, 3)
	require.NoError(t, ps.Print())
	require.NoError(t, ps.Close())

	db, err := sql.Open("sqlite3", conn)
	require.NoError(t, err)
	defer db.Close()

	var lcs int
	var similarity float64
	require.NoError(t, db.QueryRow("SELECT lcs_length, similarity FROM alignment WHERE test_case = 'case-9'").Scan(&lcs, &similarity))
	assert.Equal(t, 3, lcs)
	assert.InDelta(t, 0.75, similarity, 1e-9)

	var pairs int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM equivalence").Scan(&pairs))
	assert.Equal(t, 2, pairs)

	var score int
	require.NoError(t, db.QueryRow("SELECT score FROM histogram").Scan(&score))
	assert.Equal(t, 67, score)

	_, err = NewPrinters().AddReportToSqlite3(conn, &analysis.Report{Mode: analysis.Mode(9)})
	assert.ErrorContains(t, err, "unsupported analysis")
}

func TestPrinterToXlsx_SEBB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, NewPrinters().AddPrinterToXlsx(path, sebbReport(t)).Print())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Alignment", "Equivalence"}, f.GetSheetList())

	v, err := f.GetCellValue("Alignment", "A2")
	require.NoError(t, err)
	assert.Equal(t, "case-9", v)
	v, err = f.GetCellValue("Alignment", "D2")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
	v, err = f.GetCellValue("Equivalence", "C2")
	require.NoError(t, err)
	assert.Equal(t, "1", v, "plaintiff 1 matched suspicious 2")
}

func TestPrinterToXlsx_Histogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, NewPrinterToXlsx(path, histogramReport()).Print())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Histogram", "E2")
	require.NoError(t, err)
	assert.Equal(t, "67", v)

	assert.Empty(t, NewPrinters().AddPrinterToXlsx("", histogramReport()).printers)
}

func TestRenderHeatmap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHeatmap(&buf, "Block matches", sebbReport(t).SEBB.Equivalence))
	assert.Contains(t, buf.String(), "Block matches")
	assert.Contains(t, buf.String(), "heatmap")
}

func TestPrinterToHtml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrix.html")
	eq := sebbReport(t).SEBB.Equivalence
	ps := NewPrinters().
		AddPrinterToHtml(path, "Block matches", eq).
		AddPrinterToHtml("", "ignored", eq).
		AddPrinterToHtml(path, "ignored", nil)
	require.Len(t, ps.printers, 1)
	require.NoError(t, ps.Print())
	assert.FileExists(t, path)
}

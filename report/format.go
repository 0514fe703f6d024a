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
	"strings"

	"github.com/0xsoniclabs/ppa/analysis"
	"github.com/0xsoniclabs/ppa/histogram"
	"github.com/0xsoniclabs/ppa/sebb"
	"github.com/0xsoniclabs/ppa/tracer"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("%s", title)
	return t
}

// Summary renders the outcome of a comparison as a table.
func Summary(r *analysis.Report) string {
	switch r.Mode {
	case analysis.ModeHistogram:
		return histogramSummary(r)
	case analysis.ModeSEBB:
		return sebbSummary(r)
	default:
		return fmt.Sprintf("unsupported analysis %v", r.Mode)
	}
}

// Score renders the histogram similarity the way it is printed on its own.
func Score(r *analysis.Report) string {
	if r.Histogram == nil {
		return ""
	}
	return fmt.Sprintf("%d%%", r.Histogram.Score)
}

func histogramSummary(r *analysis.Report) string {
	t := newTable("Instruction histogram")
	t.AppendHeader(table.Row{"Plaintiff", "Instructions", "Suspicious", "Instructions", "Similarity"})
	t.AppendRow(table.Row{
		r.Plaintiff, r.Histogram.PlaintiffInstructions,
		r.Suspicious, r.Histogram.SuspiciousInstructions,
		Score(r),
	})
	return t.Render()
}

func sebbSummary(r *analysis.Report) string {
	t := newTable("Control flow alignment")
	t.AppendHeader(table.Row{"Test case", "Plaintiff length", "Suspicious length", "LCS length", "Similarity"})
	for _, c := range r.SEBB.Cases {
		t.AppendRow(table.Row{c.TestCase, c.PlaintiffLen, c.SuspiciousLen, c.Length, percent(c.Similarity())})
	}
	t.SetCaption("%d training cases, %d confirmed block pairs", r.SEBB.TrainingCases, len(r.SEBB.Confirmed))
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return t.Render()
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// Matrix renders the match counts of every block pair. Confirmed pairs
// are starred.
func Matrix(eq *sebb.Equivalence) string {
	m := eq.Matrix()
	maxP, maxS := m.MaxIDs()

	header := table.Row{"P \\ S"}
	for s := uint64(1); s <= maxS; s++ {
		header = append(header, s)
	}
	t := newTable(fmt.Sprintf("Block matches over %d training cases", m.Cases()))
	t.AppendHeader(header)
	for p := uint64(1); p <= maxP; p++ {
		row := table.Row{p}
		for s := uint64(1); s <= maxS; s++ {
			cell := fmt.Sprint(m.Count(p, s))
			if m.Count(p, s) > 0 && eq.Confirmed(p, s) {
				cell += "*"
			}
			row = append(row, cell)
		}
		t.AppendRow(row)
	}
	return t.Render()
}

// Pairs lists the confirmed block pairs.
func Pairs(eq *sebb.Equivalence) string {
	t := newTable("Confirmed equivalent blocks")
	t.AppendHeader(table.Row{"Plaintiff", "Suspicious", "Matches"})
	for _, pair := range eq.Pairs() {
		t.AppendRow(table.Row{pair.Plaintiff, pair.Suspicious, eq.Matrix().Count(pair.Plaintiff, pair.Suspicious)})
	}
	return t.Render()
}

// RunLog renders the invocations of every block of a decoded trace.
func RunLog(log *tracer.RunLog, values bool) string {
	t := newTable(fmt.Sprintf("%d blocks, %d invocations", log.NumBlocks(), log.NumInvocations()))
	if values {
		t.AppendHeader(table.Row{"Block", "Invocation", "Inputs", "Outputs"})
	} else {
		t.AppendHeader(table.Row{"Block", "Invocations", "Inputs", "Outputs"})
	}
	for _, id := range log.Blocks() {
		invs := log.Invocations(id)
		if values {
			for i, inv := range invs {
				t.AppendRow(table.Row{id, i, words(inv.Inputs), words(inv.Outputs)})
			}
			continue
		}
		var inputs, outputs int
		for _, inv := range invs {
			inputs += len(inv.Inputs)
			outputs += len(inv.Outputs)
		}
		t.AppendRow(table.Row{id, len(invs), inputs, outputs})
	}
	return t.Render()
}

func words(values []uint64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("0x%x", v)
	}
	return strings.Join(parts, " ")
}

// ControlFlow renders the completion ordered block ids, one line per
// perLine entries.
func ControlFlow(trace tracer.ControlFlowTraceLog, perLine int) string {
	if perLine <= 0 {
		perLine = 16
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d block completions\n", len(trace))
	for i, id := range trace {
		if i > 0 {
			if i%perLine == 0 {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		fmt.Fprint(&b, id)
	}
	return b.String()
}

// Histogram renders opcode counts in descending order.
func Histogram(h histogram.Histogram) string {
	t := newTable(fmt.Sprintf("%v instructions", h.Total()))
	t.AppendHeader(table.Row{"Opcode", "Count", "Share"})
	normalized, err := h.Normalize()
	for _, op := range h.Opcodes() {
		share := ""
		if err == nil {
			share = percent(normalized[op])
		}
		t.AppendRow(table.Row{op, h[op], share})
	}
	t.SortBy([]table.SortBy{{Name: "Count", Mode: table.DscNumeric}, {Name: "Opcode", Mode: table.Asc}})
	return t.Render()
}

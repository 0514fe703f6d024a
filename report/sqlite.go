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
)

const (
	histogramCreate = `CREATE TABLE IF NOT EXISTS histogram (
	plaintiff TEXT,
	suspicious TEXT,
	plaintiff_instructions REAL,
	suspicious_instructions REAL,
	score INTEGER
)`
	histogramInsert = `INSERT INTO histogram (plaintiff, suspicious, plaintiff_instructions, suspicious_instructions, score) VALUES (?, ?, ?, ?, ?)`

	alignmentCreate = `CREATE TABLE IF NOT EXISTS alignment (
	plaintiff TEXT,
	suspicious TEXT,
	test_case TEXT,
	plaintiff_length INTEGER,
	suspicious_length INTEGER,
	lcs_length INTEGER,
	similarity REAL
)`
	alignmentInsert = `INSERT INTO alignment (plaintiff, suspicious, test_case, plaintiff_length, suspicious_length, lcs_length, similarity) VALUES (?, ?, ?, ?, ?, ?, ?)`

	equivalenceCreate = `CREATE TABLE IF NOT EXISTS equivalence (
	plaintiff TEXT,
	suspicious TEXT,
	plaintiff_block INTEGER,
	suspicious_block INTEGER,
	matches INTEGER,
	training_cases INTEGER
)`
	equivalenceInsert = `INSERT INTO equivalence (plaintiff, suspicious, plaintiff_block, suspicious_block, matches, training_cases) VALUES (?, ?, ?, ?, ?, ?)`
)

func histogramRows(r *analysis.Report) func() [][]any {
	return func() [][]any {
		h := r.Histogram
		return [][]any{{r.Plaintiff, r.Suspicious, h.PlaintiffInstructions, h.SuspiciousInstructions, h.Score}}
	}
}

func alignmentRows(r *analysis.Report) func() [][]any {
	return func() [][]any {
		rows := make([][]any, 0, len(r.SEBB.Cases))
		for _, c := range r.SEBB.Cases {
			rows = append(rows, []any{r.Plaintiff, r.Suspicious, c.TestCase, c.PlaintiffLen, c.SuspiciousLen, c.Length, c.Similarity()})
		}
		return rows
	}
}

// equivalenceRows lists the confirmed pairs only.
func equivalenceRows(r *analysis.Report) func() [][]any {
	return func() [][]any {
		eq := r.SEBB.Equivalence
		rows := make([][]any, 0, len(r.SEBB.Confirmed))
		for _, p := range r.SEBB.Confirmed {
			rows = append(rows, []any{
				r.Plaintiff, r.Suspicious,
				int64(p.Plaintiff), int64(p.Suspicious),
				eq.Matrix().Count(p.Plaintiff, p.Suspicious), r.SEBB.TrainingCases,
			})
		}
		return rows
	}
}

// AddReportToSqlite3 adds the printers storing r in the sqlite3 database conn.
func (ps *Printers) AddReportToSqlite3(conn string, r *analysis.Report) (*Printers, error) {
	if conn == "" {
		return ps, nil
	}
	switch r.Mode {
	case analysis.ModeHistogram:
		return ps.AddPrinterToSqlite3(conn, histogramCreate, histogramInsert, histogramRows(r))
	case analysis.ModeSEBB:
		if _, err := ps.AddPrinterToSqlite3(conn, alignmentCreate, alignmentInsert, alignmentRows(r)); err != nil {
			return ps, err
		}
		return ps.AddPrinterToSqlite3(conn, equivalenceCreate, equivalenceInsert, equivalenceRows(r))
	default:
		return ps, errors.Newf("unsupported analysis %v", r.Mode)
	}
}

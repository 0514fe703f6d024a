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

// Package analysis runs one comparison of a plaintiff and a suspicious
// program. The analysis mode is chosen once and each mode has its own
// pipeline.
package analysis

import (
	"github.com/0xsoniclabs/ppa/align"
	"github.com/0xsoniclabs/ppa/sebb"
	"github.com/cockroachdb/errors"
)

// Mode selects the comparison technique.
type Mode int

const (
	ModeHistogram Mode = iota // static instruction histogram
	ModeSEBB                  // semantically equivalent basic blocks with control flow alignment
)

func (m Mode) String() string {
	switch m {
	case ModeHistogram:
		return "instruction-histogram"
	case ModeSEBB:
		return "sebb"
	default:
		return "unknown"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "instruction-histogram":
		return ModeHistogram, nil
	case "sebb":
		return ModeSEBB, nil
	default:
		return 0, errors.Newf("unknown analysis %q; use instruction-histogram or sebb", s)
	}
}

// Pipeline compares two programs.
type Pipeline interface {
	Run(plaintiff, suspicious string) (*Report, error)
}

// Report is the outcome of one comparison. Exactly one of Histogram and
// SEBB is set, depending on Mode.
type Report struct {
	Mode       Mode
	Plaintiff  string
	Suspicious string
	Histogram  *HistogramReport
	SEBB       *SEBBReport
}

// HistogramReport holds the similarity percentage of the opcode histograms.
type HistogramReport struct {
	Score                  int
	PlaintiffInstructions  float64
	SuspiciousInstructions float64
}

// SEBBReport holds the training outcome and one alignment per held-out case.
type SEBBReport struct {
	TrainingCases int
	Equivalence   *sebb.Equivalence
	Confirmed     []sebb.Pair
	Cases         []CaseResult
}

// CaseResult is the control flow alignment of one held-out test case.
type CaseResult struct {
	TestCase string
	align.Result
}

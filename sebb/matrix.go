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

package sebb

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
)

// epsilon absorbs rounding of thresholdFraction * cases.
const epsilon = 1e-9

// EquivalenceMatrix counts, per (plaintiff id, suspicious id) pair, the
// training test cases on which the pair matched. Row and column indices are
// the block ids. The matrix grows as larger ids appear and is read-only once
// frozen.
type EquivalenceMatrix struct {
	counts *mat.Dense
	cases  int
	frozen bool
}

// NewEquivalenceMatrix creates an empty matrix.
func NewEquivalenceMatrix() *EquivalenceMatrix {
	return &EquivalenceMatrix{}
}

// maxIndex keeps id+1 representable as a matrix dimension.
const maxIndex = math.MaxInt32 - 1

// Reserve grows the matrix to cover ids up to maxP and maxS.
func (m *EquivalenceMatrix) Reserve(maxP, maxS uint64) error {
	if m.frozen {
		return ErrMatrixFrozen
	}
	if maxP > maxIndex || maxS > maxIndex {
		return errors.Wrapf(ErrBlockOutOfRange, "cannot index blocks %d and %d", maxP, maxS)
	}
	rows, cols := int(maxP)+1, int(maxS)+1
	if m.counts == nil {
		m.counts = mat.NewDense(rows, cols, nil)
		return nil
	}
	r, c := m.counts.Dims()
	if rows <= r && cols <= c {
		return nil
	}
	m.counts = m.counts.Grow(max(rows-r, 0), max(cols-c, 0)).(*mat.Dense)
	return nil
}

// Inc adds one matched test case to pair (p, s).
func (m *EquivalenceMatrix) Inc(p, s uint64) error {
	if err := m.Reserve(p, s); err != nil {
		return err
	}
	m.counts.Set(int(p), int(s), m.counts.At(int(p), int(s))+1)
	return nil
}

// AddCase counts one training test case.
func (m *EquivalenceMatrix) AddCase() error {
	if m.frozen {
		return ErrMatrixFrozen
	}
	m.cases++
	return nil
}

// Count returns the number of test cases on which (p, s) matched.
func (m *EquivalenceMatrix) Count(p, s uint64) int {
	if m.counts == nil {
		return 0
	}
	r, c := m.counts.Dims()
	if p >= uint64(r) || s >= uint64(c) {
		return 0
	}
	return int(m.counts.At(int(p), int(s)))
}

// Cases returns the number of counted training test cases.
func (m *EquivalenceMatrix) Cases() int {
	return m.cases
}

// MaxIDs returns the largest plaintiff and suspicious ids covered.
func (m *EquivalenceMatrix) MaxIDs() (uint64, uint64) {
	if m.counts == nil {
		return 0, 0
	}
	r, c := m.counts.Dims()
	return uint64(r - 1), uint64(c - 1)
}

// Freeze makes the matrix read-only.
func (m *EquivalenceMatrix) Freeze() {
	m.frozen = true
}

// Frozen reports whether the matrix is read-only.
func (m *EquivalenceMatrix) Frozen() bool {
	return m.frozen
}

// Confirmed reports whether (p, s) matched on at least fraction of the
// training test cases.
func (m *EquivalenceMatrix) Confirmed(p, s uint64, fraction float64) bool {
	if m.cases == 0 {
		return false
	}
	return float64(m.Count(p, s)) >= fraction*float64(m.cases)-epsilon
}

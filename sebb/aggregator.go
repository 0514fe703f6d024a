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
	"fmt"
	"strings"

	"github.com/0xsoniclabs/ppa/tracer"
	"github.com/cockroachdb/errors"
)

const (
	// DefaultThresholdFraction is the share of training cases a block pair
	// must match on to be confirmed.
	DefaultThresholdFraction = 0.8
	// DefaultMaxBlockID bounds the block ids paired by an Aggregator. The
	// match counts are kept densely, one cell per id pair.
	DefaultMaxBlockID = 4096
)

var (
	// ErrMissingBlock is returned by RangeObserved for an id without invocations.
	ErrMissingBlock = errors.New("block missing from run log")
	// ErrMatrixFrozen is returned when adding after Finalize.
	ErrMatrixFrozen = errors.New("equivalence matrix is frozen")
	// ErrNoTrainingCases is returned when finalizing without any added case.
	ErrNoTrainingCases = errors.New("no training test cases")
	// ErrBlockOutOfRange is returned for a block id above the configured maximum.
	ErrBlockOutOfRange = errors.New("block id out of range")
)

// RangePolicy selects which block ids are paired.
type RangePolicy int

const (
	// RangeMaxID pairs ids 1..max(configured, largest observed id).
	RangeMaxID RangePolicy = iota
	// RangeObserved pairs ids 1..number of distinct observed ids.
	RangeObserved
)

func (p RangePolicy) String() string {
	switch p {
	case RangeMaxID:
		return "max-id"
	case RangeObserved:
		return "observed"
	default:
		return fmt.Sprintf("RangePolicy(%d)", int(p))
	}
}

// ParseRangePolicy is the inverse of RangePolicy.String.
func ParseRangePolicy(s string) (RangePolicy, error) {
	switch s {
	case "max-id":
		return RangeMaxID, nil
	case "observed":
		return RangeObserved, nil
	default:
		return 0, errors.Newf("unknown range policy %q", s)
	}
}

// Options configure an Aggregator.
type Options struct {
	Cutoffs           Cutoffs
	ThresholdFraction float64
	RangePolicy       RangePolicy
	PlaintiffBlocks   uint64 // known number of plaintiff blocks, 0 if unknown
	SuspiciousBlocks  uint64 // known number of suspicious blocks, 0 if unknown
	MaxBlockID        uint64 // largest block id accepted, 0 for DefaultMaxBlockID
}

// DefaultOptions returns exact cutoffs, a 0.8 threshold and RangeMaxID.
func DefaultOptions() Options {
	return Options{
		Cutoffs:           DefaultCutoffs(),
		ThresholdFraction: DefaultThresholdFraction,
		RangePolicy:       RangeMaxID,
		MaxBlockID:        DefaultMaxBlockID,
	}
}

// Aggregator accumulates block pair matches over training test cases.
type Aggregator struct {
	opts   Options
	matrix *EquivalenceMatrix
}

// NewAggregator creates an Aggregator.
func NewAggregator(opts Options) *Aggregator {
	return &Aggregator{
		opts:   opts,
		matrix: NewEquivalenceMatrix(),
	}
}

// Cases returns the number of added training test cases.
func (a *Aggregator) Cases() int {
	return a.matrix.Cases()
}

// Add matches every block pair of one training test case.
func (a *Aggregator) Add(p, s *tracer.RunLog) error {
	return a.add(p, s, nil)
}

// AddWithGrid is Add that also returns the per pair verdicts of the case.
func (a *Aggregator) AddWithGrid(p, s *tracer.RunLog) (CaseGrid, error) {
	var grid CaseGrid
	if err := a.add(p, s, &grid); err != nil {
		return nil, err
	}
	return grid, nil
}

func (a *Aggregator) add(p, s *tracer.RunLog, grid *CaseGrid) error {
	if a.matrix.Frozen() {
		return ErrMatrixFrozen
	}
	np, err := a.blockRange(p, a.opts.PlaintiffBlocks)
	if err != nil {
		return errors.Wrap(err, "plaintiff")
	}
	ns, err := a.blockRange(s, a.opts.SuspiciousBlocks)
	if err != nil {
		return errors.Wrap(err, "suspicious")
	}
	if err = a.matrix.Reserve(np, ns); err != nil {
		return err
	}
	if grid != nil {
		*grid = newCaseGrid(np, ns)
	}

	for i := uint64(1); i <= np; i++ {
		pInv := p.Invocations(i)
		for j := uint64(1); j <= ns; j++ {
			if !Match(pInv, s.Invocations(j), a.opts.Cutoffs) {
				continue
			}
			if err = a.matrix.Inc(i, j); err != nil {
				return err
			}
			if grid != nil {
				(*grid)[i-1][j-1] = true
			}
		}
	}
	return a.matrix.AddCase()
}

// blockRange returns the largest block id to pair.
func (a *Aggregator) blockRange(log *tracer.RunLog, configured uint64) (uint64, error) {
	n, err := a.policyRange(log, configured)
	if err != nil {
		return 0, err
	}
	limit := a.opts.MaxBlockID
	if limit == 0 {
		limit = DefaultMaxBlockID
	}
	if n > limit {
		return 0, errors.Wrapf(ErrBlockOutOfRange, "block %d exceeds maximum %d", n, limit)
	}
	return n, nil
}

func (a *Aggregator) policyRange(log *tracer.RunLog, configured uint64) (uint64, error) {
	switch a.opts.RangePolicy {
	case RangeObserved:
		n := uint64(log.NumBlocks())
		for id := uint64(1); id <= n; id++ {
			if !log.Has(id) {
				return 0, errors.Wrapf(ErrMissingBlock, "block %d of %d", id, n)
			}
		}
		return n, nil
	default:
		return max(configured, log.MaxBlockID()), nil
	}
}

// Finalize freezes the matrix and returns the confirmed equivalence.
func (a *Aggregator) Finalize() (*Equivalence, error) {
	if a.matrix.Cases() == 0 {
		return nil, ErrNoTrainingCases
	}
	a.matrix.Freeze()
	return &Equivalence{matrix: a.matrix, fraction: a.opts.ThresholdFraction}, nil
}

// Pair is a plaintiff and suspicious block id.
type Pair struct {
	Plaintiff  uint64
	Suspicious uint64
}

// Equivalence is the confirmed equivalence relation of a finished training pass.
type Equivalence struct {
	matrix   *EquivalenceMatrix
	fraction float64
}

// Confirmed reports whether p and s are confirmed equivalent.
func (e *Equivalence) Confirmed(p, s uint64) bool {
	return e.matrix.Confirmed(p, s, e.fraction)
}

// Pairs lists the confirmed pairs ordered by plaintiff then suspicious id.
func (e *Equivalence) Pairs() []Pair {
	var res []Pair
	maxP, maxS := e.matrix.MaxIDs()
	for p := uint64(0); p <= maxP; p++ {
		for s := uint64(0); s <= maxS; s++ {
			if e.matrix.Count(p, s) > 0 && e.Confirmed(p, s) {
				res = append(res, Pair{p, s})
			}
		}
	}
	return res
}

// Matrix returns the frozen match counts.
func (e *Equivalence) Matrix() *EquivalenceMatrix {
	return e.matrix
}

// Fraction returns the threshold fraction.
func (e *Equivalence) Fraction() float64 {
	return e.fraction
}

// CaseGrid holds the verdicts of one test case; row i-1 and column j-1
// belong to plaintiff block i and suspicious block j.
type CaseGrid [][]bool

func newCaseGrid(np, ns uint64) CaseGrid {
	grid := make(CaseGrid, np)
	for i := range grid {
		grid[i] = make([]bool, ns)
	}
	return grid
}

// String renders one row per plaintiff block, X for a match and . otherwise.
// The diagonal is bracketed.
func (g CaseGrid) String() string {
	var b strings.Builder
	for i, row := range g {
		for j, ok := range row {
			mark := "."
			if ok {
				mark = "X"
			}
			if i == j {
				b.WriteString("[" + mark + "]")
			} else {
				b.WriteString(" " + mark + " ")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

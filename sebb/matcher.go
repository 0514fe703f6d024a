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

// Package sebb decides which basic blocks of two programs are semantically
// equivalent by comparing the values they consume and produce at run time.
//
// A block pair matches on one test case when every invocation of either
// block finds an invocation of the other whose input and output values line
// up. Matches are counted over a set of training test cases and pairs that
// match often enough are confirmed equivalent.
//
// Known limitation: block ids are assumed dense from 1. With RangeMaxID a
// block that never ran behaves as a block without invocations. RangeObserved
// iterates 1..number of observed blocks and reports ErrMissingBlock when a
// block in that range did not run, which misaligns the ranges of programs
// with unexecuted blocks.
package sebb

import (
	"slices"

	"github.com/0xsoniclabs/ppa/tracer"
)

// Cutoffs are the thresholds of the matcher.
type Cutoffs struct {
	Input      float64 // minimal input ratio of a matching invocation pair
	Output     float64 // minimal output ratio of a matching invocation pair
	Similarity float64 // minimal share of matched invocations of a block pair
}

// DefaultCutoffs requires exact agreement.
func DefaultCutoffs() Cutoffs {
	return Cutoffs{Input: 1.0, Output: 1.0, Similarity: 1.0}
}

// Ratio returns the share of ref values also present in other, counting
// duplicates as a multiset. Two empty sets have ratio 1, a single empty
// set ratio 0.
func Ratio(ref, other []uint64) float64 {
	switch {
	case len(ref) == 0 && len(other) == 0:
		return 1
	case len(ref) == 0 || len(other) == 0:
		return 0
	}
	return float64(intersection(ref, other)) / float64(len(ref))
}

// intersection is the multiset intersection size of a and b. The arguments
// are not modified.
func intersection(a, b []uint64) int {
	sa, sb := slices.Clone(a), slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)

	count := 0
	for i, j := 0, 0; i < len(sa) && j < len(sb); {
		switch {
		case sa[i] < sb[j]:
			i++
		case sa[i] > sb[j]:
			j++
		default:
			count++
			i++
			j++
		}
	}
	return count
}

// matches reports whether inv agrees with other under c, inv being the
// reference side.
func matches(inv, other *tracer.BlockInvocation, c Cutoffs) bool {
	return Ratio(inv.Inputs, other.Inputs) >= c.Input && Ratio(inv.Outputs, other.Outputs) >= c.Output
}

// matched counts the ref invocations for which any invocation of others
// matches.
func matched(ref, others []*tracer.BlockInvocation, c Cutoffs) int {
	count := 0
	for _, inv := range ref {
		if slices.ContainsFunc(others, func(other *tracer.BlockInvocation) bool {
			return matches(inv, other, c)
		}) {
			count++
		}
	}
	return count
}

// Score is the share of invocations on both sides finding a counterpart.
// Blocks without any invocation score 0.
func Score(p, s []*tracer.BlockInvocation, c Cutoffs) float64 {
	total := len(p) + len(s)
	if total == 0 {
		return 0
	}
	return float64(matched(p, s, c)+matched(s, p, c)) / float64(total)
}

// Match judges whether the blocks with invocations p and s are equivalent
// on one test case.
func Match(p, s []*tracer.BlockInvocation, c Cutoffs) bool {
	return Score(p, s, c) >= c.Similarity
}

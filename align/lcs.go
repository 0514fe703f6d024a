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

// Package align measures how much of the control flow of two executions
// lines up under a block equivalence relation.
package align

// Equal reports whether plaintiff block p and suspicious block s are equivalent.
type Equal func(p, s uint64) bool

// Identity compares block ids literally.
func Identity(p, s uint64) bool {
	return p == s
}

// Result holds the raw counts of one alignment.
type Result struct {
	PlaintiffLen  int
	SuspiciousLen int
	Length        int // longest common subsequence under the relation
}

// Similarity returns Length relative to the shorter trace, 0 when a trace is empty.
func (r Result) Similarity() float64 {
	shorter := min(r.PlaintiffLen, r.SuspiciousLen)
	if shorter == 0 {
		return 0
	}
	return float64(r.Length) / float64(shorter)
}

// LCS computes the longest common subsequence of p and s where elements are
// compared with equal. Only two rows sized after the shorter trace are kept.
func LCS(p, s []uint64, equal Equal) Result {
	res := Result{PlaintiffLen: len(p), SuspiciousLen: len(s)}

	outer, inner := p, s
	eq := equal
	if len(s) > len(p) {
		outer, inner = s, p
		eq = func(a, b uint64) bool { return equal(b, a) }
	}

	prev := make([]int, len(inner)+1)
	cur := make([]int, len(inner)+1)
	for _, a := range outer {
		for j, b := range inner {
			if eq(a, b) {
				cur[j+1] = prev[j] + 1
			} else {
				cur[j+1] = max(prev[j+1], cur[j])
			}
		}
		prev, cur = cur, prev
	}
	res.Length = prev[len(inner)]
	return res
}

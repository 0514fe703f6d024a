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

// Package histogram compares programs by the relative frequency of the
// instruction opcodes they contain. It works on static program structure
// only and does not depend on execution traces.
package histogram

import (
	"math"
	"slices"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/maps"
	"gonum.org/v1/gonum/floats"
)

// ErrEmptyHistogram is returned for a program without instructions.
var ErrEmptyHistogram = errors.New("empty instruction histogram")

// Histogram counts opcodes.
type Histogram map[string]float64

// Add counts one occurrence of opcode.
func (h Histogram) Add(opcode string) {
	h[opcode]++
}

// AddN counts n occurrences of opcode.
func (h Histogram) AddN(opcode string, n float64) {
	h[opcode] += n
}

// Opcodes returns the opcodes in ascending order.
func (h Histogram) Opcodes() []string {
	ops := maps.Keys(h)
	slices.Sort(ops)
	return ops
}

// Total returns the number of counted instructions.
func (h Histogram) Total() float64 {
	return floats.Sum(h.weights(h.Opcodes()))
}

func (h Histogram) weights(opcodes []string) []float64 {
	w := make([]float64, len(opcodes))
	for i, op := range opcodes {
		w[i] = h[op]
	}
	return w
}

// Normalize returns the histogram scaled to a probability distribution.
// Opcodes without a positive finite count are left out.
func (h Histogram) Normalize() (Histogram, error) {
	opcodes := slices.DeleteFunc(h.Opcodes(), func(op string) bool {
		return !(h[op] > 0) || math.IsInf(h[op], 0)
	})
	w := h.weights(opcodes)
	total := floats.Sum(w)
	if total <= 0 {
		return nil, ErrEmptyHistogram
	}
	floats.Scale(1/total, w)
	res := make(Histogram, len(opcodes))
	for i, op := range opcodes {
		res[op] = w[i]
	}
	return res, nil
}

// Distance computes the halved chi-square distance of the normalized
// histograms. The result lies in [0,1].
func Distance(p, s Histogram) (float64, error) {
	np, err := p.Normalize()
	if err != nil {
		return 0, errors.Wrap(err, "plaintiff")
	}
	ns, err := s.Normalize()
	if err != nil {
		return 0, errors.Wrap(err, "suspicious")
	}

	merged := make(Histogram, len(np)+len(ns))
	for op, w := range np {
		merged.AddN(op, w)
	}
	for op, w := range ns {
		merged.AddN(op, w)
	}

	// every merged weight is positive: an opcode is only present if one side has it
	var result float64
	for _, op := range merged.Opcodes() {
		diff := np[op] - ns[op]
		result += diff * diff / merged[op]
	}
	return result / 2, nil
}

// Compare returns the similarity of p and s in percent, 100 for identical
// opcode distributions.
func Compare(p, s Histogram) (int, error) {
	d, err := Distance(p, s)
	if err != nil {
		return 0, err
	}
	score := int(math.Round((1 - d) * 100))
	return min(max(score, 0), 100), nil
}

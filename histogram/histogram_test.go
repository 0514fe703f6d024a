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

package histogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram_Add(t *testing.T) {
	h := make(Histogram)
	h.Add("add")
	h.Add("add")
	h.AddN("load", 3)

	assert.Equal(t, 2.0, h["add"])
	assert.Equal(t, 5.0, h.Total())
	assert.Equal(t, []string{"add", "load"}, h.Opcodes())
}

func TestHistogram_Normalize(t *testing.T) {
	h := Histogram{"add": 1, "load": 3}
	n, err := h.Normalize()
	require.NoError(t, err)
	assert.InDelta(t, 0.25, n["add"], 1e-12)
	assert.InDelta(t, 0.75, n["load"], 1e-12)
	// the receiver is left unchanged
	assert.Equal(t, 3.0, h["load"])
}

func TestHistogram_NormalizeEmpty(t *testing.T) {
	_, err := Histogram{}.Normalize()
	assert.ErrorIs(t, err, ErrEmptyHistogram)

	_, err = Histogram{"add": 0}.Normalize()
	assert.ErrorIs(t, err, ErrEmptyHistogram)
}

func TestCompare_SelfIsHundred(t *testing.T) {
	h := Histogram{"add": 4, "call": 2, "ret": 1, "br": 7}
	score, err := Compare(h, h)
	require.NoError(t, err)
	assert.Equal(t, 100, score)
}

func TestCompare_SelfIsHundredWithZeroCounts(t *testing.T) {
	h := Histogram{"add": 0, "sub": 1}
	d, err := Distance(h, h)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
	score, err := Compare(h, h)
	require.NoError(t, err)
	assert.Equal(t, 100, score)

	n, err := h.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Histogram{"sub": 1}, n)

	score, err = Compare(Histogram{"sub": 2}, h)
	require.NoError(t, err)
	assert.Equal(t, 100, score)
}

func TestCompare_ScaleInvariant(t *testing.T) {
	p := Histogram{"add": 1, "mul": 2}
	s := Histogram{"add": 10, "mul": 20}
	score, err := Compare(p, s)
	require.NoError(t, err)
	assert.Equal(t, 100, score)
}

func TestCompare_Scores(t *testing.T) {
	tests := []struct {
		name string
		p, s Histogram
		want int
	}{
		{"Disjoint", Histogram{"add": 1}, Histogram{"mul": 1}, 0},
		{"Partial", Histogram{"add": 1, "sub": 1}, Histogram{"add": 1}, 67},
		{"Symmetric", Histogram{"add": 1}, Histogram{"add": 1, "sub": 1}, 67},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Compare(test.p, test.s)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestCompare_EmptyProgram(t *testing.T) {
	_, err := Compare(Histogram{}, Histogram{"add": 1})
	assert.ErrorIs(t, err, ErrEmptyHistogram)
	assert.ErrorContains(t, err, "plaintiff")

	_, err = Compare(Histogram{"add": 1}, Histogram{})
	assert.ErrorIs(t, err, ErrEmptyHistogram)
	assert.ErrorContains(t, err, "suspicious")
}

func TestDistance_Range(t *testing.T) {
	p := Histogram{"a": 5, "b": 1, "c": 9}
	s := Histogram{"b": 2, "c": 1, "d": 4}
	d, err := Distance(p, s)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, 0.0)
	assert.LessOrEqual(t, d, 1.0)

	back, err := Distance(s, p)
	require.NoError(t, err)
	assert.InDelta(t, d, back, 1e-12)
}

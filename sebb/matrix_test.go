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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquivalenceMatrix_Grows(t *testing.T) {
	m := NewEquivalenceMatrix()
	p, s := m.MaxIDs()
	assert.Equal(t, uint64(0), p)
	assert.Equal(t, uint64(0), s)
	assert.Equal(t, 0, m.Count(3, 3))

	require.NoError(t, m.Inc(2, 1))
	require.NoError(t, m.Inc(5, 7))
	require.NoError(t, m.Inc(2, 1))

	assert.Equal(t, 2, m.Count(2, 1))
	assert.Equal(t, 1, m.Count(5, 7))
	assert.Equal(t, 0, m.Count(1, 2))
	assert.Equal(t, 0, m.Count(100, 1))

	p, s = m.MaxIDs()
	assert.Equal(t, uint64(5), p)
	assert.Equal(t, uint64(7), s)
}

func TestEquivalenceMatrix_Reserve(t *testing.T) {
	m := NewEquivalenceMatrix()
	require.NoError(t, m.Inc(1, 1))
	require.NoError(t, m.Reserve(4, 1))
	require.NoError(t, m.Reserve(2, 2))

	p, s := m.MaxIDs()
	assert.Equal(t, uint64(4), p)
	assert.Equal(t, uint64(2), s)
	assert.Equal(t, 1, m.Count(1, 1))
}

func TestEquivalenceMatrix_ReserveRejectsHugeIDs(t *testing.T) {
	m := NewEquivalenceMatrix()
	assert.ErrorIs(t, m.Reserve(1<<63, 1), ErrBlockOutOfRange)
	assert.ErrorIs(t, m.Inc(1, 1<<40), ErrBlockOutOfRange)
	assert.Equal(t, 0, m.Count(1, 1))
}

func TestEquivalenceMatrix_Frozen(t *testing.T) {
	m := NewEquivalenceMatrix()
	require.NoError(t, m.Inc(1, 1))
	m.Freeze()

	assert.True(t, m.Frozen())
	assert.ErrorIs(t, m.Inc(1, 1), ErrMatrixFrozen)
	assert.ErrorIs(t, m.AddCase(), ErrMatrixFrozen)
	assert.ErrorIs(t, m.Reserve(9, 9), ErrMatrixFrozen)
	assert.Equal(t, 1, m.Count(1, 1))
}

func TestEquivalenceMatrix_Confirmed(t *testing.T) {
	m := NewEquivalenceMatrix()
	assert.False(t, m.Confirmed(1, 1, 0.5))

	for i := 0; i < 10; i++ {
		require.NoError(t, m.AddCase())
	}
	for i := 0; i < 7; i++ {
		require.NoError(t, m.Inc(1, 1))
	}
	// 0.7*10 is slightly above 7 in floating point
	assert.True(t, m.Confirmed(1, 1, 0.7))
	assert.False(t, m.Confirmed(1, 1, 0.8))
	assert.False(t, m.Confirmed(2, 2, 0.7))
}

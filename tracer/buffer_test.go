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

package tracer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBuffer_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buffer")
	buf := NewFileBuffer(path, 1024, false)
	assert.Equal(t, path, buf.Path())

	_, err := buf.Reader()
	require.Error(t, err)

	require.NoError(t, buf.Open())
	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), stat.Size())

	// the producer writes through its own handle
	w, err := os.OpenFile(path, os.O_WRONLY, 0)
	require.NoError(t, err)
	fw := &fileWriter{buffer: nopFlusher{w}}
	require.NoError(t, fw.EnterBlock(2))
	require.NoError(t, fw.ExitBlock(2))
	require.NoError(t, fw.Close())
	require.NoError(t, w.Close())

	require.NoError(t, buf.Sync())
	r, err := buf.Reader()
	require.NoError(t, err)
	trace, err := ParseControlFlow(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, ControlFlowTraceLog{2}, trace)

	require.NoError(t, buf.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, buf.Release())
}

func TestFileBuffer_ZeroFilledBufferIsMalformed(t *testing.T) {
	buf := NewFileBuffer(filepath.Join(t.TempDir(), "buffer"), 0, true)
	require.NoError(t, buf.Open())
	defer func() { require.NoError(t, buf.Release()) }()
	require.NoError(t, buf.Sync())
	r, err := buf.Reader()
	require.NoError(t, err)
	_, err = ParseRunLog(r)
	assert.ErrorIs(t, err, ErrMalformedLog)
	require.NoError(t, r.Close())
}

func TestMemoryBuffer_Lifecycle(t *testing.T) {
	buf := NewMemoryBuffer()
	require.NoError(t, buf.Open())
	w := buf.Writer()
	require.NoError(t, w.EnterBlock(1))
	require.NoError(t, w.ExitBlock(1))
	require.NoError(t, w.Close())
	require.NoError(t, buf.Sync())

	r, err := buf.Reader()
	require.NoError(t, err)
	log, err := ParseRunLog(r)
	require.NoError(t, err)
	assert.Equal(t, 1, log.NumInvocations())
	assert.Empty(t, buf.Path())

	require.NoError(t, buf.Release())
	r, err = buf.Reader()
	require.NoError(t, err)
	_, err = ParseRunLog(r)
	assert.ErrorIs(t, err, ErrTruncatedLog)
}

type nopFlusher struct{ *os.File }

func (nopFlusher) Flush() error { return nil }

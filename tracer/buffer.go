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
	"bytes"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
)

//go:generate mockgen -source buffer.go -destination buffer_mock.go -package tracer

// Buffer is the storage an instrumented program writes its trace into.
// The lifecycle is Open, (producer writes), Sync, Reader, Release.
type Buffer interface {
	// Open creates or resets the storage before a producer runs.
	Open() error
	// Sync is the write barrier called once the producer has finished.
	Sync() error
	// Reader returns a word reader over the synced contents.
	Reader() (FileReader, error)
	// Release frees the storage.
	Release() error
	// Path is the location handed to producers; empty if not file backed.
	Path() string
}

// FileBuffer is a fixed-size, zero-filled file shared with the producer.
type FileBuffer struct {
	path string
	size int64
	keep bool
	file *os.File
}

// NewFileBuffer creates a buffer at path of the given size. With keep set,
// Release leaves the file on disk.
func NewFileBuffer(path string, size int64, keep bool) *FileBuffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &FileBuffer{path: path, size: size, keep: keep}
}

func (b *FileBuffer) Open() error {
	if b.file != nil {
		if err := b.file.Close(); err != nil {
			return fmt.Errorf("cannot close trace buffer %s; %w", b.path, err)
		}
	}
	file, err := os.OpenFile(b.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return fmt.Errorf("cannot open trace buffer %s; %w", b.path, err)
	}
	if err = file.Truncate(b.size); err != nil {
		return errors.Join(fmt.Errorf("cannot resize trace buffer %s; %w", b.path, err), file.Close())
	}
	b.file = file
	return nil
}

func (b *FileBuffer) Sync() error {
	if b.file == nil {
		return errors.Newf("trace buffer %s is not open", b.path)
	}
	return b.file.Sync()
}

func (b *FileBuffer) Reader() (FileReader, error) {
	if b.file == nil {
		return nil, errors.Newf("trace buffer %s is not open", b.path)
	}
	return NewFileReader(b.path)
}

func (b *FileBuffer) Release() error {
	if b.file == nil {
		return nil
	}
	err := b.file.Close()
	b.file = nil
	if !b.keep {
		err = errors.Join(err, os.Remove(b.path))
	}
	return err
}

func (b *FileBuffer) Path() string {
	return b.path
}

// MemoryBuffer keeps the trace in memory; producers write through Writer.
type MemoryBuffer struct {
	data bytes.Buffer
}

func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{}
}

func (b *MemoryBuffer) Open() error {
	b.data.Reset()
	return nil
}

func (b *MemoryBuffer) Sync() error {
	return nil
}

// Writer returns an encoder appending to the buffer.
func (b *MemoryBuffer) Writer() FileWriter {
	return NewWriter(&b.data)
}

func (b *MemoryBuffer) Reader() (FileReader, error) {
	return NewReader(bytes.NewReader(b.data.Bytes()))
}

func (b *MemoryBuffer) Release() error {
	b.data.Reset()
	return nil
}

func (b *MemoryBuffer) Path() string {
	return ""
}

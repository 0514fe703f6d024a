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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
)

// NewFileReader opens a trace file. Gzip-compressed traces are
// decompressed transparently.
func NewFileReader(filename string) (FileReader, error) {
	stat, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("could not stat file: %s, does it exist? %w", filename, err)
	}
	if stat.IsDir() {
		return nil, errors.New("given path to trace file is a directory")
	}
	if stat.Size() == 0 {
		return nil, errors.New("given trace file is empty")
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open trace file: %s, %w", filename, err)
	}
	r, err := newReader(file, file)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("could not read trace file: %s, %w", filename, err), file.Close())
	}
	return r, nil
}

// NewReader decodes trace words from an in-memory or streamed source.
func NewReader(r io.Reader) (FileReader, error) {
	return newReader(r, nil)
}

func newReader(r io.Reader, closer io.Closer) (*fileReader, error) {
	buffered := bufio.NewReader(r)
	magic, err := buffered.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gzipReader, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, fmt.Errorf("could not create gzip reader: %w", err)
		}
		return &fileReader{
			reader:  bufio.NewReader(gzipReader),
			closers: []io.Closer{gzipReader, closer},
		}, nil
	}
	return &fileReader{
		reader:  buffered,
		closers: []io.Closer{closer},
	}, nil
}

//go:generate mockgen -source file_reader.go -destination file_reader_mock.go -package tracer

// FileReader reads a trace log word by word.
type FileReader interface {
	// ReadWord reads one little-endian 64-bit word.
	ReadWord() (uint64, error)
	// Position returns the number of words read so far.
	Position() int
	Close() error
}

// ReadBuffer is a wrapper around necessary interfaces for reading data for mocking purposes.
type ReadBuffer interface {
	io.Reader
	io.ByteReader
}

type fileReader struct {
	reader  ReadBuffer
	closers []io.Closer
	words   int
	scratch [WordSize]byte
}

func (f *fileReader) ReadWord() (uint64, error) {
	if _, err := io.ReadFull(f.reader, f.scratch[:]); err != nil {
		return 0, fmt.Errorf("cannot read word %d: %w", f.words, err)
	}
	f.words++
	return binary.LittleEndian.Uint64(f.scratch[:]), nil
}

func (f *fileReader) Position() int {
	return f.words
}

func (f *fileReader) Close() error {
	var err error
	for _, c := range f.closers {
		if c != nil {
			err = errors.Join(err, c.Close())
		}
	}
	return err
}

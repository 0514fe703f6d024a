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

// NewFileWriter creates a trace file. With compress set the words are
// written through gzip.
func NewFileWriter(filename string, compress bool) (FileWriter, error) {
	_, err := os.Stat(filename)
	if err == nil {
		return nil, fmt.Errorf("file %s already exists", filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	if !compress {
		return &fileWriter{
			buffer:  bufio.NewWriter(file),
			closers: []io.Closer{file},
		}, nil
	}
	gzipWriter := gzip.NewWriter(file)
	return &fileWriter{
		buffer:  bufio.NewWriter(gzipWriter),
		closers: []io.Closer{gzipWriter, file},
	}, nil
}

// NewWriter encodes trace words into w. Close does not close w.
func NewWriter(w io.Writer) FileWriter {
	return &fileWriter{buffer: bufio.NewWriter(w)}
}

//go:generate mockgen -source file_writer.go -destination file_writer_mock.go -package tracer

// FileWriter emits trace events in wire format, the same encoding the
// instrumentation runtime produces.
type FileWriter interface {
	// WriteWord writes one little-endian 64-bit word.
	WriteWord(word uint64) error
	WriteEvent(e Event) error
	EnterBlock(id uint64) error
	ExitBlock(id uint64) error
	RecordInput(id, value uint64) error
	RecordOutput(id, value uint64) error
	// Close terminates the log with EndOfLog, flushes and closes the file.
	Close() error
}

// WriteBuffer is a wrapper around necessary interfaces for writing data for mocking purposes.
type WriteBuffer interface {
	io.Writer
	Flush() error
}

type fileWriter struct {
	buffer  WriteBuffer
	closers []io.Closer
	scratch [WordSize]byte
}

func (f *fileWriter) WriteWord(word uint64) error {
	binary.LittleEndian.PutUint64(f.scratch[:], word)
	if _, err := f.buffer.Write(f.scratch[:]); err != nil {
		return fmt.Errorf("error writing word to buffer: %w", err)
	}
	return nil
}

func (f *fileWriter) WriteEvent(e Event) error {
	for _, w := range e.Words() {
		if err := f.WriteWord(w); err != nil {
			return err
		}
	}
	return nil
}

func (f *fileWriter) EnterBlock(id uint64) error {
	return f.WriteEvent(Event{Kind: EnterBlock, Block: id})
}

func (f *fileWriter) ExitBlock(id uint64) error {
	return f.WriteEvent(Event{Kind: ExitBlock, Block: id})
}

func (f *fileWriter) RecordInput(id, value uint64) error {
	return f.WriteEvent(Event{Kind: RecordInput, Block: id, Value: value})
}

func (f *fileWriter) RecordOutput(id, value uint64) error {
	return f.WriteEvent(Event{Kind: RecordOutput, Block: id, Value: value})
}

func (f *fileWriter) Close() error {
	err := f.WriteWord(EndOfLog)
	// Flush the buffer to ensure all data is written, then close the file
	err = errors.Join(err, f.buffer.Flush())
	for _, c := range f.closers {
		err = errors.Join(err, c.Close())
	}
	return err
}

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
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
)

// blockIDMask keeps the block id bits carried in the op word of a recorded value.
const blockIDMask = OutputMarker - 1

// Event is one decoded trace event.
type Event struct {
	Kind EventKind
	// Block is the block id of an enter/exit event. For recorded values it
	// holds the id bits the runtime put into the op word; they are not
	// used for attribution.
	Block uint64
	Value uint64
}

// NewEvent classifies an (op, val) word pair.
func NewEvent(op, val uint64) Event {
	switch op {
	case EndOfLog:
		return Event{Kind: EndLog}
	case EnterBlockOp:
		return Event{Kind: EnterBlock, Block: val}
	case ExitBlockOp:
		return Event{Kind: ExitBlock, Block: val}
	}
	if op&OutputMarker != 0 {
		return Event{Kind: RecordOutput, Block: op & blockIDMask, Value: val}
	}
	return Event{Kind: RecordInput, Block: op & blockIDMask, Value: val}
}

// Words returns the wire encoding of the event. EndLog encodes to a single word.
func (e Event) Words() []uint64 {
	switch e.Kind {
	case EnterBlock:
		return []uint64{EnterBlockOp, e.Block}
	case ExitBlock:
		return []uint64{ExitBlockOp, e.Block}
	case RecordInput:
		return []uint64{(e.Block & blockIDMask) | InputMarker, e.Value}
	case RecordOutput:
		return []uint64{(e.Block & blockIDMask) | OutputMarker, e.Value}
	default:
		return []uint64{EndOfLog}
	}
}

func (e Event) String() string {
	switch e.Kind {
	case EnterBlock, ExitBlock:
		return fmt.Sprintf("%v #%d", e.Kind, e.Block)
	case RecordInput, RecordOutput:
		return fmt.Sprintf("%v #%d 0x%x", e.Kind, e.Block, e.Value)
	default:
		return e.Kind.String()
	}
}

// ReadEvent reads the next event from r. Running out of words before the
// EndOfLog sentinel yields ErrTruncatedLog.
func ReadEvent(r FileReader) (Event, error) {
	op, err := r.ReadWord()
	if err != nil {
		return Event{}, asTruncated(err)
	}
	if op == EndOfLog {
		return Event{Kind: EndLog}, nil
	}
	val, err := r.ReadWord()
	if err != nil {
		return Event{}, asTruncated(err)
	}
	return NewEvent(op, val), nil
}

func asTruncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrap(ErrTruncatedLog, err.Error())
	}
	return err
}

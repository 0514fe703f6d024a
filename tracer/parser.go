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
	"github.com/cockroachdb/errors"
)

// Stats summarizes a decoded trace.
type Stats struct {
	Events   int // decoded events, EndOfLog excluded
	MaxDepth int // deepest nesting of open blocks
	Unclosed int // blocks still open at EndOfLog; their records are dropped
}

// reducer receives the closed invocations of a decoding pass.
type reducer interface {
	exit(id uint64, inv *BlockInvocation)
}

type runLogReducer struct{ log *RunLog }

func (r runLogReducer) exit(id uint64, inv *BlockInvocation) { r.log.Append(id, inv) }

type controlFlowReducer struct{ trace *ControlFlowTraceLog }

func (r controlFlowReducer) exit(id uint64, _ *BlockInvocation) { *r.trace = append(*r.trace, id) }

type reducers []reducer

func (rs reducers) exit(id uint64, inv *BlockInvocation) {
	for _, r := range rs {
		r.exit(id, inv)
	}
}

// decode runs the event grammar over r until EndOfLog. Enter pushes a
// fresh frame, exit pops it and hands it to the reducer, recorded values go
// to the innermost open frame. Nesting follows the instrumentation placing
// a callee's enter inside the caller's block.
func decode(r FileReader, red reducer) (Stats, error) {
	var (
		stats Stats
		stack []*BlockInvocation
	)
	for {
		pos := r.Position()
		ev, err := ReadEvent(r)
		if err != nil {
			return stats, err
		}
		switch ev.Kind {
		case EndLog:
			stats.Unclosed = len(stack)
			return stats, nil
		case EnterBlock:
			stack = append(stack, &BlockInvocation{})
			stats.MaxDepth = max(stats.MaxDepth, len(stack))
		case ExitBlock:
			if len(stack) == 0 {
				return stats, errors.Wrapf(ErrMalformedLog, "exit of block %d at word %d without open block", ev.Block, pos)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			red.exit(ev.Block, top)
		case RecordInput, RecordOutput:
			if len(stack) == 0 {
				return stats, errors.Wrapf(ErrMalformedLog, "%v value at word %d without open block", ev.Kind, pos)
			}
			top := stack[len(stack)-1]
			if ev.Kind == RecordOutput {
				top.Outputs = append(top.Outputs, ev.Value)
			} else {
				top.Inputs = append(top.Inputs, ev.Value)
			}
		}
		stats.Events++
	}
}

// ParseRunLog decodes r into the per-block grouped view.
func ParseRunLog(r FileReader) (*RunLog, error) {
	log := NewRunLog()
	if _, err := decode(r, runLogReducer{log}); err != nil {
		return nil, err
	}
	return log, nil
}

// ParseControlFlow decodes r into the completion-ordered block sequence.
func ParseControlFlow(r FileReader) (ControlFlowTraceLog, error) {
	trace := ControlFlowTraceLog{}
	if _, err := decode(r, controlFlowReducer{&trace}); err != nil {
		return nil, err
	}
	return trace, nil
}

// Parse decodes r once and produces both views.
func Parse(r FileReader) (*RunLog, ControlFlowTraceLog, error) {
	log, trace, _, err := ParseWithStats(r)
	return log, trace, err
}

// ParseWithStats is Parse that also reports decoding statistics.
func ParseWithStats(r FileReader) (*RunLog, ControlFlowTraceLog, Stats, error) {
	log := NewRunLog()
	trace := ControlFlowTraceLog{}
	stats, err := decode(r, reducers{runLogReducer{log}, controlFlowReducer{&trace}})
	if err != nil {
		return nil, nil, stats, err
	}
	return log, trace, stats, nil
}

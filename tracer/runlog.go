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
	"slices"

	"golang.org/x/exp/maps"
)

// BlockInvocation is one dynamic execution of a basic block: the input and
// output values it recorded, in observed order.
type BlockInvocation struct {
	Inputs  []uint64
	Outputs []uint64
}

// RunLog groups the invocations of one execution by basic block id.
type RunLog struct {
	blocks      map[uint64][]*BlockInvocation
	maxID       uint64
	invocations int
}

func NewRunLog() *RunLog {
	return &RunLog{blocks: make(map[uint64][]*BlockInvocation)}
}

// Append records a closed invocation of block id.
func (l *RunLog) Append(id uint64, inv *BlockInvocation) {
	l.blocks[id] = append(l.blocks[id], inv)
	l.invocations++
	if id > l.maxID {
		l.maxID = id
	}
}

// Invocations returns the invocations of block id; nil if it never ran.
func (l *RunLog) Invocations(id uint64) []*BlockInvocation {
	return l.blocks[id]
}

// Has reports whether block id was invoked at least once.
func (l *RunLog) Has(id uint64) bool {
	_, ok := l.blocks[id]
	return ok
}

// NumBlocks returns the number of distinct block ids observed.
func (l *RunLog) NumBlocks() int {
	return len(l.blocks)
}

// NumInvocations returns the total number of recorded invocations.
func (l *RunLog) NumInvocations() int {
	return l.invocations
}

// MaxBlockID returns the largest block id observed, 0 for an empty log.
func (l *RunLog) MaxBlockID() uint64 {
	return l.maxID
}

// Blocks returns the observed block ids in ascending order.
func (l *RunLog) Blocks() []uint64 {
	ids := maps.Keys(l.blocks)
	slices.Sort(ids)
	return ids
}

// ControlFlowTraceLog is the sequence of block ids in the order the blocks
// completed execution.
type ControlFlowTraceLog []uint64

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Classification(t *testing.T) {
	tests := []struct {
		op, val uint64
		want    Event
	}{
		{EndOfLog, 0, Event{Kind: EndLog}},
		{EnterBlockOp, 7, Event{Kind: EnterBlock, Block: 7}},
		{ExitBlockOp, 7, Event{Kind: ExitBlock, Block: 7}},
		{7 | OutputMarker, 42, Event{Kind: RecordOutput, Block: 7, Value: 42}},
		{7, 42, Event{Kind: RecordInput, Block: 7, Value: 42}},
		{0, 0, Event{Kind: RecordInput}},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, NewEvent(test.op, test.val))
	}
}

func TestEvent_WordsRoundTrip(t *testing.T) {
	events := []Event{
		{Kind: EnterBlock, Block: 1},
		{Kind: RecordInput, Block: 1, Value: 5},
		{Kind: RecordOutput, Block: 1, Value: 6},
		{Kind: ExitBlock, Block: 1},
	}
	for _, e := range events {
		words := e.Words()
		require.Len(t, words, 2)
		assert.Equal(t, e, NewEvent(words[0], words[1]))
	}
	assert.Equal(t, []uint64{EndOfLog}, Event{Kind: EndLog}.Words())
}

func TestEvent_RecordedIdNeverCollidesWithSentinels(t *testing.T) {
	words := Event{Kind: RecordOutput, Block: ^uint64(0), Value: 1}.Words()
	assert.NotEqual(t, EndOfLog, words[0])
	assert.NotEqual(t, EnterBlockOp, words[0])
	assert.NotEqual(t, ExitBlockOp, words[0])
	assert.Equal(t, RecordOutput, NewEvent(words[0], words[1]).Kind)
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "enter #3", Event{Kind: EnterBlock, Block: 3}.String())
	assert.Equal(t, "output #3 0x2a", Event{Kind: RecordOutput, Block: 3, Value: 42}.String())
	assert.Equal(t, "end", Event{Kind: EndLog}.String())
}

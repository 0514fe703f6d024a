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

// Wire-level words of a trace log. A log is a flat array of 64-bit
// little-endian words emitted in (op, val) pairs and terminated by EndOfLog.
const (
	EndOfLog     uint64 = 0xFFFF_FFFF_FFFF_FFFF
	EnterBlockOp uint64 = 0xFFFF_FFFF_FFFF_FFFE
	ExitBlockOp  uint64 = 0xFFFF_FFFF_FFFF_FFFD

	// OutputMarker is set in the op word of a recorded output value;
	// input records leave it clear.
	OutputMarker uint64 = 0x4000_0000_0000_0000
	InputMarker  uint64 = 0x0000_0000_0000_0000
)

const (
	// WordSize is the size of one trace word in bytes.
	WordSize = 8

	// DefaultBufferSize is the size of the shared trace buffer handed to
	// instrumented programs.
	DefaultBufferSize = 4 * 1024 * 1024

	// TraceFileEnv names the environment variable through which instrumented
	// programs learn where to write their trace.
	TraceFileEnv = "SEBB_TRACE_FILE"
)

// EventKind classifies a decoded trace event.
type EventKind uint8

const (
	EnterBlock EventKind = iota
	ExitBlock
	RecordInput
	RecordOutput
	EndLog
)

func (k EventKind) String() string {
	switch k {
	case EnterBlock:
		return "enter"
	case ExitBlock:
		return "exit"
	case RecordInput:
		return "input"
	case RecordOutput:
		return "output"
	case EndLog:
		return "end"
	default:
		return "unknown"
	}
}

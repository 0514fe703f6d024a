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

import "github.com/cockroachdb/errors"

var (
	// ErrTruncatedLog is returned when a trace ends before its EndOfLog sentinel.
	ErrTruncatedLog = errors.New("truncated trace log")
	// ErrMalformedLog is returned on stack underflow: an exit or a recorded
	// value outside any open block.
	ErrMalformedLog = errors.New("malformed trace log")
)

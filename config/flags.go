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

package config

import (
	"os"
	"path/filepath"

	"github.com/0xsoniclabs/ppa/sebb"
	"github.com/0xsoniclabs/ppa/tracer"
	"github.com/urfave/cli/v2"
)

var (
	// ConfigFileFlag names an optional YAML file with defaults for every other flag.
	ConfigFileFlag = cli.PathFlag{
		Name:  "config",
		Usage: "YAML file providing values for flags not given on the command line",
	}
	AnalysisFlag = cli.StringFlag{
		Name:  "analysis",
		Usage: "comparison technique: \"instruction-histogram\" or \"sebb\"",
		Value: "sebb",
	}
	TestCasesFlag = cli.PathFlag{
		Name:    "test-cases",
		Aliases: []string{"t"},
		Usage:   "directory whose files are fed as stdin to both programs",
	}
	HeldOutFlag = cli.IntFlag{
		Name:  "held-out",
		Usage: "number of trailing test cases kept out of training for control flow alignment",
		Value: 1,
	}
	InputCutoffFlag = cli.Float64Flag{
		Name:  "input-cutoff",
		Usage: "minimal share of input values an invocation pair must share",
		Value: sebb.DefaultCutoffs().Input,
	}
	OutputCutoffFlag = cli.Float64Flag{
		Name:  "output-cutoff",
		Usage: "minimal share of output values an invocation pair must share",
		Value: sebb.DefaultCutoffs().Output,
	}
	SimilarityCutoffFlag = cli.Float64Flag{
		Name:  "similarity-cutoff",
		Usage: "minimal share of matched invocations for a block pair to match on a test case",
		Value: sebb.DefaultCutoffs().Similarity,
	}
	ThresholdFractionFlag = cli.Float64Flag{
		Name:  "threshold",
		Usage: "share of training cases on which a block pair must match to be confirmed",
		Value: sebb.DefaultThresholdFraction,
	}
	RangePolicyFlag = cli.StringFlag{
		Name:  "range-policy",
		Usage: "block ids to pair: \"max-id\" (up to the largest id) or \"observed\" (up to the number of executed blocks)",
		Value: sebb.RangeMaxID.String(),
	}
	PlaintiffBlocksFlag = cli.Uint64Flag{
		Name:  "plaintiff-blocks",
		Usage: "number of instrumented plaintiff blocks, if known",
	}
	SuspiciousBlocksFlag = cli.Uint64Flag{
		Name:  "suspicious-blocks",
		Usage: "number of instrumented suspicious blocks, if known",
	}
	MaxBlockIDFlag = cli.Uint64Flag{
		Name:  "max-block-id",
		Usage: "largest block id paired; traces with larger ids are rejected",
		Value: sebb.DefaultMaxBlockID,
	}
	TraceFileFlag = cli.PathFlag{
		Name:  "trace-file",
		Usage: "trace buffer file shared with the instrumented programs",
		Value: filepath.Join(os.TempDir(), "ppa_detector_log"),
	}
	TraceBufferSizeFlag = cli.Uint64Flag{
		Name:  "trace-buffer-size",
		Usage: "size of the trace buffer in MiB",
		Value: tracer.DefaultBufferSize >> 20,
	}
	KeepTraceFlag = cli.BoolFlag{
		Name:  "keep-trace",
		Usage: "leave the trace buffer file on disk after the run",
	}
	OutputFlag = cli.PathFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "append the result table to this text file",
	}
	Sqlite3Flag = cli.PathFlag{
		Name:  "sqlite3",
		Usage: "store results in this sqlite3 database",
	}
	XlsxFlag = cli.PathFlag{
		Name:  "xlsx",
		Usage: "save results as an Excel workbook",
	}
	HtmlFlag = cli.PathFlag{
		Name:  "html",
		Usage: "save a heatmap of the block match counts as an HTML page",
	}
	QuietFlag = cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "do not print results to the console",
	}
	ValuesFlag = cli.BoolFlag{
		Name:  "values",
		Usage: "list every invocation with its input and output values",
	}
	ControlFlowFlag = cli.BoolFlag{
		Name:  "control-flow",
		Usage: "print the completion ordered block sequence instead of the per block table",
	}
)

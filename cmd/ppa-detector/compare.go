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

package main

import (
	"fmt"
	"time"

	"github.com/0xsoniclabs/ppa/analysis"
	"github.com/0xsoniclabs/ppa/config"
	"github.com/0xsoniclabs/ppa/harness"
	"github.com/0xsoniclabs/ppa/logger"
	"github.com/0xsoniclabs/ppa/report"
	"github.com/0xsoniclabs/ppa/testcase"
	"github.com/0xsoniclabs/ppa/tracer"
	"github.com/cockroachdb/errors"
	"github.com/op/go-logging"
	"github.com/urfave/cli/v2"
)

// CompareCommand compares a plaintiff and a suspicious program.
var CompareCommand = cli.Command{
	Action:    Compare,
	Name:      "compare",
	Usage:     "compares the behavior of two programs",
	ArgsUsage: "<plaintiff> <suspicious>",
	Flags: []cli.Flag{
		&config.ConfigFileFlag,
		&config.AnalysisFlag,
		&config.TestCasesFlag,
		&config.HeldOutFlag,
		&config.InputCutoffFlag,
		&config.OutputCutoffFlag,
		&config.SimilarityCutoffFlag,
		&config.ThresholdFractionFlag,
		&config.RangePolicyFlag,
		&config.PlaintiffBlocksFlag,
		&config.SuspiciousBlocksFlag,
		&config.MaxBlockIDFlag,
		&config.TraceFileFlag,
		&config.TraceBufferSizeFlag,
		&config.KeepTraceFlag,
		&config.OutputFlag,
		&config.Sqlite3Flag,
		&config.XlsxFlag,
		&config.HtmlFlag,
		&config.QuietFlag,
		&logger.LogLevelFlag,
	},
	Description: `
The compare command requires two arguments:
<plaintiff> <suspicious>

With --analysis sebb both are instrumented executables. Each is run once per
file of --test-cases with the file on stdin and the trace buffer path in
` + tracer.TraceFileEnv + `. The trailing --held-out test cases are aligned
with the block equivalence learned from the others.

With --analysis instruction-histogram both are opcode listings, LLVM IR
modules or ELF binaries (x86-64, arm64) and the similarity of their
instruction histograms is printed.`,
}

// Compare runs the configured analysis and prints its report.
func Compare(ctx *cli.Context) error {
	if ctx.Args().Len() != 2 {
		return errors.New("compare command requires exactly 2 arguments: <plaintiff> <suspicious>")
	}
	cfg, err := config.NewConfig(ctx)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.LogLevel, "Compare")

	pipeline, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}

	start := time.Now()
	r, err := pipeline.Run(ctx.Args().Get(0), ctx.Args().Get(1))
	if err != nil {
		return err
	}
	hours, minutes, seconds := logger.ParseTime(time.Since(start))
	log.Noticef("%v analysis finished in %vh %vm %vs", cfg.Mode, hours, minutes, seconds)

	return printReport(cfg, log, r)
}

func newPipeline(cfg *config.Config, log logger.Logger) (analysis.Pipeline, error) {
	switch cfg.Mode {
	case analysis.ModeHistogram:
		return analysis.NewHistogramPipeline(log), nil
	case analysis.ModeSEBB:
		source, err := testcase.NewDirectorySource(cfg.TestCases)
		if err != nil {
			return nil, err
		}
		buffer := tracer.NewFileBuffer(cfg.TraceFile, int64(cfg.TraceBufferSize), cfg.KeepTrace)
		return analysis.NewSEBBPipeline(log, harness.NewShellRunner(log), source, buffer, cfg.SEBBOptions(), cfg.HeldOut), nil
	default:
		return nil, errors.Newf("unsupported analysis %v", cfg.Mode)
	}
}

func printReport(cfg *config.Config, log logger.Logger, r *analysis.Report) (err error) {
	ps := report.NewPrinters()
	defer func() {
		if e := ps.Close(); e != nil {
			err = errors.Join(err, e)
		}
	}()

	summary := func() string { return report.Summary(r) }
	ps.AddPrinterToConsole(cfg.Quiet, summary)
	ps.AddPrinterToFile(cfg.Output, func() string { return summary() + "\n" })
	if _, err = ps.AddReportToSqlite3(cfg.Sqlite3, r); err != nil {
		return err
	}
	ps.AddPrinterToXlsx(cfg.Xlsx, r)

	if r.SEBB != nil {
		eq := r.SEBB.Equivalence
		title := fmt.Sprintf("%s vs %s", r.Plaintiff, r.Suspicious)
		ps.AddPrinterToHtml(cfg.Html, title, eq)
		ps.AddPrinterToConsole(cfg.Quiet || !log.IsEnabledFor(logging.DEBUG), func() string {
			return report.Matrix(eq) + "\n" + report.Pairs(eq)
		})
	}
	return ps.Print()
}

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

	"github.com/0xsoniclabs/ppa/config"
	"github.com/0xsoniclabs/ppa/logger"
	"github.com/0xsoniclabs/ppa/report"
	"github.com/0xsoniclabs/ppa/tracer"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// DumpCommand prints the contents of a trace file.
var DumpCommand = cli.Command{
	Action:    Dump,
	Name:      "dump",
	Usage:     "decodes a trace file",
	ArgsUsage: "<trace-file>",
	Flags: []cli.Flag{
		&config.ValuesFlag,
		&config.ControlFlowFlag,
		&logger.LogLevelFlag,
	},
	Description: `
The dump command requires one argument:
<trace-file>

It prints the invocations of every block, or with --control-flow the
completion ordered sequence of block ids. Gzip-compressed traces are
accepted.`,
}

func Dump(ctx *cli.Context) (err error) {
	if ctx.Args().Len() != 1 {
		return errors.New("dump command requires exactly 1 argument: <trace-file>")
	}
	cfg, err := config.NewConfig(ctx)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.LogLevel, "Dump")

	path := ctx.Args().Get(0)
	r, err := tracer.NewFileReader(path)
	if err != nil {
		return err
	}
	defer func() {
		if e := r.Close(); e != nil {
			err = errors.Join(err, e)
		}
	}()

	runLog, trace, stats, err := tracer.ParseWithStats(r)
	if err != nil {
		return errors.Wrapf(err, "cannot decode %s", path)
	}
	log.Infof("%s: %d events, depth %d", path, stats.Events, stats.MaxDepth)
	if stats.Unclosed > 0 {
		log.Warningf("%s: %d blocks still open at end of log were dropped", path, stats.Unclosed)
	}

	if cfg.ControlFlow {
		_, err = fmt.Fprintln(ctx.App.Writer, report.ControlFlow(trace, 0))
	} else {
		_, err = fmt.Fprintln(ctx.App.Writer, report.RunLog(runLog, cfg.Values))
	}
	return err
}

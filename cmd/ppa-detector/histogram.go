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

	"github.com/0xsoniclabs/ppa/histogram"
	"github.com/0xsoniclabs/ppa/logger"
	"github.com/0xsoniclabs/ppa/report"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// HistogramCommand prints the opcode histogram of one program.
var HistogramCommand = cli.Command{
	Action:    PrintHistogram,
	Name:      "histogram",
	Usage:     "prints the instruction histogram of a program",
	ArgsUsage: "<program>",
	Flags: []cli.Flag{
		&logger.LogLevelFlag,
	},
}

func PrintHistogram(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return errors.New("histogram command requires exactly 1 argument: <program>")
	}
	path := ctx.Args().Get(0)
	log := logger.NewLogger(ctx.String(logger.LogLevelFlag.Name), "Histogram")

	format, err := histogram.Detect(path)
	if err != nil {
		return err
	}
	h, err := histogram.Load(path)
	if err != nil {
		return err
	}
	log.Debugf("%s read as %v", path, format)

	_, err = fmt.Fprintln(ctx.App.Writer, report.Histogram(h))
	return err
}

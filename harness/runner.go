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

// Package harness executes instrumented programs on test cases.
package harness

import (
	"bytes"
	"os"
	"os/exec"

	"github.com/0xsoniclabs/ppa/logger"
	"github.com/0xsoniclabs/ppa/tracer"
	"github.com/cockroachdb/errors"
)

// Runner executes program with a test case and leaves its trace in buf.
//
//go:generate mockgen -source runner.go -destination runner_mock.go -package harness
type Runner interface {
	Run(program, testCase string, buf tracer.Buffer) error
}

type shellRunner struct {
	log logger.Logger
}

// NewShellRunner returns a Runner starting program as a child process with
// the test case on stdin and the trace location in SEBB_TRACE_FILE.
func NewShellRunner(log logger.Logger) Runner {
	return shellRunner{log: log}
}

func (r shellRunner) Run(program, testCase string, buf tracer.Buffer) error {
	input, err := os.Open(testCase)
	if err != nil {
		return errors.Wrapf(err, "cannot open test case %s", testCase)
	}
	defer input.Close()

	var output bytes.Buffer
	cmd := exec.Command(program)
	cmd.Stdin = input
	cmd.Stdout = &output
	cmd.Stderr = &output
	cmd.Env = append(os.Environ(), tracer.TraceFileEnv+"="+buf.Path())

	err = cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		// instrumented programs may exit non-zero on purpose
		r.log.Warningf("%s exited with code %d on %s", program, exitErr.ExitCode(), testCase)
	case err != nil:
		return errors.Wrapf(err, "cannot run %s", program)
	}
	if output.Len() > 0 {
		r.log.Debugf("%s output on %s:\n%s", program, testCase, output.String())
	}
	return nil
}

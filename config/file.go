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

	"github.com/0xsoniclabs/ppa/logger"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v2"
)

// fileConfig mirrors the flags in a YAML file. Absent keys leave the
// flag value untouched.
type fileConfig struct {
	Analysis  *string `yaml:"analysis"`
	Log       *string `yaml:"log"`
	TestCases *string `yaml:"test-cases"`
	HeldOut   *int    `yaml:"held-out"`
	SEBB      struct {
		InputCutoff       *float64 `yaml:"input-cutoff"`
		OutputCutoff      *float64 `yaml:"output-cutoff"`
		SimilarityCutoff  *float64 `yaml:"similarity-cutoff"`
		ThresholdFraction *float64 `yaml:"threshold"`
		RangePolicy       *string  `yaml:"range-policy"`
		PlaintiffBlocks   *uint64  `yaml:"plaintiff-blocks"`
		SuspiciousBlocks  *uint64  `yaml:"suspicious-blocks"`
		MaxBlockID        *uint64  `yaml:"max-block-id"`
	} `yaml:"sebb"`
	Trace struct {
		File       *string `yaml:"file"`
		BufferSize *uint64 `yaml:"buffer-size"` // MiB
		Keep       *bool   `yaml:"keep"`
	} `yaml:"trace"`
	Output struct {
		Text    *string `yaml:"text"`
		Sqlite3 *string `yaml:"sqlite3"`
		Xlsx    *string `yaml:"xlsx"`
		Html    *string `yaml:"html"`
		Quiet   *bool   `yaml:"quiet"`
	} `yaml:"output"`
}

func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config file %s", path)
	}
	var file fileConfig
	if err = yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config file %s", path)
	}
	return &file, nil
}

func set[T any](isSet func(cli.Flag) bool, flag cli.Flag, dst *T, src *T) {
	if src != nil && !isSet(flag) {
		*dst = *src
	}
}

// applyTo copies file values into cfg for every flag isSet reports as not
// given explicitly.
func (f *fileConfig) applyTo(cfg *Config, isSet func(cli.Flag) bool) {
	set(isSet, &AnalysisFlag, &cfg.Analysis, f.Analysis)
	set(isSet, &logger.LogLevelFlag, &cfg.LogLevel, f.Log)
	set(isSet, &TestCasesFlag, &cfg.TestCases, f.TestCases)
	set(isSet, &HeldOutFlag, &cfg.HeldOut, f.HeldOut)

	set(isSet, &InputCutoffFlag, &cfg.InputCutoff, f.SEBB.InputCutoff)
	set(isSet, &OutputCutoffFlag, &cfg.OutputCutoff, f.SEBB.OutputCutoff)
	set(isSet, &SimilarityCutoffFlag, &cfg.SimilarityCutoff, f.SEBB.SimilarityCutoff)
	set(isSet, &ThresholdFractionFlag, &cfg.ThresholdFraction, f.SEBB.ThresholdFraction)
	set(isSet, &RangePolicyFlag, &cfg.RangePolicy, f.SEBB.RangePolicy)
	set(isSet, &PlaintiffBlocksFlag, &cfg.PlaintiffBlocks, f.SEBB.PlaintiffBlocks)
	set(isSet, &SuspiciousBlocksFlag, &cfg.SuspiciousBlocks, f.SEBB.SuspiciousBlocks)
	set(isSet, &MaxBlockIDFlag, &cfg.MaxBlockID, f.SEBB.MaxBlockID)

	set(isSet, &TraceFileFlag, &cfg.TraceFile, f.Trace.File)
	if f.Trace.BufferSize != nil {
		size := *f.Trace.BufferSize << 20
		set(isSet, &TraceBufferSizeFlag, &cfg.TraceBufferSize, &size)
	}
	set(isSet, &KeepTraceFlag, &cfg.KeepTrace, f.Trace.Keep)

	set(isSet, &OutputFlag, &cfg.Output, f.Output.Text)
	set(isSet, &Sqlite3Flag, &cfg.Sqlite3, f.Output.Sqlite3)
	set(isSet, &XlsxFlag, &cfg.Xlsx, f.Output.Xlsx)
	set(isSet, &HtmlFlag, &cfg.Html, f.Output.Html)
	set(isSet, &QuietFlag, &cfg.Quiet, f.Output.Quiet)
}

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
	"github.com/0xsoniclabs/ppa/analysis"
	"github.com/0xsoniclabs/ppa/logger"
	"github.com/0xsoniclabs/ppa/sebb"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// Config holds the settings of one detector command.
type Config struct {
	AppName     string
	CommandName string
	ConfigFile  string

	LogLevel string
	Analysis string
	Mode     analysis.Mode // parsed Analysis

	TestCases         string
	HeldOut           int
	InputCutoff       float64
	OutputCutoff      float64
	SimilarityCutoff  float64
	ThresholdFraction float64
	RangePolicy       string
	Range             sebb.RangePolicy // parsed RangePolicy
	PlaintiffBlocks   uint64
	SuspiciousBlocks  uint64
	MaxBlockID        uint64

	TraceFile       string
	TraceBufferSize uint64 // in bytes
	KeepTrace       bool

	Output  string
	Sqlite3 string
	Xlsx    string
	Html    string
	Quiet   bool

	Values      bool
	ControlFlow bool
}

// NewConfig creates a Config from the command line and the optional YAML
// file, flags given explicitly take precedence over the file.
func NewConfig(ctx *cli.Context) (*Config, error) {
	cfg := createConfigFromFlags(ctx)
	if cfg.ConfigFile != "" {
		file, err := loadFile(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		file.applyTo(cfg, func(f cli.Flag) bool { return ctx.IsSet(f.Names()[0]) })
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// createConfigFromFlags returns Config instance with user specified values or the default ones
func createConfigFromFlags(ctx *cli.Context) *Config {
	cfg := &Config{
		AppName:     ctx.App.HelpName,
		CommandName: ctx.Command.Name,

		ConfigFile:        getFlagValue(ctx, ConfigFileFlag).(string),
		LogLevel:          getFlagValue(ctx, logger.LogLevelFlag).(string),
		Analysis:          getFlagValue(ctx, AnalysisFlag).(string),
		TestCases:         getFlagValue(ctx, TestCasesFlag).(string),
		HeldOut:           getFlagValue(ctx, HeldOutFlag).(int),
		InputCutoff:       getFlagValue(ctx, InputCutoffFlag).(float64),
		OutputCutoff:      getFlagValue(ctx, OutputCutoffFlag).(float64),
		SimilarityCutoff:  getFlagValue(ctx, SimilarityCutoffFlag).(float64),
		ThresholdFraction: getFlagValue(ctx, ThresholdFractionFlag).(float64),
		RangePolicy:       getFlagValue(ctx, RangePolicyFlag).(string),
		PlaintiffBlocks:   getFlagValue(ctx, PlaintiffBlocksFlag).(uint64),
		SuspiciousBlocks:  getFlagValue(ctx, SuspiciousBlocksFlag).(uint64),
		MaxBlockID:        getFlagValue(ctx, MaxBlockIDFlag).(uint64),
		TraceFile:         getFlagValue(ctx, TraceFileFlag).(string),
		TraceBufferSize:   getFlagValue(ctx, TraceBufferSizeFlag).(uint64),
		KeepTrace:         getFlagValue(ctx, KeepTraceFlag).(bool),
		Output:            getFlagValue(ctx, OutputFlag).(string),
		Sqlite3:           getFlagValue(ctx, Sqlite3Flag).(string),
		Xlsx:              getFlagValue(ctx, XlsxFlag).(string),
		Html:              getFlagValue(ctx, HtmlFlag).(string),
		Quiet:             getFlagValue(ctx, QuietFlag).(bool),
		Values:            getFlagValue(ctx, ValuesFlag).(bool),
		ControlFlow:       getFlagValue(ctx, ControlFlowFlag).(bool),
	}
	return cfg
}

// getFlagValue returns value specified by user if flag is present in cli context, otherwise return default flag value
func getFlagValue(ctx *cli.Context, flag interface{}) interface{} {
	cmdFlags := ctx.Command.Flags
	for _, cmdFlag := range cmdFlags {
		switch f := flag.(type) {
		case cli.IntFlag:
			if cmdFlag.Names()[0] == f.Name {
				return ctx.Int(f.Name)
			}
		case cli.Uint64Flag:
			if cmdFlag.Names()[0] == f.Name {
				if f.Name == TraceBufferSizeFlag.Name {
					return ctx.Uint64(f.Name) << 20
				}
				return ctx.Uint64(f.Name)
			}
		case cli.Float64Flag:
			if cmdFlag.Names()[0] == f.Name {
				return ctx.Float64(f.Name)
			}
		case cli.StringFlag:
			if cmdFlag.Names()[0] == f.Name {
				return ctx.String(f.Name)
			}
		case cli.PathFlag:
			if cmdFlag.Names()[0] == f.Name {
				return ctx.Path(f.Name)
			}
		case cli.BoolFlag:
			if cmdFlag.Names()[0] == f.Name {
				return ctx.Bool(f.Name)
			}
		}
	}

	// If flag not found, return the default value of the flag
	switch f := flag.(type) {
	case cli.IntFlag:
		return f.Value
	case cli.Uint64Flag:
		if f.Name == TraceBufferSizeFlag.Name {
			return f.Value << 20
		}
		return f.Value
	case cli.Float64Flag:
		return f.Value
	case cli.StringFlag:
		return f.Value
	case cli.PathFlag:
		return f.Value
	case cli.BoolFlag:
		return f.Value
	}

	return nil
}

// Validate checks the settings and parses the enumerated ones.
func (cfg *Config) Validate() error {
	mode, err := analysis.ParseMode(cfg.Analysis)
	if err != nil {
		return err
	}
	cfg.Mode = mode

	if mode == analysis.ModeSEBB && cfg.CommandName == "compare" && cfg.TestCases == "" {
		return errors.Newf("sebb analysis requires --%s", TestCasesFlag.Name)
	}
	if cfg.HeldOut < 1 {
		return errors.Newf("--%s must be at least 1, got %d", HeldOutFlag.Name, cfg.HeldOut)
	}
	for _, c := range []struct {
		name  string
		value float64
	}{
		{InputCutoffFlag.Name, cfg.InputCutoff},
		{OutputCutoffFlag.Name, cfg.OutputCutoff},
		{SimilarityCutoffFlag.Name, cfg.SimilarityCutoff},
	} {
		if c.value < 0 || c.value > 1 {
			return errors.Newf("--%s must be within [0, 1], got %v", c.name, c.value)
		}
	}
	if cfg.ThresholdFraction <= 0 || cfg.ThresholdFraction > 1 {
		return errors.Newf("--%s must be within (0, 1], got %v", ThresholdFractionFlag.Name, cfg.ThresholdFraction)
	}

	cfg.Range, err = sebb.ParseRangePolicy(cfg.RangePolicy)
	if err != nil {
		return err
	}
	if cfg.MaxBlockID == 0 {
		return errors.Newf("--%s must be positive", MaxBlockIDFlag.Name)
	}
	if cfg.TraceBufferSize == 0 {
		return errors.Newf("--%s must be positive", TraceBufferSizeFlag.Name)
	}
	return nil
}

// SEBBOptions returns the aggregator settings.
func (cfg *Config) SEBBOptions() sebb.Options {
	return sebb.Options{
		Cutoffs: sebb.Cutoffs{
			Input:      cfg.InputCutoff,
			Output:     cfg.OutputCutoff,
			Similarity: cfg.SimilarityCutoff,
		},
		ThresholdFraction: cfg.ThresholdFraction,
		RangePolicy:       cfg.Range,
		PlaintiffBlocks:   cfg.PlaintiffBlocks,
		SuspiciousBlocks:  cfg.SuspiciousBlocks,
		MaxBlockID:        cfg.MaxBlockID,
	}
}

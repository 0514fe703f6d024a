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

package analysis

import (
	"github.com/0xsoniclabs/ppa/histogram"
	"github.com/0xsoniclabs/ppa/logger"
	"github.com/cockroachdb/errors"
)

// HistogramPipeline compares the opcode histograms of two programs.
type HistogramPipeline struct {
	log  logger.Logger
	load func(path string) (histogram.Histogram, error)
}

func NewHistogramPipeline(log logger.Logger) *HistogramPipeline {
	return &HistogramPipeline{log: log, load: histogram.Load}
}

func (p *HistogramPipeline) Run(plaintiff, suspicious string) (*Report, error) {
	ph, err := p.load(plaintiff)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load plaintiff %s", plaintiff)
	}
	sh, err := p.load(suspicious)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load suspicious %s", suspicious)
	}
	p.log.Infof("plaintiff: %v instructions, %d opcodes; suspicious: %v instructions, %d opcodes",
		ph.Total(), len(ph), sh.Total(), len(sh))

	score, err := histogram.Compare(ph, sh)
	if err != nil {
		return nil, err
	}
	return &Report{
		Mode:       ModeHistogram,
		Plaintiff:  plaintiff,
		Suspicious: suspicious,
		Histogram: &HistogramReport{
			Score:                  score,
			PlaintiffInstructions:  ph.Total(),
			SuspiciousInstructions: sh.Total(),
		},
	}, nil
}

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
	"time"

	"github.com/0xsoniclabs/ppa/align"
	"github.com/0xsoniclabs/ppa/harness"
	"github.com/0xsoniclabs/ppa/logger"
	"github.com/0xsoniclabs/ppa/sebb"
	"github.com/0xsoniclabs/ppa/testcase"
	"github.com/0xsoniclabs/ppa/tracer"
	"github.com/cockroachdb/errors"
	"github.com/op/go-logging"
)

// SEBBPipeline runs both programs on every test case. Training cases feed
// the equivalence aggregator, held-out cases are aligned under the
// confirmed equivalence.
type SEBBPipeline struct {
	log     logger.Logger
	runner  harness.Runner
	source  testcase.Source
	buffer  tracer.Buffer
	opts    sebb.Options
	heldOut int
}

func NewSEBBPipeline(log logger.Logger, runner harness.Runner, source testcase.Source, buffer tracer.Buffer, opts sebb.Options, heldOut int) *SEBBPipeline {
	return &SEBBPipeline{
		log:     log,
		runner:  runner,
		source:  source,
		buffer:  buffer,
		opts:    opts,
		heldOut: heldOut,
	}
}

func (p *SEBBPipeline) Run(plaintiff, suspicious string) (*Report, error) {
	start := time.Now()
	training, held, err := testcase.Split(p.source, p.heldOut)
	if err != nil {
		return nil, err
	}

	agg := sebb.NewAggregator(p.opts)
	for n, i := range training {
		tc := p.source.Get(i)
		p.log.Noticef("Training case %d/%d: %s", n+1, len(training), tc)
		pLog, _, err := p.trace(plaintiff, tc)
		if err != nil {
			return nil, err
		}
		sLog, _, err := p.trace(suspicious, tc)
		if err != nil {
			return nil, err
		}
		grid, err := agg.AddWithGrid(pLog, sLog)
		if err != nil {
			return nil, errors.Wrapf(err, "test case %s", tc)
		}
		if p.log.IsEnabledFor(logging.DEBUG) {
			p.log.Debugf("Block matches on %s:\n%v", tc, grid)
		}
	}

	eq, err := agg.Finalize()
	if err != nil {
		return nil, err
	}
	res := &SEBBReport{
		TrainingCases: agg.Cases(),
		Equivalence:   eq,
		Confirmed:     eq.Pairs(),
	}
	p.log.Noticef("%d block pairs confirmed equivalent over %d training cases", len(res.Confirmed), res.TrainingCases)

	for _, i := range held {
		tc := p.source.Get(i)
		p.log.Noticef("Held-out case: %s", tc)
		_, pFlow, err := p.trace(plaintiff, tc)
		if err != nil {
			return nil, err
		}
		_, sFlow, err := p.trace(suspicious, tc)
		if err != nil {
			return nil, err
		}
		res.Cases = append(res.Cases, CaseResult{
			TestCase: tc,
			Result:   align.LCS(pFlow, sFlow, eq.Confirmed),
		})
	}

	hours, minutes, seconds := logger.ParseTime(time.Since(start))
	p.log.Infof("Comparison finished in %vh %vm %vs", hours, minutes, seconds)
	return &Report{
		Mode:       ModeSEBB,
		Plaintiff:  plaintiff,
		Suspicious: suspicious,
		SEBB:       res,
	}, nil
}

// trace runs program on tc and decodes the trace it left in the buffer.
func (p *SEBBPipeline) trace(program, tc string) (_ *tracer.RunLog, _ tracer.ControlFlowTraceLog, err error) {
	if err = p.buffer.Open(); err != nil {
		return nil, nil, err
	}
	defer func() {
		if rerr := p.buffer.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()

	if err = p.runner.Run(program, tc, p.buffer); err != nil {
		return nil, nil, err
	}
	if err = p.buffer.Sync(); err != nil {
		return nil, nil, errors.Wrap(err, "cannot sync trace buffer")
	}

	reader, err := p.buffer.Reader()
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	log, flow, stats, err := tracer.ParseWithStats(reader)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "trace of %s on %s", program, tc)
	}
	if stats.Unclosed > 0 {
		p.log.Debugf("%d blocks of %s still open at end of trace", stats.Unclosed, program)
	}
	p.log.Debugf("%s: %d events, %d blocks, max depth %d", program, stats.Events, log.NumBlocks(), stats.MaxDepth)
	return log, flow, nil
}

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
	"testing"

	"github.com/0xsoniclabs/ppa/align"
	"github.com/0xsoniclabs/ppa/harness"
	"github.com/0xsoniclabs/ppa/logger"
	"github.com/0xsoniclabs/ppa/sebb"
	"github.com/0xsoniclabs/ppa/testcase"
	"github.com/0xsoniclabs/ppa/tracer"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// block is one invocation emitted by a fake program.
type block struct {
	id      uint64
	inputs  []uint64
	outputs []uint64
}

// program fakes an instrumented binary writing into a memory buffer.
func program(blocks func(tc string) []block) func(string, string, tracer.Buffer) error {
	return func(_ string, tc string, buf tracer.Buffer) error {
		w := buf.(*tracer.MemoryBuffer).Writer()
		for _, b := range blocks(tc) {
			if err := w.EnterBlock(b.id); err != nil {
				return err
			}
			for _, v := range b.inputs {
				if err := w.RecordInput(b.id, v); err != nil {
					return err
				}
			}
			for _, v := range b.outputs {
				if err := w.RecordOutput(b.id, v); err != nil {
					return err
				}
			}
			if err := w.ExitBlock(b.id); err != nil {
				return err
			}
		}
		return w.Close()
	}
}

var testCaseValues = map[string]uint64{"a": 10, "b": 20, "c": 30}

// the suspicious program swaps the ids and order of the plaintiff's blocks
var (
	plaintiffProgram = program(func(tc string) []block {
		v := testCaseValues[tc]
		return []block{
			{1, []uint64{v}, []uint64{v + 1}},
			{2, []uint64{7}, []uint64{8}},
		}
	})
	suspiciousProgram = program(func(tc string) []block {
		v := testCaseValues[tc]
		return []block{
			{2, []uint64{v}, []uint64{v + 1}},
			{1, []uint64{7}, []uint64{8}},
		}
	})
)

func newSource(ctrl *gomock.Controller, cases ...string) *testcase.MockSource {
	src := testcase.NewMockSource(ctrl)
	src.EXPECT().Count().Return(len(cases)).AnyTimes()
	for i, c := range cases {
		src.EXPECT().Get(i).Return(c).AnyTimes()
	}
	return src
}

func TestSEBBPipeline_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := harness.NewMockRunner(ctrl)
	buf := tracer.NewMemoryBuffer()
	src := newSource(ctrl, "a", "b", "c")

	runner.EXPECT().Run("p", gomock.Any(), buf).DoAndReturn(plaintiffProgram).Times(3)
	runner.EXPECT().Run("s", gomock.Any(), buf).DoAndReturn(suspiciousProgram).Times(3)

	p := NewSEBBPipeline(logger.NewLogger("debug", "Test"), runner, src, buf, sebb.DefaultOptions(), 1)
	report, err := p.Run("p", "s")
	require.NoError(t, err)

	assert.Equal(t, ModeSEBB, report.Mode)
	require.NotNil(t, report.SEBB)
	assert.Equal(t, 2, report.SEBB.TrainingCases)
	assert.Equal(t, []sebb.Pair{{Plaintiff: 1, Suspicious: 2}, {Plaintiff: 2, Suspicious: 1}}, report.SEBB.Confirmed)
	require.Len(t, report.SEBB.Cases, 1)
	assert.Equal(t, "c", report.SEBB.Cases[0].TestCase)
	assert.Equal(t, align.Result{PlaintiffLen: 2, SuspiciousLen: 2, Length: 2}, report.SEBB.Cases[0].Result)
}

func TestSEBBPipeline_TwoHeldOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := harness.NewMockRunner(ctrl)
	buf := tracer.NewMemoryBuffer()
	src := newSource(ctrl, "a", "b", "c")

	runner.EXPECT().Run("p", gomock.Any(), buf).DoAndReturn(plaintiffProgram).Times(3)
	runner.EXPECT().Run("s", gomock.Any(), buf).DoAndReturn(plaintiffProgram).Times(3)

	p := NewSEBBPipeline(logger.NewLogger("critical", "Test"), runner, src, buf, sebb.DefaultOptions(), 2)
	report, err := p.Run("p", "s")
	require.NoError(t, err)
	assert.Equal(t, 1, report.SEBB.TrainingCases)
	require.Len(t, report.SEBB.Cases, 2)
	for _, c := range report.SEBB.Cases {
		assert.Equal(t, 2, c.Length)
		assert.Equal(t, 1.0, c.Similarity())
	}
}

func TestSEBBPipeline_RunnerErrorReleasesBuffer(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := harness.NewMockRunner(ctrl)
	buf := tracer.NewMockBuffer(ctrl)
	src := newSource(ctrl, "a", "b")
	failure := errors.New("exec failed")

	gomock.InOrder(
		buf.EXPECT().Open().Return(nil),
		runner.EXPECT().Run("p", "a", buf).Return(failure),
		buf.EXPECT().Release().Return(nil),
	)

	p := NewSEBBPipeline(logger.NewLogger("critical", "Test"), runner, src, buf, sebb.DefaultOptions(), 1)
	_, err := p.Run("p", "s")
	assert.ErrorIs(t, err, failure)
}

func TestSEBBPipeline_ReleaseErrorIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := harness.NewMockRunner(ctrl)
	buf := tracer.NewMockBuffer(ctrl)
	src := newSource(ctrl, "a", "b")

	buf.EXPECT().Open().Return(nil)
	runner.EXPECT().Run("p", "a", buf).Return(nil)
	buf.EXPECT().Sync().Return(errors.New("disk full"))
	buf.EXPECT().Release().Return(errors.New("remove failed"))

	p := NewSEBBPipeline(logger.NewLogger("critical", "Test"), runner, src, buf, sebb.DefaultOptions(), 1)
	_, err := p.Run("p", "s")
	assert.ErrorContains(t, err, "disk full")
	assert.ErrorContains(t, err, "remove failed")
}

func TestSEBBPipeline_MalformedTrace(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := harness.NewMockRunner(ctrl)
	buf := tracer.NewMemoryBuffer()
	src := newSource(ctrl, "a", "b")

	runner.EXPECT().Run("p", "a", buf).DoAndReturn(func(_, _ string, b tracer.Buffer) error {
		w := b.(*tracer.MemoryBuffer).Writer()
		if err := w.ExitBlock(1); err != nil {
			return err
		}
		return w.Close()
	})

	p := NewSEBBPipeline(logger.NewLogger("critical", "Test"), runner, src, buf, sebb.DefaultOptions(), 1)
	_, err := p.Run("p", "s")
	assert.ErrorIs(t, err, tracer.ErrMalformedLog)
	assert.ErrorContains(t, err, "trace of p on a")
}

func TestSEBBPipeline_NotEnoughTestCases(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := harness.NewMockRunner(ctrl)
	src := newSource(ctrl, "a")

	p := NewSEBBPipeline(logger.NewLogger("critical", "Test"), runner, src, tracer.NewMemoryBuffer(), sebb.DefaultOptions(), 1)
	_, err := p.Run("p", "s")
	assert.ErrorIs(t, err, testcase.ErrNoTestCases)
}

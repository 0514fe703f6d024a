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

// Package testcase provides the inputs the compared programs are run on.
package testcase

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// ErrNoTestCases is returned when a source holds no test cases.
var ErrNoTestCases = errors.New("no test cases")

// Source enumerates test case files.
//
//go:generate mockgen -source source.go -destination source_mock.go -package testcase
type Source interface {
	// Count returns the number of test cases.
	Count() int
	// Get returns the path of test case i.
	Get(i int) string
}

// DirectorySource serves every regular file of a directory in name order.
type DirectorySource struct {
	files []string
}

// NewDirectorySource lists the test cases in dir.
func NewDirectorySource(dir string) (*DirectorySource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read test case directory %s", dir)
	}
	src := &DirectorySource{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		src.files = append(src.files, filepath.Join(dir, entry.Name()))
	}
	if len(src.files) == 0 {
		return nil, errors.Wrapf(ErrNoTestCases, "directory %s", dir)
	}
	return src, nil
}

func (s *DirectorySource) Count() int {
	return len(s.files)
}

func (s *DirectorySource) Get(i int) string {
	return s.files[i]
}

// Split divides the indices of src into training cases and the last
// heldOut cases kept for control flow alignment.
func Split(src Source, heldOut int) (training []int, held []int, err error) {
	count := src.Count()
	if count == 0 {
		return nil, nil, ErrNoTestCases
	}
	if heldOut < 1 {
		return nil, nil, errors.Newf("at least one held-out test case is required, got %d", heldOut)
	}
	if heldOut >= count {
		return nil, nil, errors.Wrapf(ErrNoTestCases, "%d held-out of %d test cases leaves none for training", heldOut, count)
	}
	for i := 0; i < count; i++ {
		if i < count-heldOut {
			training = append(training, i)
		} else {
			held = append(held, i)
		}
	}
	return training, held, nil
}

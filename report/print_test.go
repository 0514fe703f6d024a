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

package report

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPrinters_PrintAndClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := NewMockPrinter(ctrl)
	second := NewMockPrinter(ctrl)
	ps := NewPrinters().AddPrinter(first).AddPrinter(second)

	failure := errors.New("print failed")
	first.EXPECT().Print().Return(failure)
	second.EXPECT().Print().Return(nil)
	assert.ErrorContains(t, ps.Print(), "print failed")

	first.EXPECT().Close().Return(nil)
	second.EXPECT().Close().Return(nil)
	assert.NoError(t, ps.Close())
}

func TestPrinters_AddPrinterToConsole(t *testing.T) {
	ps := NewPrinters().AddPrinterToConsole(false, func() string { return "x" })
	assert.Len(t, ps.printers, 1)

	ps = NewPrinters().AddPrinterToConsole(true, func() string { return "x" })
	assert.Empty(t, ps.printers)
}

func TestPrinterToWriter_Print(t *testing.T) {
	var buf bytes.Buffer
	ps := NewPrinters().AddPrinterToWriter(&buf, func() string { return "Hello" })
	require.NoError(t, ps.Print())
	assert.Equal(t, "Hello\n", buf.String())
}

func TestPrinterToFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	ps := NewPrinters().
		AddPrinterToFile(path, func() string { return "a" }).
		AddPrinterToFile("", func() string { return "ignored" }).
		AddPrinterToFile(path, func() string { return "b" })
	require.Len(t, ps.printers, 2)
	require.NoError(t, ps.Print())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(data))
}

func TestPrinterToFile_Error(t *testing.T) {
	p := NewPrinterToFile(filepath.Join(t.TempDir(), "missing", "out.txt"), func() string { return "" })
	assert.ErrorContains(t, p.Print(), "unable to print to file")
}

func newMockDb(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mockDb, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mockDb
}

func TestPrinterToDb_Print(t *testing.T) {
	db, mockDb := newMockDb(t)
	p := &PrinterToDb{
		db:     db,
		insert: histogramInsert,
		f: func() [][]any {
			return [][]any{{"p", "s", 4.0, 2.0, 100}}
		},
	}

	mockDb.ExpectBegin()
	mockDb.ExpectPrepare(histogramInsert).WillBeClosed()
	mockDb.ExpectExec(histogramInsert).WithArgs("p", "s", 4.0, 2.0, 100).WillReturnResult(sqlmock.NewResult(1, 1))
	mockDb.ExpectCommit()
	assert.NoError(t, p.Print())

	assert.NoError(t, mockDb.ExpectationsWereMet())
}

func TestPrinterToDb_PrintErrors(t *testing.T) {
	db, mockDb := newMockDb(t)
	p := &PrinterToDb{
		db:     db,
		insert: histogramInsert,
		f: func() [][]any {
			return [][]any{{"p", "s", 4.0, 2.0, 100}}
		},
	}
	mockErr := errors.New("mock error")

	// begin
	mockDb.ExpectBegin().WillReturnError(mockErr)
	assert.ErrorContains(t, p.Print(), "unable to begin a transaction")

	// prepare
	mockDb.ExpectBegin()
	mockDb.ExpectPrepare(histogramInsert).WillReturnError(mockErr)
	mockDb.ExpectRollback()
	assert.ErrorContains(t, p.Print(), "unable to prepare statement")

	// exec
	mockDb.ExpectBegin()
	mockDb.ExpectPrepare(histogramInsert)
	mockDb.ExpectExec(histogramInsert).WillReturnError(mockErr)
	mockDb.ExpectRollback()
	assert.ErrorContains(t, p.Print(), "mock error")

	// commit
	mockDb.ExpectBegin()
	mockDb.ExpectPrepare(histogramInsert)
	mockDb.ExpectExec(histogramInsert).WillReturnResult(sqlmock.NewResult(1, 1))
	mockDb.ExpectCommit().WillReturnError(mockErr)
	assert.ErrorIs(t, p.Print(), mockErr)

	assert.NoError(t, mockDb.ExpectationsWereMet())
}

func TestPrinterToDb_Close(t *testing.T) {
	db, mockDb := newMockDb(t)
	p := &PrinterToDb{db: db}
	mockDb.ExpectClose()
	assert.NoError(t, p.Close())
	assert.NoError(t, mockDb.ExpectationsWereMet())
}

func TestNewPrinterToSqlite3(t *testing.T) {
	conn := filepath.Join(t.TempDir(), "results.db")
	p, err := NewPrinterToSqlite3(conn, histogramCreate, histogramInsert, func() [][]any {
		return [][]any{{"p", "s", 4.0, 2.0, 100}, {"p", "t", 4.0, 3.0, 50}}
	})
	require.NoError(t, err)
	require.NoError(t, p.Print())
	require.NoError(t, p.Close())

	db, err := sql.Open("sqlite3", conn)
	require.NoError(t, err)
	defer db.Close()
	var count, sum int
	require.NoError(t, db.QueryRow("SELECT COUNT(*), SUM(score) FROM histogram").Scan(&count, &sum))
	assert.Equal(t, 2, count)
	assert.Equal(t, 150, sum)

	_, err = NewPrinterToSqlite3(":memory:", "asfd;asdf", "", nil)
	assert.ErrorContains(t, err, "failed to create table")
}

func TestPrinters_AddPrinterToSqlite3(t *testing.T) {
	ps, err := NewPrinters().AddPrinterToSqlite3("", histogramCreate, histogramInsert, nil)
	require.NoError(t, err)
	assert.Empty(t, ps.printers)

	ps, err = NewPrinters().AddPrinterToSqlite3(":memory:", histogramCreate, histogramInsert, nil)
	require.NoError(t, err)
	assert.Len(t, ps.printers, 1)
	assert.NoError(t, ps.Close())
}

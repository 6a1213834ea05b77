// ABOUTME: Failure-path tests for the upsert writer using go-sqlmock.
// ABOUTME: Every begin, exec, or commit failure must surface as a WriteError.
package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/runlog/internal/models"
)

var errLocked = errors.New("database is locked")

func setupMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewWithDB(conn), mock
}

func TestUpsertRunsBeginFails(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin().WillReturnError(errLocked)

	_, err := db.UpsertRuns(context.Background(), []*models.Activity{sampleRun(1, "2024-01-10", 6)})

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "upsert runs", we.Op)
	assert.ErrorIs(t, err, errLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRunsExecFailsRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO runs"))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnError(errLocked)
	mock.ExpectRollback()

	runs := []*models.Activity{sampleRun(1, "2024-01-10", 6), sampleRun(2, "2024-01-11", 6)}
	n, err := db.UpsertRuns(context.Background(), runs)

	assert.Zero(t, n)
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Contains(t, err.Error(), "run 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSleepCommitFails(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO sleep"))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errLocked)

	_, err := db.UpsertSleep(context.Background(), []*models.Recovery{sampleSleep("2024-01-10", 80)})

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "upsert sleep", we.Op)
	assert.ErrorIs(t, err, errLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSleepPrepareFails(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO sleep")).WillReturnError(errLocked)
	mock.ExpectRollback()

	_, err := db.UpsertSleep(context.Background(), []*models.Recovery{sampleSleep("2024-01-10", 80)})

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertStatementsReplaceEveryColumn(t *testing.T) {
	for _, c := range runColumns[1:] {
		assert.Contains(t, upsertRunSQL, c+" = excluded."+c)
	}
	for _, c := range sleepColumns[1:] {
		assert.Contains(t, upsertSleepSQL, c+" = excluded."+c)
	}
	assert.Contains(t, upsertRunSQL, "ON CONFLICT(id)")
	assert.Contains(t, upsertSleepSQL, "ON CONFLICT(date)")
	assert.Len(t, runArgs(sampleRun(1, "2024-01-10", 6)), len(runColumns))
}

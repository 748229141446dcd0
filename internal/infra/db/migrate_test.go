package db

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUp_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, stmt := range schema {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	assert.NoError(t, MigrateUp(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_StopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE SEQUENCE IF NOT EXISTS news_feed_seq").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS news_articles").
		WillReturnError(sql.ErrConnDone)

	err = MigrateUp(context.Background(), db)
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateDown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("DROP TABLE IF EXISTS feed_remote_keys").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE IF EXISTS news_sources").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE IF EXISTS news_articles").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP SEQUENCE IF EXISTS news_feed_seq").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, MigrateDown(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Jomes01/Kioku/internal/core/storage"
	"github.com/stretchr/testify/require"
)

func TestAdapter_Get(t *testing.T) {
	tests := []struct {
		name       string
		mockResult func(mock sqlmock.Sqlmock)
		assertions func(t *testing.T, value []byte, err error)
	}{
		{
			name: "returns stored value",
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(queryGetBlob)).
					WithArgs("@kioku_events").
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"2024-03-15":[]}`)))
			},
			assertions: func(t *testing.T, value []byte, err error) {
				require.NoError(t, err)
				require.Equal(t, `{"2024-03-15":[]}`, string(value))
			},
		},
		{
			name: "missing row maps to ErrNotFound",
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(queryGetBlob)).
					WithArgs("@kioku_events").
					WillReturnRows(sqlmock.NewRows([]string{"value"}))
			},
			assertions: func(t *testing.T, value []byte, err error) {
				require.ErrorIs(t, err, storage.ErrNotFound)
				require.Nil(t, value)
			},
		},
		{
			name: "query error is wrapped",
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(queryGetBlob)).
					WithArgs("@kioku_events").
					WillReturnError(errors.New("connection reset"))
			},
			assertions: func(t *testing.T, value []byte, err error) {
				require.ErrorContains(t, err, "failed to get blob")
				require.NotErrorIs(t, err, storage.ErrNotFound)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter, mock, db := newMockAdapter(t)
			defer db.Close()

			tc.mockResult(mock)

			value, err := adapter.Get(context.Background(), "@kioku_events")
			tc.assertions(t, value, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdapter_Set(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(querySetBlob)).
		WithArgs("@kioku_events", []byte(`{}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, adapter.Set(context.Background(), "@kioku_events", []byte(`{}`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_SetWrapsExecError(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	execErr := errors.New("disk full")
	mock.ExpectExec(regexp.QuoteMeta(querySetBlob)).
		WithArgs("@kioku_events", sqlmock.AnyArg()).
		WillReturnError(execErr)

	err := adapter.Set(context.Background(), "@kioku_events", []byte(`{}`))
	require.ErrorIs(t, err, execErr)
	require.ErrorContains(t, err, "failed to set blob")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewAdapter_RequiresBlobTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryBlobTableExists)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err = NewAdapter(db)
	require.ErrorContains(t, err, "blobs table does not exist")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewAdapter_PreparesStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryBlobTableExists)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectPrepare(regexp.QuoteMeta(queryGetBlob))
	mock.ExpectPrepare(regexp.QuoteMeta(querySetBlob))

	adapter, err := NewAdapter(db)
	require.NoError(t, err)
	require.NotNil(t, adapter.stmtGet)
	require.NotNil(t, adapter.stmtSet)
	require.Same(t, db, adapter.DB())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_CloseReturnsDBCloseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	dbCloseErr := errors.New("db close failed")

	mock.ExpectPrepare(regexp.QuoteMeta(queryGetBlob)).WillBeClosed()
	stmtGet, err := db.Prepare(queryGetBlob)
	require.NoError(t, err)

	mock.ExpectPrepare(regexp.QuoteMeta(querySetBlob)).WillBeClosed()
	stmtSet, err := db.Prepare(querySetBlob)
	require.NoError(t, err)

	mock.ExpectClose().WillReturnError(dbCloseErr)

	adapter := &Adapter{
		db:      db,
		stmtGet: stmtGet,
		stmtSet: stmtSet,
	}

	err = adapter.Close()
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to close database")
	require.ErrorIs(t, err, dbCloseErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	adapter := &Adapter{
		db:      db,
		stmtGet: mustPrepareStmt(t, db, mock, queryGetBlob),
		stmtSet: mustPrepareStmt(t, db, mock, querySetBlob),
	}

	return adapter, mock, db
}

func mustPrepareStmt(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock, query string) *sql.Stmt {
	t.Helper()

	mock.ExpectPrepare(regexp.QuoteMeta(query))
	stmt, err := db.Prepare(query)
	require.NoError(t, err)

	return stmt
}

func TestAdapter_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	pingErr := errors.New("connection refused")
	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(pingErr)

	adapter := &Adapter{db: db}
	require.NoError(t, adapter.Ping(context.Background()))
	require.ErrorIs(t, adapter.Ping(context.Background()), pingErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

package keyvalue

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/prodauth/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE kv (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "auth_token", "abc.def.ghi"))

	v, ok, err := r.Get(ctx, "auth_token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc.def.ghi", v)
}

func TestGet_NotExists(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, ok, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, v)
}

func TestGet_EmptyValueIsPresent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", ""))
	_, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSet_UpsertOverwritesValue(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", "old"))
	require.NoError(t, r.Set(ctx, "k", "new"))

	v, _, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "new", v)
}

func TestList_ReturnsAllPairs(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	before := time.Now().Add(-time.Minute)

	require.NoError(t, r.Set(ctx, "a", "1"))
	require.NoError(t, r.Set(ctx, "b", "2"))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
	assert.Equal(t, "1", m["a"].Value)
	assert.Equal(t, "2", m["b"].Value)
	assert.True(t, m["a"].UpdatedAt.After(before))
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", "1"))
	require.NoError(t, r.Delete(ctx, "x"))

	_, ok, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestClear_RemovesAllKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", "1"))
	require.NoError(t, r.Set(ctx, "b", "2"))
	require.NoError(t, r.Clear(ctx))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestRepository_InsideTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := NewSQLiteRepository(tx)
		if err := r.Set(ctx, "a", "1"); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	_, ok, err := NewSQLiteRepository(db).Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok, "rolled back write must not be visible")
}

func TestDBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	_, _, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get kv[k]")

	err = r.Set(ctx, "k", "v")
	require.ErrorContains(t, err, "failed to set kv[k]")

	err = r.Delete(ctx, "k")
	require.ErrorContains(t, err, "failed to delete kv[k]")

	err = r.Clear(ctx)
	require.ErrorContains(t, err, "failed to clear kv")

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list kv")
}

func TestList_ScanErrorWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).
		AddRow("a", "1", "not a timestamp")
	mock.ExpectQuery(`SELECT key, value, updated_at FROM kv`).WillReturnRows(rows)

	_, err = NewSQLiteRepository(db).List(context.Background())
	require.ErrorContains(t, err, "failed to scan kv row")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_RowsErrWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).
		AddRow("a", "1", time.Now()).
		RowError(0, errors.New("disk I/O error"))
	mock.ExpectQuery(`SELECT key, value, updated_at FROM kv`).WillReturnRows(rows)

	_, err = NewSQLiteRepository(db).List(context.Background())
	require.ErrorContains(t, err, "failed to iterate kv rows")
	require.NoError(t, mock.ExpectationsWereMet())
}

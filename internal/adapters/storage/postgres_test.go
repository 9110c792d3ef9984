package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthmarket/internal/infrastructure/clients/postgres"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(postgres.NewClientFromDB(db)), mock
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[{"id":1}]`))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "value" FROM "kv_store" WHERE ("key" = $1)`)).
		WithArgs("doctors").
		WillReturnRows(rows)

	value, ok, err := store.Get(context.Background(), "doctors")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":1}]`, string(value))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "value" FROM "kv_store"`)).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, ok, err := store.Get(context.Background(), "users")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Set(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "kv_store"`)).
		WithArgs("medicines", sqlmock.AnyArg(), `[]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Set(context.Background(), "medicines", []byte(`[]`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "kv_store"`)).
		WillReturnError(errors.New("connection reset"))

	err := store.Set(context.Background(), "medicines", []byte(`[]`))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "kv_store" WHERE ("key" = $1)`)).
		WithArgs("wishlist_3").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), "wishlist_3"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS kv_store`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

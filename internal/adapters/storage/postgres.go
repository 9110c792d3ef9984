package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/infrastructure/clients/postgres"
)

const kvTable = "kv_store"

// CreateTableSQL creates the backing table
const CreateTableSQL = `CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps every key as one row of kv_store
type PostgresStore struct {
	client *postgres.Client
	db     *goqu.Database
	now    func() time.Time
}

// NewPostgresStore creates a store on an open client
func NewPostgresStore(client *postgres.Client) *PostgresStore {
	return &PostgresStore{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		now:    time.Now,
	}
}

var _ providers.StorageProvider = (*PostgresStore)(nil)

// EnsureSchema creates kv_store if it does not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.client.DB().ExecContext(ctx, CreateTableSQL)
	return err
}

// Get reads the row for key
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args, err := s.db.From(kvTable).
		Select("value").
		Where(goqu.Ex{"key": key}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, false, err
	}

	var value []byte
	err = s.client.DB().QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set upserts the row for key
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := s.db.Insert(kvTable).
		Rows(goqu.Record{
			"key":        key,
			"value":      string(value),
			"updated_at": s.now().UTC(),
		}).
		OnConflict(goqu.DoUpdate("key", goqu.Record{
			"value":      goqu.I("excluded.value"),
			"updated_at": goqu.I("excluded.updated_at"),
		})).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	_, err = s.client.DB().ExecContext(ctx, query, args...)
	return err
}

// Delete removes the row for key
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	query, args, err := s.db.Delete(kvTable).
		Where(goqu.Ex{"key": key}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	_, err = s.client.DB().ExecContext(ctx, query, args...)
	return err
}

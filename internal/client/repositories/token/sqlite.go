package token

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/prodauth/internal/client/repositories/keyvalue"
	"github.com/dmitrijs2005/prodauth/internal/common"
	"github.com/dmitrijs2005/prodauth/internal/dbx"
)

// SQLiteStore keeps the token in the kv table of the local database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ Store           = (*SQLiteStore)(nil)
	_ SavedAtReporter = (*SQLiteStore)(nil)
)

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) Load(ctx context.Context) (string, error) {
	v, _, err := keyvalue.NewSQLiteRepository(s.db).Get(ctx, common.TokenStorageKey)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return v, nil
}

// Save writes the token and its timestamp in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, token string) error {
	savedAt := s.now().UTC().Format(time.RFC3339Nano)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := keyvalue.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.TokenStorageKey, token); err != nil {
			return err
		}
		return repo.Set(ctx, common.TokenSavedAtKey, savedAt)
	})
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := keyvalue.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.TokenStorageKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.TokenSavedAtKey)
	})
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SavedAt(ctx context.Context) (time.Time, bool, error) {
	v, ok, err := keyvalue.NewSQLiteRepository(s.db).Get(ctx, common.TokenSavedAtKey)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: saved_at %q", ErrMalformed, v)
	}
	return t, true, nil
}

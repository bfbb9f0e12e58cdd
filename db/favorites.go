package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"githubglimpse/favorites"
	"githubglimpse/logger"
)

// LoadFavorites returns the names stored under key.
func (db *DB) LoadFavorites(ctx context.Context, key string) ([]string, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: favorites key cannot be empty", ErrInvalidInput)
	}

	var names []string
	query := db.conn.Rebind(`SELECT name FROM favorites WHERE store_key = ? ORDER BY name`)
	if err := db.conn.SelectContext(ctx, &names, query, key); err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	return names, nil
}

// SaveFavorites replaces every name stored under key in one transaction.
func (db *DB) SaveFavorites(ctx context.Context, key string, names []string) error {
	if key == "" {
		return fmt.Errorf("%w: favorites key cannot be empty", ErrInvalidInput)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM favorites WHERE store_key = ?`), key); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}

	insert := tx.Rebind(`INSERT INTO favorites (store_key, name) VALUES (?, ?)`)
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, insert, key, name); err != nil {
			return fmt.Errorf("failed to insert favorite %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", ErrTransactionFailed, err)
	}

	logger.Debug("Saved favorites", zap.String("key", key), zap.Int("count", len(names)))
	return nil
}

// FavoriteStore adapts the favorites table to favorites.Store.
type FavoriteStore struct {
	db      *DB
	key     string
	timeout time.Duration
}

// NewFavoriteStore returns a store that keeps its set under favorites.StorageKey.
func NewFavoriteStore(db *DB) *FavoriteStore {
	return &FavoriteStore{db: db, key: favorites.StorageKey, timeout: 5 * time.Second}
}

// Load implements favorites.Store.
func (s *FavoriteStore) Load() (favorites.Set, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	names, err := s.db.LoadFavorites(ctx, s.key)
	if err != nil {
		return nil, err
	}
	return favorites.NewSet(names...), nil
}

// Save implements favorites.Store.
func (s *FavoriteStore) Save(set favorites.Set) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return s.db.SaveFavorites(ctx, s.key, set.Names())
}

// Package store implements the durable, category-indexed asset store.
// Records are append-only: created by Add, removed by DeleteByID, never
// updated in place.
package store

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/adalundhe/forgecraft/core/assets"
	"github.com/adalundhe/forgecraft/core/database"
	"github.com/adalundhe/forgecraft/core/errors"
	lru "github.com/hashicorp/golang-lru/v2"
)

const decodeCacheSize = 32

type decodedPayload struct {
	mime string
	data []byte
}

// Store is the local asset store for a single user. Operations are
// independently atomic at the sqlite level; no cross-operation ordering
// is guaranteed or needed.
type Store struct {
	pool   *database.Pool
	cache  *lru.Cache[int64, decodedPayload]
	logger *slog.Logger
}

// Open opens the store at path, applying migrations. A failure here is
// terminal for the session and surfaces as StoreUnavailable.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := database.Open(path, database.DefaultPoolConfig())
	if err != nil {
		return nil, errors.Wrap(errors.KindStoreUnavailable, "cannot open asset database", err)
	}

	migrator := database.NewMigrator(pool, migrations)
	if err := migrator.Migrate(context.Background()); err != nil {
		pool.Close()
		return nil, errors.Wrap(errors.KindStoreUnavailable, "cannot migrate asset database", err)
	}

	cache, err := lru.New[int64, decodedPayload](decodeCacheSize)
	if err != nil {
		pool.Close()
		return nil, errors.Wrap(errors.KindStoreUnavailable, "cannot build payload cache", err)
	}

	logger.Info("asset store opened", "path", path)
	return &Store{pool: pool, cache: cache, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.pool.Close()
}

// Add persists a new record and returns its id. Ids are assigned by the
// database, monotonically increasing and never reused. Duplicate content
// is always accepted.
func (s *Store) Add(ctx context.Context, category assets.Category, promptText, payload string) (int64, error) {
	res, err := s.pool.DB().ExecContext(ctx,
		`INSERT INTO assets (category, prompt, payload, created_at) VALUES (?, ?, ?, ?)`,
		string(category), promptText, payload, time.Now().Unix(),
	)
	if err != nil {
		return 0, errors.Wrap(errors.KindStoreUnavailable, "insert asset", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(errors.KindStoreUnavailable, "read inserted id", err)
	}
	s.logger.Debug("asset stored", "id", id, "category", category)
	return id, nil
}

// ListByCategory returns every record of the category, newest first.
// An unknown or empty category yields an empty list, not an error.
func (s *Store) ListByCategory(ctx context.Context, category assets.Category) ([]assets.Record, error) {
	return s.list(ctx,
		`SELECT id, category, prompt, payload, created_at
		 FROM assets WHERE category = ?
		 ORDER BY created_at DESC, id DESC`,
		string(category),
	)
}

// ListAll returns every record across all categories, newest first.
func (s *Store) ListAll(ctx context.Context) ([]assets.Record, error) {
	return s.list(ctx,
		`SELECT id, category, prompt, payload, created_at
		 FROM assets
		 ORDER BY created_at DESC, id DESC`,
	)
}

// GetByID fetches one record. A missing id reports InvalidInput.
func (s *Store) GetByID(ctx context.Context, id int64) (assets.Record, error) {
	var rec assets.Record
	var category string
	err := s.pool.DB().QueryRowContext(ctx,
		`SELECT id, category, prompt, payload, created_at FROM assets WHERE id = ?`, id,
	).Scan(&rec.ID, &category, &rec.PromptText, &rec.Payload, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return assets.Record{}, errors.Newf(errors.KindInvalidInput, "no asset with id %d", id)
	}
	if err != nil {
		return assets.Record{}, errors.Wrap(errors.KindStoreUnavailable, "get asset", err)
	}
	rec.Category = assets.Category(category)
	return rec, nil
}

// DeleteByID removes the record if present. A missing or invalid id is a
// no-op, not an error.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	_, err := s.pool.DB().ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(errors.KindStoreUnavailable, "delete asset", err)
	}
	s.cache.Remove(id)
	return nil
}

// DecodePayload returns the raster bytes of a record's data-URI payload,
// caching decodes for repeated export of the same records.
func (s *Store) DecodePayload(rec assets.Record) (string, []byte, error) {
	if cached, ok := s.cache.Get(rec.ID); ok {
		return cached.mime, cached.data, nil
	}
	mime, data, err := assets.DecodeDataURI(rec.Payload)
	if err != nil {
		return "", nil, errors.Wrap(errors.KindInvalidInput, "payload is not a decodable image", err)
	}
	if rec.ID > 0 {
		s.cache.Add(rec.ID, decodedPayload{mime: mime, data: data})
	}
	return mime, data, nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]assets.Record, error) {
	rows, err := s.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.KindStoreUnavailable, "query assets", err)
	}
	defer rows.Close()

	records := []assets.Record{}
	for rows.Next() {
		var rec assets.Record
		var category string
		if err := rows.Scan(&rec.ID, &category, &rec.PromptText, &rec.Payload, &rec.CreatedAt); err != nil {
			return nil, errors.Wrap(errors.KindStoreUnavailable, "scan asset row", err)
		}
		rec.Category = assets.Category(category)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.KindStoreUnavailable, "iterate asset rows", err)
	}
	return records, nil
}

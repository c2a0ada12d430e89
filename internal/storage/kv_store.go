package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const DefaultSweepInterval = time.Hour

// KVStore keeps key-value entries in the kv_entries table. Expiry is stored
// as unix milliseconds; zero means the entry never expires.
type KVStore struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

func NewKVStore(db *sql.DB, driver string) *KVStore {
	return &KVStore{db: db, driver: normalizeDriver(driver), now: time.Now}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value     string
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv_entries WHERE kv_key = ?`, key,
	).Scan(&value, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup %s: %w", key, err)
	}
	if expiresAt > 0 && s.now().UnixMilli() >= expiresAt {
		return "", false, nil
	}
	return value, true, nil
}

func (s *KVStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	now := s.now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixMilli()
	}
	var stmt string
	switch s.driver {
	case "mysql":
		stmt = `INSERT INTO kv_entries (kv_key, value, expires_at, updated_at) VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE value = VALUES(value), expires_at = VALUES(expires_at), updated_at = VALUES(updated_at)`
	default:
		stmt = `INSERT INTO kv_entries (kv_key, value, expires_at, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(kv_key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at, updated_at = excluded.updated_at`
	}
	if _, err := s.db.ExecContext(ctx, stmt, key, value, expiresAt, now.UnixMilli()); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// StartExpirySweeper periodically deletes expired rows until ctx is done.
func (s *KVStore) StartExpirySweeper(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go s.sweepLoop(ctx, interval, logger)
}

func (s *KVStore) sweepLoop(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.DeleteExpired(ctx)
			if err != nil {
				logger.Warn("sweep expired kv entries failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Debug("swept expired kv entries", zap.Int64("removed", removed))
			}
		}
	}
}

// DeleteExpired removes entries whose expiry has passed and reports how many were removed.
func (s *KVStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE expires_at > 0 AND expires_at <= ?`, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired rows affected: %w", err)
	}
	return affected, nil
}

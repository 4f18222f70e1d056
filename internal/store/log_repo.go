package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"annoreview/internal/domain"
)

// LogKey is the versioned durable key for the annotation log. The version
// suffix must change whenever the AnnotationRecord schema changes, so old
// durable data is never misinterpreted under a new schema.
const LogKey = "annotation_log_v2"

// AnnotationLog is the append-only sequence of finalized annotation
// records. Every append persists the whole serialized sequence under LogKey;
// the corpus is small and bounded, so the O(n) rewrite is acceptable.
// Records are never mutated or removed individually, only via Clear.
//
// Appends arrive through the session, but HTTP handlers read the sequence
// directly from their own goroutines, so mu guards the in-memory slice.
type AnnotationLog struct {
	db      *sql.DB
	logger  *zap.Logger
	mu      sync.RWMutex
	records []domain.AnnotationRecord
}

// OpenAnnotationLog creates a log backed by db. Call Load before use.
func OpenAnnotationLog(db *sql.DB, logger *zap.Logger) *AnnotationLog {
	return &AnnotationLog{db: db, logger: logger}
}

// Load restores the durable sequence. An absent, malformed, or non-sequence
// durable value is treated as an empty log with a warning; startup never
// fails on corrupt log state.
func (l *AnnotationLog) Load(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil

	var payload string
	err := l.db.QueryRowContext(ctx,
		`SELECT payload FROM durable_state WHERE key = ?`, LogKey).Scan(&payload)
	switch {
	case err == sql.ErrNoRows:
		l.logger.Debug("no durable annotation log found, starting empty",
			zap.String("key", LogKey))
		return
	case err != nil:
		l.logger.Warn("annotation log read failed, starting empty",
			zap.String("key", LogKey), zap.Error(err))
		return
	}

	var records []domain.AnnotationRecord
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		l.logger.Warn("annotation log payload corrupt, starting empty",
			zap.String("key", LogKey), zap.Error(err))
		return
	}
	l.records = records
}

// Append adds one record to the end of the sequence and persists the full
// updated sequence. The in-memory append is rolled back if persistence
// fails, so the log never reports a record it cannot durably hold.
func (l *AnnotationLog) Append(ctx context.Context, rec domain.AnnotationRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	if err := l.persist(ctx); err != nil {
		l.records = l.records[:len(l.records)-1]
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "persist annotation log", err)
	}
	return nil
}

// Clear empties the durable sequence.
func (l *AnnotationLog) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.db.ExecContext(ctx, `DELETE FROM durable_state WHERE key = ?`, LogKey)
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "clear annotation log", err)
	}
	l.records = nil
	return nil
}

// Records returns the current sequence in append order. The returned slice
// is a copy; the records themselves are immutable.
func (l *AnnotationLog) Records() []domain.AnnotationRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.AnnotationRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of appended records.
func (l *AnnotationLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func (l *AnnotationLog) persist(ctx context.Context) error {
	payload, err := json.Marshal(l.records)
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx, `
INSERT INTO durable_state (key, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		LogKey, string(payload), time.Now().Unix())
	return err
}

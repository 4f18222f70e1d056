package store

import (
	"context"
	"database/sql"
	"fmt"

	"annoreview/internal/domain"
)

// AuditRepo handles persistence for the reviewer action audit trail.
type AuditRepo struct{}

// Record inserts an audit entry.
func (r *AuditRepo) Record(ctx context.Context, db *sql.DB, e domain.AuditEntry) error {
	const q = `INSERT INTO audit_records (id, conversation_id, action, detail_json, created_at)
VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, q,
		e.ID,
		e.ConversationID,
		e.Action,
		e.DetailJSON,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

// ListByConversation returns all audit entries for a conversation, ordered
// by creation time.
func (r *AuditRepo) ListByConversation(ctx context.Context, db *sql.DB, conversationID string) ([]domain.AuditEntry, error) {
	const q = `SELECT id, conversation_id, action, detail_json, created_at
FROM audit_records
WHERE conversation_id = ?
ORDER BY created_at ASC, rowid ASC`

	rows, err := db.QueryContext(ctx, q, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	return scanAuditRows(rows)
}

// List returns the full audit trail in creation order.
func (r *AuditRepo) List(ctx context.Context, db *sql.DB) ([]domain.AuditEntry, error) {
	const q = `SELECT id, conversation_id, action, detail_json, created_at
FROM audit_records
ORDER BY created_at ASC, rowid ASC`

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	return scanAuditRows(rows)
}

func scanAuditRows(rows *sql.Rows) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.ConversationID, &e.Action, &e.DetailJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

package store

import (
	"fmt"

	"actionskit/internal/db"
	"actionskit/internal/types"
)

// DatabaseStore persists turn records in Postgres.
type DatabaseStore struct {
	db *db.DB
}

func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

// Append inserts one turn record.
func (s *DatabaseStore) Append(rec types.TurnRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO turns (id, conversation_id, intent, query, reply, final, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.ConversationID, rec.Intent, rec.Query, rec.Reply, rec.Final, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn record: %w", err)
	}
	return nil
}

// Recent returns up to limit records for a conversation, newest first.
func (s *DatabaseStore) Recent(conversationID string, limit int) ([]types.TurnRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, conversation_id, intent, query, reply, final, created_at
		 FROM turns WHERE conversation_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turn records: %w", err)
	}
	defer rows.Close()

	var out []types.TurnRecord
	for rows.Next() {
		var rec types.TurnRecord
		if err := rows.Scan(&rec.ID, &rec.ConversationID, &rec.Intent, &rec.Query, &rec.Reply, &rec.Final, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/claytonbrgsdev/slack-translator-app/internal/constants"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS relay_messages (
	seq                  BIGSERIAL PRIMARY KEY,
	message_id           TEXT NOT NULL,
	original_text        TEXT NOT NULL DEFAULT '',
	translated_text      TEXT NOT NULL DEFAULT '',
	message_ts           BIGINT NOT NULL,
	sender_id            TEXT NOT NULL DEFAULT '',
	sender_display_name  TEXT NOT NULL DEFAULT '',
	sender_avatar_url    TEXT NOT NULL DEFAULT '',
	sent_by_current_user BOOLEAN NOT NULL DEFAULT FALSE
)`

// PostgresStore keeps relayed messages in a single table, trimmed to the
// retention limit on every append so the history view stays bounded.
type PostgresStore struct {
	db        *sql.DB
	retention int
}

func NewPostgresStore(db *sql.DB, retention int) *PostgresStore {
	if retention <= 0 {
		retention = constants.DefaultRetention
	}
	return &PostgresStore{db: db, retention: retention}
}

// EnsureSchema creates the message table when absent. Safe to call on every
// startup.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure message schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	const insert = `
		INSERT INTO relay_messages
			(message_id, original_text, translated_text, message_ts,
			 sender_id, sender_display_name, sender_avatar_url, sent_by_current_user)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := s.db.ExecContext(ctx, insert,
		rec.ID, rec.OriginalText, rec.TranslatedText, rec.Timestamp,
		rec.SenderID, rec.SenderDisplayName, rec.SenderAvatarURL, rec.SentByCurrentUser,
	); err != nil {
		return fmt.Errorf("failed to append message record: %w", err)
	}

	const trim = `
		DELETE FROM relay_messages
		WHERE seq <= (
			SELECT seq FROM relay_messages
			ORDER BY seq DESC OFFSET $1 LIMIT 1
		)`
	if _, err := s.db.ExecContext(ctx, trim, s.retention); err != nil {
		return fmt.Errorf("failed to trim message records: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	const query = `
		SELECT message_id, original_text, translated_text, message_ts,
		       sender_id, sender_display_name, sender_avatar_url, sent_by_current_user
		FROM relay_messages
		ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list message records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.OriginalText, &rec.TranslatedText, &rec.Timestamp,
			&rec.SenderID, &rec.SenderDisplayName, &rec.SenderAvatarURL, &rec.SentByCurrentUser,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relay_messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count message records: %w", err)
	}
	return n, nil
}

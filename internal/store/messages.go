package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/models"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/ratelimit"
)

// CreateMessage records one unit of conversation content, sent or received.
func (s *Store) CreateMessage(ctx context.Context, m models.Message) (models.Message, error) {
	if m.SentAt.IsZero() {
		m.SentAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (prospect_id, content, sent_by_us, type, sent_at, read_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ProspectID, m.Content, boolToInt(m.SentByUs), string(m.Type), m.SentAt, nullTime(m.ReadAt))
	if err != nil {
		return models.Message{}, fmt.Errorf("create message: %w", err)
	}
	m.ID, _ = res.LastInsertId()
	return m, nil
}

// Conversation returns a prospect's messages ordered by sent time.
func (s *Store) Conversation(ctx context.Context, prospectID int64) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, prospect_id, content, sent_by_us, type, sent_at, read_at
		 FROM messages WHERE prospect_id = ? ORDER BY sent_at, id`, prospectID)
	if err != nil {
		return nil, fmt.Errorf("conversation for prospect %d: %w", prospectID, err)
	}
	defer rows.Close()
	var out []models.Message
	for rows.Next() {
		var m models.Message
		var sentByUs int
		var read sql.NullTime
		if err := rows.Scan(&m.ID, &m.ProspectID, &m.Content, &sentByUs, &m.Type, &m.SentAt, &read); err != nil {
			return nil, err
		}
		m.SentByUs = sentByUs != 0
		if read.Valid {
			t := read.Time
			m.ReadAt = &t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountActionsToday feeds the rate limiter at startup so daily budgets
// survive a process restart within the same day.
func (s *Store) CountActionsToday(ctx context.Context, kind ratelimit.Kind) (int, error) {
	var row *sql.Row
	switch kind {
	case ratelimit.KindConnection:
		row = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM connection_requests WHERE DATE(sent_at) = DATE('now', 'localtime')`)
	case ratelimit.KindMessage:
		row = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM messages
			 WHERE sent_by_us = 1 AND type = ? AND DATE(sent_at) = DATE('now', 'localtime')`,
			string(models.MessageTypeFollowUp))
	default:
		return 0, fmt.Errorf("count actions today: unknown kind %q", kind)
	}
	var c int
	if err := row.Scan(&c); err != nil {
		return 0, fmt.Errorf("count actions today: %w", err)
	}
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/models"
)

func scanRequest(row interface{ Scan(...any) error }) (models.ConnectionRequest, error) {
	var r models.ConnectionRequest
	var resp sql.NullTime
	err := row.Scan(&r.ID, &r.ProspectID, &r.Note, &r.Status, &r.SentAt, &resp)
	if err != nil {
		return models.ConnectionRequest{}, err
	}
	if resp.Valid {
		t := resp.Time
		r.ResponseAt = &t
	}
	return r, nil
}

const requestCols = `id, prospect_id, note, status, sent_at, response_at`

// PendingRequestFor returns the prospect's outstanding PENDING request, or
// nil when there is none.
func (s *Store) PendingRequestFor(ctx context.Context, prospectID int64) (*models.ConnectionRequest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+requestCols+` FROM connection_requests
		WHERE prospect_id = ? AND status = ? ORDER BY id LIMIT 1`,
		prospectID, string(models.ConnectionPending))
	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pending request for prospect %d: %w", prospectID, err)
	}
	return &r, nil
}

// CreateConnectionRequest records one outbound request. At most one PENDING
// request may exist per prospect: if one does, it is returned with
// existed=true and no second row is created. The check and the insert run
// inside a single transaction.
func (s *Store) CreateConnectionRequest(ctx context.Context, prospectID int64, note string) (models.ConnectionRequest, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.ConnectionRequest{}, false, err
	}
	defer func() { _ = tx.Rollback() }()
	req, existed, err := createRequestTx(ctx, tx, prospectID, note)
	if err != nil {
		return models.ConnectionRequest{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return models.ConnectionRequest{}, false, err
	}
	return req, existed, nil
}

func createRequestTx(ctx context.Context, tx *sql.Tx, prospectID int64, note string) (models.ConnectionRequest, bool, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+requestCols+` FROM connection_requests
		WHERE prospect_id = ? AND status = ? ORDER BY id LIMIT 1`,
		prospectID, string(models.ConnectionPending))
	existing, err := scanRequest(row)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.ConnectionRequest{}, false, fmt.Errorf("check pending request: %w", err)
	}
	now := time.Now()
	res, err := tx.ExecContext(ctx, `INSERT INTO connection_requests (prospect_id, note, status, sent_at)
		VALUES (?, ?, ?, ?)`, prospectID, note, string(models.ConnectionPending), now)
	if err != nil {
		return models.ConnectionRequest{}, false, fmt.Errorf("create connection request: %w", err)
	}
	id, _ := res.LastInsertId()
	return models.ConnectionRequest{
		ID: id, ProspectID: prospectID, Note: note,
		Status: models.ConnectionPending, SentAt: now,
	}, false, nil
}

// UpdateConnectionStatus moves a request to a new state and stamps the
// response time.
func (s *Store) UpdateConnectionStatus(ctx context.Context, id int64, status models.ConnectionStatus) (models.ConnectionRequest, error) {
	now := time.Now()
	if _, err := s.db.ExecContext(ctx, `UPDATE connection_requests SET status = ?, response_at = ? WHERE id = ?`,
		string(status), now, id); err != nil {
		return models.ConnectionRequest{}, fmt.Errorf("update connection request %d: %w", id, err)
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+requestCols+` FROM connection_requests WHERE id = ?`, id)
	r, err := scanRequest(row)
	if err != nil {
		return models.ConnectionRequest{}, fmt.Errorf("reload connection request %d: %w", id, err)
	}
	return r, nil
}

// PendingCheck pairs a pending request with the profile reference needed to
// probe it on the external platform.
type PendingCheck struct {
	RequestID   int64
	ProspectID  int64
	LinkedInURL string
}

// ListPendingConnectionChecks returns outstanding requests oldest-first.
func (s *Store) ListPendingConnectionChecks(ctx context.Context, limit int) ([]PendingCheck, error) {
	q := `SELECT r.id, r.prospect_id, p.linkedin_url
		FROM connection_requests r JOIN prospects p ON p.id = r.prospect_id
		WHERE r.status = ? ORDER BY r.sent_at`
	args := []any{string(models.ConnectionPending)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending checks: %w", err)
	}
	defer rows.Close()
	var out []PendingCheck
	for rows.Next() {
		var c PendingCheck
		if err := rows.Scan(&c.RequestID, &c.ProspectID, &c.LinkedInURL); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecordConnectionSent persists everything one successful connection action
// implies, in a single transaction: the PENDING request (unless one already
// exists), the status transition with last_contacted_at, and the note as a
// sent message when present.
func (s *Store) RecordConnectionSent(ctx context.Context, prospectID int64, status models.ProspectStatus, note string) (models.ConnectionRequest, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.ConnectionRequest{}, false, err
	}
	defer func() { _ = tx.Rollback() }()

	req, existed, err := createRequestTx(ctx, tx, prospectID, note)
	if err != nil {
		return models.ConnectionRequest{}, false, err
	}
	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE prospects SET status = ?, last_contacted_at = ?, updated_at = ? WHERE id = ?`,
		string(status), now, now, prospectID); err != nil {
		return models.ConnectionRequest{}, false, fmt.Errorf("record connection sent: %w", err)
	}
	if note != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (prospect_id, content, sent_by_us, type, sent_at) VALUES (?, ?, 1, ?, ?)`,
			prospectID, note, string(models.MessageTypeConnectionNote), now); err != nil {
			return models.ConnectionRequest{}, false, fmt.Errorf("record connection note: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return models.ConnectionRequest{}, false, err
	}
	return req, existed, nil
}

// RecordFollowUpSent persists one successful follow-up message action.
func (s *Store) RecordFollowUpSent(ctx context.Context, prospectID int64, content string) (models.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer func() { _ = tx.Rollback() }()
	now := time.Now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO messages (prospect_id, content, sent_by_us, type, sent_at) VALUES (?, ?, 1, ?, ?)`,
		prospectID, content, string(models.MessageTypeFollowUp), now)
	if err != nil {
		return models.Message{}, fmt.Errorf("record follow-up: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE prospects SET updated_at = ? WHERE id = ?`, now, prospectID); err != nil {
		return models.Message{}, fmt.Errorf("record follow-up: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}
	id, _ := res.LastInsertId()
	return models.Message{
		ID: id, ProspectID: prospectID, Content: content,
		SentByUs: true, Type: models.MessageTypeFollowUp, SentAt: now,
	}, nil
}

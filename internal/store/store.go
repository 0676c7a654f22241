// Package store owns the durable rows: prospects, connection requests,
// messages and campaigns. Relationships are identifier-based foreign keys
// only; callers navigate them through explicit queries.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/models"
)

type Store struct{ db *sql.DB }

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; one pooled connection avoids SQLITE_BUSY
	// under concurrent access.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

func (s *Store) Close() { _ = s.db.Close() }

func (s *Store) Migrate(ctx context.Context) error {
	stmt := `
CREATE TABLE IF NOT EXISTS prospects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	linkedin_url TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL DEFAULT '',
	headline TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	industry TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'new',
	source TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	last_contacted_at DATETIME
);
CREATE TABLE IF NOT EXISTS connection_requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prospect_id INTEGER NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	sent_at DATETIME NOT NULL,
	response_at DATETIME,
	FOREIGN KEY(prospect_id) REFERENCES prospects(id)
);
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prospect_id INTEGER NOT NULL,
	content TEXT NOT NULL,
	sent_by_us INTEGER NOT NULL DEFAULT 1,
	type TEXT NOT NULL DEFAULT '',
	sent_at DATETIME NOT NULL,
	read_at DATETIME,
	FOREIGN KEY(prospect_id) REFERENCES prospects(id)
);
CREATE TABLE IF NOT EXISTS campaigns (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	target_keywords TEXT NOT NULL DEFAULT '',
	target_locations TEXT NOT NULL DEFAULT '',
	target_industries TEXT NOT NULL DEFAULT '',
	connection_template TEXT NOT NULL DEFAULT '',
	follow_up_template TEXT NOT NULL DEFAULT '',
	daily_connections INTEGER NOT NULL DEFAULT 20,
	daily_messages INTEGER NOT NULL DEFAULT 15,
	active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

const prospectCols = `id, linkedin_url, full_name, headline, location, industry, company,
	status, source, notes, created_at, updated_at, last_contacted_at`

func scanProspect(row interface{ Scan(...any) error }) (models.Prospect, error) {
	var p models.Prospect
	var last sql.NullTime
	err := row.Scan(&p.ID, &p.LinkedInURL, &p.FullName, &p.Headline, &p.Location,
		&p.Industry, &p.Company, &p.Status, &p.Source, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt, &last)
	if err != nil {
		return models.Prospect{}, err
	}
	if last.Valid {
		t := last.Time
		p.LastContactedAt = &t
	}
	return p, nil
}

// CreateProspect inserts p unless a prospect with the same linkedin_url
// already exists, in which case the existing row is returned with
// existed=true. "Already exists" is expected control flow, not an error.
func (s *Store) CreateProspect(ctx context.Context, p models.Prospect) (models.Prospect, bool, error) {
	if p.LinkedInURL == "" {
		return models.Prospect{}, false, errors.New("create prospect: linkedin_url is required")
	}
	if p.Status == "" {
		p.Status = models.StatusNew
	}
	existing, err := s.FindByURL(ctx, p.LinkedInURL)
	if err != nil {
		return models.Prospect{}, false, err
	}
	if existing != nil {
		return *existing, true, nil
	}
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `INSERT INTO prospects
		(linkedin_url, full_name, headline, location, industry, company, status, source, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.LinkedInURL, p.FullName, p.Headline, p.Location, p.Industry, p.Company,
		string(p.Status), p.Source, p.Notes, now, now)
	if err != nil {
		// A concurrent create for the same URL can win the race between the
		// lookup above and this insert; the UNIQUE constraint then fires and
		// the winner's row is the answer.
		if other, ferr := s.FindByURL(ctx, p.LinkedInURL); ferr == nil && other != nil {
			return *other, true, nil
		}
		return models.Prospect{}, false, fmt.Errorf("create prospect: %w", err)
	}
	p.ID, _ = res.LastInsertId()
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, false, nil
}

// FindByURL returns the prospect with the given linkedin_url, or nil when
// none exists.
func (s *Store) FindByURL(ctx context.Context, url string) (*models.Prospect, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+prospectCols+` FROM prospects WHERE linkedin_url = ?`, url)
	p, err := scanProspect(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find prospect by url: %w", err)
	}
	return &p, nil
}

func (s *Store) GetProspect(ctx context.Context, id int64) (models.Prospect, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+prospectCols+` FROM prospects WHERE id = ?`, id)
	p, err := scanProspect(row)
	if err != nil {
		return models.Prospect{}, fmt.Errorf("get prospect %d: %w", id, err)
	}
	return p, nil
}

// UpdateProspectInfo backfills scraped profile fields without touching status.
func (s *Store) UpdateProspectInfo(ctx context.Context, id int64, fullName, headline, company string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE prospects SET
		full_name = CASE WHEN ? != '' THEN ? ELSE full_name END,
		headline = CASE WHEN ? != '' THEN ? ELSE headline END,
		company = CASE WHEN ? != '' THEN ? ELSE company END,
		updated_at = ? WHERE id = ?`,
		fullName, fullName, headline, headline, company, company, time.Now(), id)
	return err
}

// UpdateStatus sets the prospect's lifecycle status. When stampContacted is
// true (transitions into CONTACTED or CONNECTED) last_contacted_at is set too.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status models.ProspectStatus, stampContacted bool) error {
	now := time.Now()
	var err error
	if stampContacted {
		_, err = s.db.ExecContext(ctx,
			`UPDATE prospects SET status = ?, last_contacted_at = ?, updated_at = ? WHERE id = ?`,
			string(status), now, now, id)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE prospects SET status = ?, updated_at = ? WHERE id = ?`,
			string(status), now, id)
	}
	if err != nil {
		return fmt.Errorf("update status of prospect %d: %w", id, err)
	}
	return nil
}

// ListByStatus returns prospects in stable id order. limit <= 0 means all.
func (s *Store) ListByStatus(ctx context.Context, status models.ProspectStatus, limit int) ([]models.Prospect, error) {
	q := `SELECT ` + prospectCols + ` FROM prospects WHERE status = ? ORDER BY id`
	args := []any{string(status)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryProspects(ctx, q, args...)
}

// Filter selects prospects by named optional fields. Zero values mean "any".
type Filter struct {
	Status   models.ProspectStatus
	Company  string
	Location string
	Industry string
	Limit    int
}

func (s *Store) ListProspects(ctx context.Context, f Filter) ([]models.Prospect, error) {
	q := `SELECT ` + prospectCols + ` FROM prospects WHERE 1=1`
	var args []any
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.Company != "" {
		q += ` AND company LIKE ?`
		args = append(args, "%"+f.Company+"%")
	}
	if f.Location != "" {
		q += ` AND location LIKE ?`
		args = append(args, "%"+f.Location+"%")
	}
	if f.Industry != "" {
		q += ` AND industry LIKE ?`
		args = append(args, "%"+f.Industry+"%")
	}
	q += ` ORDER BY id`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	return s.queryProspects(ctx, q, args...)
}

// ListAwaitingFollowUp returns CONNECTED prospects we have not yet sent a
// follow-up message to.
func (s *Store) ListAwaitingFollowUp(ctx context.Context, limit int) ([]models.Prospect, error) {
	q := `SELECT ` + prospectCols + ` FROM prospects p
		WHERE p.status = ? AND NOT EXISTS (
			SELECT 1 FROM messages m
			WHERE m.prospect_id = p.id AND m.sent_by_us = 1 AND m.type = ?
		) ORDER BY p.id`
	args := []any{string(models.StatusConnected), string(models.MessageTypeFollowUp)}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryProspects(ctx, q, args...)
}

func (s *Store) queryProspects(ctx context.Context, q string, args ...any) ([]models.Prospect, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list prospects: %w", err)
	}
	defer rows.Close()
	var out []models.Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

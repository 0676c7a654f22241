package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/models"
)

const campaignCols = `id, name, description, target_keywords, target_locations, target_industries,
	connection_template, follow_up_template, daily_connections, daily_messages, active, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (models.Campaign, error) {
	var c models.Campaign
	var active int
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.TargetKeywords, &c.TargetLocations,
		&c.TargetIndustries, &c.ConnectionTemplate, &c.FollowUpTemplate,
		&c.DailyConnections, &c.DailyMessages, &active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.Campaign{}, err
	}
	c.Active = active != 0
	return c, nil
}

func (s *Store) CreateCampaign(ctx context.Context, c models.Campaign) (models.Campaign, error) {
	if c.Name == "" {
		return models.Campaign{}, errors.New("create campaign: name is required")
	}
	if c.DailyConnections <= 0 {
		c.DailyConnections = 20
	}
	if c.DailyMessages <= 0 {
		c.DailyMessages = 15
	}
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `INSERT INTO campaigns
		(name, description, target_keywords, target_locations, target_industries,
		 connection_template, follow_up_template, daily_connections, daily_messages, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Description, c.TargetKeywords, c.TargetLocations, c.TargetIndustries,
		c.ConnectionTemplate, c.FollowUpTemplate, c.DailyConnections, c.DailyMessages,
		boolToInt(c.Active), now, now)
	if err != nil {
		return models.Campaign{}, fmt.Errorf("create campaign: %w", err)
	}
	c.ID, _ = res.LastInsertId()
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

// FindCampaign returns the named campaign, or nil when it does not exist.
func (s *Store) FindCampaign(ctx context.Context, name string) (*models.Campaign, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+campaignCols+` FROM campaigns WHERE name = ?`, name)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find campaign %q: %w", name, err)
	}
	return &c, nil
}

func (s *Store) ActiveCampaigns(ctx context.Context) ([]models.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+campaignCols+` FROM campaigns WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("active campaigns: %w", err)
	}
	defer rows.Close()
	var out []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

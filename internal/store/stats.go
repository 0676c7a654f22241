package store

import (
	"context"
	"fmt"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/models"
)

// Stats aggregates counts by prospect status, connection state and message
// direction.
type Stats struct {
	TotalProspects int
	ByStatus       map[models.ProspectStatus]int

	TotalRequests    int
	PendingRequests  int
	AcceptedRequests int

	TotalMessages    int
	SentMessages     int
	ReceivedMessages int
}

// AcceptanceRate is accepted requests over total requests, in percent.
// Zero when no requests were sent.
func (st Stats) AcceptanceRate() float64 {
	if st.TotalRequests == 0 {
		return 0
	}
	return float64(st.AcceptedRequests) / float64(st.TotalRequests) * 100
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByStatus: map[models.ProspectStatus]int{}}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM prospects GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return Stats{}, err
		}
		st.ByStatus[models.ProspectStatus(status)] = n
		st.TotalProspects += n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(status = ?), 0), COALESCE(SUM(status = ?), 0) FROM connection_requests`,
		string(models.ConnectionPending), string(models.ConnectionAccepted)).
		Scan(&st.TotalRequests, &st.PendingRequests, &st.AcceptedRequests)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(sent_by_us = 1), 0), COALESCE(SUM(sent_by_us = 0), 0) FROM messages`).
		Scan(&st.TotalMessages, &st.SentMessages, &st.ReceivedMessages)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

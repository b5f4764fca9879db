// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/danielhkuo/syncmeet/auth"
	"github.com/danielhkuo/syncmeet/middleware"
	"github.com/danielhkuo/syncmeet/models"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// loadPoll returns the poll with its slots in display order.
// A missing poll is reported as sql.ErrNoRows.
func loadPoll(ctx context.Context, q queryer, pollID string) (models.Poll, error) {
	var (
		poll   models.Poll
		sentAt sql.NullTime
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, title, description, allow_multiple_votes, created_at, sent_at
		FROM poll
		WHERE id = $1
	`, pollID).Scan(&poll.ID, &poll.Title, &poll.Description, &poll.AllowMultipleVotes, &poll.CreatedAt, &sentAt)
	if err != nil {
		return models.Poll{}, err
	}
	if sentAt.Valid {
		poll.SentAt = &sentAt.Time
	}

	rows, err := q.QueryContext(ctx, `
		SELECT value FROM poll_slot WHERE poll_id = $1 ORDER BY position
	`, pollID)
	if err != nil {
		return models.Poll{}, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	poll.Slots = []string{}
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return models.Poll{}, fmt.Errorf("scan slot: %w", err)
		}
		poll.Slots = append(poll.Slots, slot)
	}
	return poll, rows.Err()
}

// loadRecipients returns the invited emails and the priority subset, both
// in the order the organizer entered them.
func loadRecipients(ctx context.Context, q queryer, pollID string) (recipients, priority []string, err error) {
	rows, err := q.QueryContext(ctx, `
		SELECT email, priority FROM poll_recipient WHERE poll_id = $1 ORDER BY position
	`, pollID)
	if err != nil {
		return nil, nil, fmt.Errorf("query recipients: %w", err)
	}
	defer rows.Close()

	recipients, priority = []string{}, []string{}
	for rows.Next() {
		var (
			email string
			isPri bool
		)
		if err := rows.Scan(&email, &isPri); err != nil {
			return nil, nil, fmt.Errorf("scan recipient: %w", err)
		}
		recipients = append(recipients, email)
		if isPri {
			priority = append(priority, email)
		}
	}
	return recipients, priority, rows.Err()
}

// loadVotes returns every vote on the poll in arrival order.
func loadVotes(ctx context.Context, q queryer, pollID string) ([]models.Vote, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, poll_id, email, slot, submitted_at
		FROM vote
		WHERE poll_id = $1
		ORDER BY seq
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.PollID, &v.Email, &v.Slot, &v.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// requireAdmin validates X-Admin-Key for the poll and writes a 401 when it
// does not match. It reports whether the handler may continue.
func requireAdmin(w http.ResponseWriter, r *http.Request, pollID, salt string) bool {
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(pollID, adminKey, salt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

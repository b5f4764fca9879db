// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/syncmeet/auth"
	"github.com/danielhkuo/syncmeet/cliparse"
	"github.com/danielhkuo/syncmeet/emails"
	"github.com/danielhkuo/syncmeet/middleware"
	"github.com/danielhkuo/syncmeet/models"
)

type PollHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{db: db, cfg: cfg}
}

// pollInput is a CreatePollRequest after trimming and validation.
type pollInput struct {
	title       string
	description string
	slots       []string
	recipients  []string
	priority    []string
}

// validatePoll checks a create request and returns the cleaned form.
func validatePoll(req models.CreatePollRequest) (pollInput, error) {
	in := pollInput{
		title:       strings.TrimSpace(req.Title),
		description: strings.TrimSpace(req.Description),
	}
	if in.title == "" {
		return in, errors.New("title is required")
	}

	seen := make(map[string]bool, len(req.Slots))
	for _, slot := range req.Slots {
		slot = strings.TrimSpace(slot)
		if slot == "" {
			return in, errors.New("slots must not be empty")
		}
		if seen[slot] {
			return in, fmt.Errorf("duplicate slot %q", slot)
		}
		seen[slot] = true
		in.slots = append(in.slots, slot)
	}
	if len(in.slots) < 2 {
		return in, errors.New("at least 2 slots are required")
	}

	for _, addr := range req.Recipients {
		addr = strings.TrimSpace(addr)
		if !emails.Valid(addr) {
			return in, fmt.Errorf("invalid recipient %q", addr)
		}
		in.recipients = append(in.recipients, addr)
	}
	in.recipients = emails.Unique(in.recipients)
	if len(in.recipients) == 0 {
		return in, errors.New("at least one recipient is required")
	}

	for _, addr := range emails.Unique(req.Priority) {
		if !emails.Contains(in.recipients, addr) {
			return in, fmt.Errorf("priority email %q is not a recipient", strings.TrimSpace(addr))
		}
		in.priority = append(in.priority, strings.TrimSpace(addr))
	}

	return in, nil
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	in, err := validatePoll(req)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	allowMultiple := h.cfg.AllowMultipleVotes()
	if req.AllowMultipleVotes != nil {
		allowMultiple = *req.AllowMultipleVotes
	}

	pollID := auth.NewID()
	adminKey := auth.GenerateAdminKey(pollID, h.cfg.AdminKeySalt)
	now := time.Now().UTC()

	ctx := r.Context()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (id, title, description, allow_multiple_votes, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, pollID, in.title, in.description, allowMultiple, now)
	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	for i, slot := range in.slots {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO poll_slot (poll_id, position, value) VALUES ($1, $2, $3)
		`, pollID, i, slot); err != nil {
			slog.Error("failed to insert slot", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
	}

	for i, addr := range in.recipients {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO poll_recipient (poll_id, position, email, priority) VALUES ($1, $2, $3, $4)
		`, pollID, i, addr, emails.Contains(in.priority, addr)); err != nil {
			slog.Error("failed to insert recipient", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	// Link the poll to its organizer (if X-Organizer-ID header present)
	organizerID, err := GetOrCreateOrganizer(h.db, r)
	if err != nil {
		slog.Warn("failed to get/create organizer", "error", err)
	} else if organizerID != "" {
		if err := LinkOrganizerToPoll(h.db, organizerID, pollID, models.RoleOrganizer); err != nil {
			slog.Warn("failed to link organizer to poll", "error", err)
		}
	}

	slog.Info("poll created",
		"poll_id", pollID,
		"slots", len(in.slots),
		"recipients", len(in.recipients),
		"priority", len(in.priority),
		"allow_multiple_votes", allowMultiple,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID:    pollID,
		AdminKey:  adminKey,
		CreatedAt: now,
	})
}

// GetPoll handles GET /polls/{id}
// Public view: recipients and priority are never exposed here.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	poll, err := loadPoll(r.Context(), h.db, pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to load poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// GetPollAdmin handles GET /polls/{id}/admin
func (h *PollHandler) GetPollAdmin(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if !requireAdmin(w, r, pollID, h.cfg.AdminKeySalt) {
		return
	}

	full, err := loadPollWithRecipients(r, h.db, pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to load poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, full)
}

// MarkSent handles POST /polls/{id}/sent
// Records that the dispatcher acknowledged the invitations. Repeating the
// call keeps the first timestamp.
func (h *PollHandler) MarkSent(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if !requireAdmin(w, r, pollID, h.cfg.AdminKeySalt) {
		return
	}

	var sentAt sql.NullTime
	err := h.db.QueryRowContext(r.Context(), `
		SELECT sent_at FROM poll WHERE id = $1
	`, pollID).Scan(&sentAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if sentAt.Valid {
		middleware.JSONResponse(w, http.StatusOK, models.MarkSentResponse{SentAt: sentAt.Time})
		return
	}

	now := time.Now().UTC()
	_, err = h.db.ExecContext(r.Context(), `
		UPDATE poll SET sent_at = $1 WHERE id = $2 AND sent_at IS NULL
	`, now, pollID)
	if err != nil {
		slog.Error("failed to mark poll sent", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to mark poll sent")
		return
	}

	slog.Info("poll marked sent", "poll_id", pollID)

	middleware.JSONResponse(w, http.StatusOK, models.MarkSentResponse{SentAt: now})
}

// LookupByTitle handles GET /polls/lookup?title=
// Older vote links only carry the poll title; the newest poll with that
// title wins.
func (h *PollHandler) LookupByTitle(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	var pollID string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id FROM poll
		WHERE title = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, title).Scan(&pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to look up poll by title", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	poll, err := loadPoll(r.Context(), h.db, pollID)
	if err != nil {
		slog.Error("failed to load poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

func loadPollWithRecipients(r *http.Request, db *sql.DB, pollID string) (models.PollWithRecipients, error) {
	poll, err := loadPoll(r.Context(), db, pollID)
	if err != nil {
		return models.PollWithRecipients{}, err
	}
	recipients, priority, err := loadRecipients(r.Context(), db, pollID)
	if err != nil {
		return models.PollWithRecipients{}, err
	}
	return models.PollWithRecipients{
		Poll:       poll,
		Recipients: recipients,
		Priority:   priority,
	}, nil
}

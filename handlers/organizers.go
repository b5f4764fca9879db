// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/syncmeet/auth"
	"github.com/danielhkuo/syncmeet/cliparse"
	"github.com/danielhkuo/syncmeet/middleware"
	"github.com/danielhkuo/syncmeet/models"
)

// OrganizerIDHeader carries the auth provider's user id. Authentication
// itself happens upstream.
const OrganizerIDHeader = "X-Organizer-ID"

type OrganizerHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewOrganizerHandler(db *sql.DB, cfg cliparse.Config) *OrganizerHandler {
	return &OrganizerHandler{db: db, cfg: cfg}
}

// Register handles POST /organizers/register
// Returns the organizer_id for the external id, creating it on first use.
func (h *OrganizerHandler) Register(w http.ResponseWriter, r *http.Request) {
	externalID := strings.TrimSpace(r.Header.Get(OrganizerIDHeader))
	if externalID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Organizer-ID header required")
		return
	}

	organizerID, isNew, err := getOrCreateOrganizer(h.db, externalID)
	if err != nil {
		slog.Error("failed to register organizer", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register organizer")
		return
	}

	slog.Info("organizer registered", "organizer_id", organizerID, "is_new", isNew)

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	middleware.JSONResponse(w, status, models.RegisterOrganizerResponse{
		OrganizerID: organizerID,
		IsNew:       isNew,
	})
}

// GetMyPolls handles GET /organizers/me/polls
// Newest first.
func (h *OrganizerHandler) GetMyPolls(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := h.lookupOrganizer(w, r)
	if !ok {
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT
			p.id,
			p.title,
			op.role,
			p.created_at,
			p.sent_at,
			(SELECT COUNT(*) FROM vote v WHERE v.poll_id = p.id) AS vote_count
		FROM organizer_poll op
		JOIN poll p ON op.poll_id = p.id
		WHERE op.organizer_id = $1
		ORDER BY op.linked_at DESC, p.created_at DESC
	`, organizerID)
	if err != nil {
		slog.Error("failed to query organizer polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	polls := []models.OrganizerPollSummary{}
	for rows.Next() {
		var (
			summary models.OrganizerPollSummary
			sentAt  sql.NullTime
		)
		if err := rows.Scan(
			&summary.PollID,
			&summary.Title,
			&summary.Role,
			&summary.CreatedAt,
			&sentAt,
			&summary.VoteCount,
		); err != nil {
			slog.Error("failed to scan poll", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if sentAt.Valid {
			summary.SentAt = &sentAt.Time
		}
		polls = append(polls, summary)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate organizer polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.GetMyPollsResponse{Polls: polls})
}

// GetLastPoll handles GET /organizers/me/polls/last
// Loads the organizer's newest poll so it can be reopened.
func (h *OrganizerHandler) GetLastPoll(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := h.lookupOrganizer(w, r)
	if !ok {
		return
	}

	var pollID string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT op.poll_id
		FROM organizer_poll op
		JOIN poll p ON op.poll_id = p.id
		WHERE op.organizer_id = $1
		ORDER BY op.linked_at DESC, p.created_at DESC
		LIMIT 1
	`, organizerID).Scan(&pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "No polls yet")
		return
	}
	if err != nil {
		slog.Error("failed to query last poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	full, err := loadPollWithRecipients(r, h.db, pollID)
	if err != nil {
		slog.Error("failed to load poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var count int
	err = h.db.QueryRowContext(r.Context(), `
		SELECT COUNT(*) FROM vote WHERE poll_id = $1
	`, pollID).Scan(&count)
	if err != nil {
		slog.Error("failed to count votes", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LastPollResponse{
		PollWithRecipients: full,
		AdminKey:           auth.GenerateAdminKey(pollID, h.cfg.AdminKeySalt),
		VoteCount:          count,
	})
}

// lookupOrganizer resolves X-Organizer-ID to a registered organizer and
// refreshes last_seen_at. It writes the error response itself.
func (h *OrganizerHandler) lookupOrganizer(w http.ResponseWriter, r *http.Request) (string, bool) {
	externalID := strings.TrimSpace(r.Header.Get(OrganizerIDHeader))
	if externalID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Organizer-ID header required")
		return "", false
	}

	var organizerID string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id FROM organizer WHERE external_id = $1
	`, externalID).Scan(&organizerID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Organizer not registered")
		return "", false
	}
	if err != nil {
		slog.Error("failed to query organizer", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return "", false
	}

	if _, err := h.db.ExecContext(r.Context(), `
		UPDATE organizer SET last_seen_at = $1 WHERE id = $2
	`, time.Now().UTC(), organizerID); err != nil {
		slog.Error("failed to update organizer last_seen_at", "error", err)
	}

	return organizerID, true
}

// GetOrCreateOrganizer looks up or creates an organizer from the
// X-Organizer-ID header. Returns an empty id when the header is absent.
func GetOrCreateOrganizer(db *sql.DB, r *http.Request) (string, error) {
	externalID := strings.TrimSpace(r.Header.Get(OrganizerIDHeader))
	if externalID == "" {
		return "", nil
	}
	id, _, err := getOrCreateOrganizer(db, externalID)
	return id, err
}

func getOrCreateOrganizer(db *sql.DB, externalID string) (string, bool, error) {
	now := time.Now().UTC()

	var organizerID string
	err := db.QueryRow(`
		SELECT id FROM organizer WHERE external_id = $1
	`, externalID).Scan(&organizerID)
	if err == nil {
		_, _ = db.Exec(`UPDATE organizer SET last_seen_at = $1 WHERE id = $2`, now, organizerID)
		return organizerID, false, nil
	}
	if err != sql.ErrNoRows {
		return "", false, err
	}

	organizerID = auth.NewID()
	_, err = db.Exec(`
		INSERT INTO organizer (id, external_id, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_id) DO NOTHING
	`, organizerID, externalID, now, now)
	if err != nil {
		return "", false, err
	}

	// Another request may have registered the same external id first.
	var stored string
	if err := db.QueryRow(`
		SELECT id FROM organizer WHERE external_id = $1
	`, externalID).Scan(&stored); err != nil {
		return "", false, err
	}
	return stored, stored == organizerID, nil
}

// LinkOrganizerToPoll records that the organizer owns the poll.
func LinkOrganizerToPoll(db *sql.DB, organizerID, pollID, role string) error {
	if organizerID == "" {
		return nil
	}
	_, err := db.Exec(`
		INSERT INTO organizer_poll (organizer_id, poll_id, role, linked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (organizer_id, poll_id) DO NOTHING
	`, organizerID, pollID, role, time.Now().UTC())
	return err
}

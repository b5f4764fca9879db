// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/danielhkuo/syncmeet/auth"
	"github.com/danielhkuo/syncmeet/cliparse"
	"github.com/danielhkuo/syncmeet/emails"
	"github.com/danielhkuo/syncmeet/middleware"
	"github.com/danielhkuo/syncmeet/models"
)

// IdempotencyKeyHeader names the header a client reuses across retries of
// one logical vote.
const IdempotencyKeyHeader = "Idempotency-Key"

type VoteHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg}
}

// SubmitVote handles POST /polls/{id}/votes
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := strings.TrimSpace(req.Email)
	slot := strings.TrimSpace(req.Slot)
	if !emails.Valid(email) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if slot == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slot is required")
		return
	}

	ctx := r.Context()
	poll, err := loadPoll(ctx, h.db, pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to load poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if title := strings.TrimSpace(req.Title); title != "" && title != poll.Title {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title does not match poll")
		return
	}

	recognized := slices.Contains(poll.Slots, slot)

	idemKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if idemKey != "" {
		prior, found, err := findByIdempotencyKey(ctx, h.db, pollID, idemKey)
		if err != nil {
			slog.Error("failed to check idempotency key", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if found {
			h.replay(w, pollID, prior, email, slot, recognized)
			return
		}
	}

	if !recognized {
		slog.Warn("vote for unrecognized slot", "poll_id", pollID, "slot", slot)
	}

	clientIP := middleware.GetClientIP(r)
	ipHash := auth.HashIP(clientIP, h.cfg.IPHashSalt)
	userAgent := r.UserAgent()

	var key sql.NullString
	if idemKey != "" {
		key = sql.NullString{String: idemKey, Valid: true}
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Under the single-vote policy the new row replaces the voter's earlier
	// one and takes its place at the end of the arrival order.
	replaced := false
	if !poll.AllowMultipleVotes {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM vote WHERE poll_id = $1 AND email_key = $2
		`, pollID, emails.Canonical(email))
		if err != nil {
			slog.Error("failed to remove earlier vote", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
			return
		}
		n, _ := res.RowsAffected()
		replaced = n > 0
	}

	voteID := auth.NewID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (id, poll_id, email, email_key, slot, idempotency_key, submitted_at, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, voteID, pollID, email, emails.Canonical(email), slot, key, time.Now().UTC(), ipHash, userAgent)
	if err == nil {
		err = tx.Commit()
	}
	if err != nil {
		// A concurrent retry with the same key may have won the insert.
		if idemKey != "" {
			tx.Rollback()
			if prior, found, lookupErr := findByIdempotencyKey(ctx, h.db, pollID, idemKey); lookupErr == nil && found {
				h.replay(w, pollID, prior, email, slot, recognized)
				return
			}
		}
		slog.Error("failed to insert vote", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}

	message := "Vote recorded"
	if replaced {
		message = "Vote replaced"
	}

	slog.Info("vote submitted",
		"poll_id", pollID,
		"vote_id", voteID,
		"recognized", recognized,
		"replaced", replaced,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		VoteID:     voteID,
		Message:    message,
		Replaced:   replaced,
		Recognized: recognized,
	})
}

// storedVote is what an idempotency key was first used for.
type storedVote struct {
	id       string
	emailKey string
	slot     string
}

// replay answers a retry with the vote its key already recorded. A key
// reused for a different voter or slot is a conflict.
func (h *VoteHandler) replay(w http.ResponseWriter, pollID string, prior storedVote, email, slot string, recognized bool) {
	if prior.emailKey != emails.Canonical(email) || prior.slot != slot {
		slog.Warn("idempotency key reused for a different vote", "poll_id", pollID, "vote_id", prior.id)
		middleware.ErrorResponse(w, http.StatusConflict, "Idempotency-Key was already used for a different vote")
		return
	}

	slog.Info("vote replayed", "poll_id", pollID, "vote_id", prior.id)
	middleware.JSONResponse(w, http.StatusOK, models.SubmitVoteResponse{
		VoteID:     prior.id,
		Message:    "Vote already recorded",
		Replayed:   true,
		Recognized: recognized,
	})
}

func findByIdempotencyKey(ctx context.Context, db *sql.DB, pollID, key string) (storedVote, bool, error) {
	var v storedVote
	err := db.QueryRowContext(ctx, `
		SELECT id, email_key, slot FROM vote WHERE poll_id = $1 AND idempotency_key = $2
	`, pollID, key).Scan(&v.id, &v.emailKey, &v.slot)
	if err == sql.ErrNoRows {
		return storedVote{}, false, nil
	}
	if err != nil {
		return storedVote{}, false, err
	}
	return v, true, nil
}

// ListVotes handles GET /polls/{id}/votes
// Votes come back in arrival order.
func (h *VoteHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if !requireAdmin(w, r, pollID, h.cfg.AdminKeySalt) {
		return
	}

	if !h.pollExists(w, r, pollID) {
		return
	}

	votes, err := loadVotes(r.Context(), h.db, pollID)
	if err != nil {
		slog.Error("failed to load votes", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteList{
		PollID: pollID,
		Votes:  votes,
	})
}

// VoteCount handles GET /polls/{id}/vote-count
func (h *VoteHandler) VoteCount(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if !h.pollExists(w, r, pollID) {
		return
	}

	var count int
	err := h.db.QueryRowContext(r.Context(), `
		SELECT COUNT(*) FROM vote WHERE poll_id = $1
	`, pollID).Scan(&count)
	if err != nil {
		slog.Error("failed to count votes", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteCountResponse{VoteCount: count})
}

// pollExists writes a 404 or 500 and returns false when the poll cannot be used.
func (h *VoteHandler) pollExists(w http.ResponseWriter, r *http.Request, pollID string) bool {
	var id string
	err := h.db.QueryRowContext(r.Context(), `SELECT id FROM poll WHERE id = $1`, pollID).Scan(&id)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return false
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return false
	}
	return true
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"slices"

	"github.com/danielhkuo/syncmeet/cliparse"
	"github.com/danielhkuo/syncmeet/middleware"
	"github.com/danielhkuo/syncmeet/models"
	"github.com/danielhkuo/syncmeet/tally"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// GetResults handles GET /polls/{id}/results
// Results are computed on every request from the stored votes; nothing is
// cached, so a late vote is always reflected.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if !requireAdmin(w, r, pollID, h.cfg.AdminKeySalt) {
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

	_, priority, err := loadRecipients(ctx, h.db, pollID)
	if err != nil {
		slog.Error("failed to load recipients", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	votes, err := loadVotes(ctx, h.db, pollID)
	if err != nil {
		slog.Error("failed to load votes", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	counted := toTallyVotes(votes)
	if !poll.AllowMultipleVotes {
		// Concurrent submissions can leave more than one row per voter.
		counted = tally.Dedupe(counted)
	}
	result := tally.Compute(counted, priority)

	slog.Debug("results computed",
		"poll_id", pollID,
		"total", result.Total,
		"decision", result.Decision,
		"tie_broken", result.TieBroken,
	)

	middleware.JSONResponse(w, http.StatusOK, buildResults(poll, result))
}

func toTallyVotes(votes []models.Vote) []tally.Vote {
	out := make([]tally.Vote, 0, len(votes))
	for _, v := range votes {
		out = append(out, tally.Vote{Email: v.Email, Slot: v.Slot})
	}
	return out
}

// buildResults shapes a tally for the wire. Counts follow first-observed order.
func buildResults(poll models.Poll, result tally.Result) models.ResultsResponse {
	resp := models.ResultsResponse{
		Poll:           poll,
		Counts:         make([]models.SlotCount, 0, len(result.Order)),
		HasDecision:    result.HasDecision,
		TieBroken:      result.TieBroken,
		PriorityBacked: result.PriorityBacked,
		TotalVotes:     result.Total,
	}
	for _, slot := range result.Order {
		resp.Counts = append(resp.Counts, models.SlotCount{
			Slot:       slot,
			Votes:      result.Counts[slot],
			Voters:     result.Voters[slot],
			Recognized: slices.Contains(poll.Slots, slot),
		})
	}
	if result.HasDecision {
		decision := result.Decision
		resp.Decision = &decision
	}
	return resp
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/syncmeet/cliparse"
	"github.com/danielhkuo/syncmeet/handlers"
	"github.com/danielhkuo/syncmeet/middleware"
)

// Banner is served at the root path.
const Banner = "syncmeet API v1"

// NewRouter registers every endpoint and applies the CORS policy.
func NewRouter(db *sql.DB, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	organizerHandler := handlers.NewOrganizerHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Polls
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/lookup", middleware.WithLogging(pollHandler.LookupByTitle))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("GET /polls/{id}/admin", middleware.WithLogging(pollHandler.GetPollAdmin))
	mux.HandleFunc("POST /polls/{id}/sent", middleware.WithLogging(pollHandler.MarkSent))

	// Votes
	mux.HandleFunc("POST /polls/{id}/votes", middleware.WithLogging(voteHandler.SubmitVote))
	mux.HandleFunc("GET /polls/{id}/votes", middleware.WithLogging(voteHandler.ListVotes))
	mux.HandleFunc("GET /polls/{id}/vote-count", middleware.WithLogging(voteHandler.VoteCount))

	// Results (admin)
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Organizers
	mux.HandleFunc("POST /organizers/register", middleware.WithLogging(organizerHandler.Register))
	mux.HandleFunc("GET /organizers/me/polls", middleware.WithLogging(organizerHandler.GetMyPolls))
	mux.HandleFunc("GET /organizers/me/polls/last", middleware.WithLogging(organizerHandler.GetLastPoll))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(Banner))
	})

	return middleware.CORS(cfg.CORSOrigins)(mux)
}

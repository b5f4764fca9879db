// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Each request gets an X-Request-ID (the caller's, or a fresh UUID). Completion
is logged with status and duration_ms.

# CORS

Cross-origin policy comes from rs/cors:

	handler := middleware.CORS(cfg.CORSOrigins)(mux)

An empty origin list or "*" allows any origin without credentials. The
X-Admin-Key, X-Organizer-ID and Idempotency-Key headers are allowed.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, X-Real-IP, then RemoteAddr. The result is hashed
before it is stored on a vote.
*/
package middleware

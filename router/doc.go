// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the SyncMeet poll store.

NewRouter returns the mux wrapped in the configured CORS policy:

	handler := router.NewRouter(db, cfg)

# Endpoints

	GET  /health
	GET  /

Polls:

	POST /polls                     - Create poll (X-Organizer-ID optional)
	GET  /polls/lookup?title=       - Newest poll with a title
	GET  /polls/{id}                - Public view
	GET  /polls/{id}/admin          - Full view (X-Admin-Key)
	POST /polls/{id}/sent           - Invitations acknowledged (X-Admin-Key)

Votes:

	POST /polls/{id}/votes          - Submit (Idempotency-Key optional)
	GET  /polls/{id}/votes          - Arrival order (X-Admin-Key)
	GET  /polls/{id}/vote-count     - Public count
	GET  /polls/{id}/results        - Tally (X-Admin-Key)

Organizers (X-Organizer-ID):

	POST /organizers/register
	GET  /organizers/me/polls
	GET  /organizers/me/polls/last

Every route except health and root is wrapped with middleware.WithLogging.
*/
package router

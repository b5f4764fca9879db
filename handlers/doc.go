// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the SyncMeet poll store.

# Handler Types

Each handler is a struct with database and config dependencies:

  - PollHandler: create, view, mark sent, title lookup
  - VoteHandler: vote submission, listing and counting
  - ResultsHandler: server-side tally
  - OrganizerHandler: organizer registration and poll history

	pollHandler := handlers.NewPollHandler(db, cfg)

# Polls

	POST /polls              → CreatePoll (returns admin_key)
	GET  /polls/{id}         → GetPoll (public: no recipients)
	GET  /polls/{id}/admin   → GetPollAdmin
	POST /polls/{id}/sent    → MarkSent
	GET  /polls/lookup?title → LookupByTitle

A poll needs a title, two or more unique slots and at least one valid
recipient. Priority emails must be recipients. Admin operations require the
X-Admin-Key header.

# Votes

	POST /polls/{id}/votes      → SubmitVote
	GET  /polls/{id}/votes      → ListVotes (admin, arrival order)
	GET  /polls/{id}/vote-count → VoteCount

A vote is an email and a slot. A slot that is not one of the poll's
candidates is still stored and counted as its own bucket. When the poll
disallows multiple votes, a voter's new vote replaces the previous one.
Requests carrying an Idempotency-Key already seen for the poll are answered
with the original vote (200, replayed), or 409 when the key was first used
for a different voter or slot.

# Results

	GET /polls/{id}/results → GetResults (admin)

Counts come from tally.Compute over the stored votes with the poll's
priority recipients.

# Organizers

	POST /organizers/register     → Register
	GET  /organizers/me/polls     → GetMyPolls
	GET  /organizers/me/polls/last → GetLastPoll

Organizer operations require the X-Organizer-ID header.
*/
package handlers

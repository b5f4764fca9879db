// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types shared by the
store API and its clients.

# Request Types

  - CreatePollRequest: title, description, slots, recipients, priority
  - SubmitVoteRequest: email, slot (title optional)

# Response Types

  - CreatePollResponse: poll_id, admin_key
  - SubmitVoteResponse: vote_id, message, replayed, replaced, recognized
  - MarkSentResponse: sent_at
  - VoteCountResponse: vote_count
  - RegisterOrganizerResponse: organizer_id, is_new
  - ResultsResponse: counts in first-observed order, decision, tie_broken
  - ErrorResponse: error, message

# Domain Types

  - Poll: public poll metadata and candidate slots
  - PollWithRecipients: organizer view including recipients and priority
  - Vote: one submitted (email, slot) pair
  - SlotCount: tally bucket for one slot

Organizer roles:

	RoleOrganizer = "organizer"
*/
package models

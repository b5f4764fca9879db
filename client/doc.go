// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is the HTTP client for the SyncMeet poll store.

	c := client.New("http://localhost:3318", client.WithOrganizerID(userID))

# Voting

	res, err := c.SubmitVote(ctx, client.VoteRequest{
		Email:  "ann@example.com",
		PollID: pollID,
		Slot:   "Tue 2pm",
	})

An empty email, poll id or slot returns StatusSkipped without a request.
A rejected vote is an *APIError; a network failure is a wrapped transport
error. Both are retried only when repeating can help (transport errors and
5xx). Every attempt of one call carries the same Idempotency-Key, and
identical concurrent calls share one request.

# Reading votes

FetchVotes lists votes in arrival order and sets aside records without an
email or slot. Tally runs tally.Compute over them with the poll's priority
recipients.

# Vote links

VoteLink.URL and ParseVoteLink encode and decode the link sent to each
recipient.
*/
package client

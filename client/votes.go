// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/syncmeet/emails"
	"github.com/danielhkuo/syncmeet/models"
	"github.com/danielhkuo/syncmeet/tally"
)

// Status is the outcome of a vote submission.
type Status int

const (
	// StatusSkipped means a required field was empty and nothing was sent.
	StatusSkipped Status = iota
	// StatusSubmitted means the store recorded a new vote.
	StatusSubmitted
	// StatusReplayed means the store already had this vote.
	StatusReplayed
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusSubmitted:
		return "submitted"
	case StatusReplayed:
		return "replayed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// VoteRequest is one voter's choice. PollTitle is carried for display and
// for stores that check it; the poll is identified by PollID.
type VoteRequest struct {
	Email     string
	PollID    string
	PollTitle string
	Slot      string
}

// SubmitResult describes what the store did with a vote.
type SubmitResult struct {
	Status     Status
	VoteID     string
	Replaced   bool
	Recognized bool
	Attempts   int
}

// sharedSubmitTimeout bounds a submission once it no longer follows the
// context of the caller that started it.
const sharedSubmitTimeout = time.Minute

// SubmitVote sends one vote to the store.
//
// An empty email, poll id or slot is not an error: the call does nothing and
// returns StatusSkipped. Transport failures and 5xx answers are retried under
// the client's RetryPolicy with a single Idempotency-Key, so a retry never
// records a second vote. Identical calls made while one is in flight share
// its result.
func (c *Client) SubmitVote(ctx context.Context, req VoteRequest) (SubmitResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.PollID = strings.TrimSpace(req.PollID)
	req.Slot = strings.TrimSpace(req.Slot)
	if req.Email == "" || req.PollID == "" || req.Slot == "" {
		return SubmitResult{Status: StatusSkipped}, nil
	}

	// The shared request outlives any single caller: a caller that gives up
	// must not fail the others that joined it.
	key := req.PollID + "\x00" + emails.Canonical(req.Email) + "\x00" + req.Slot
	ch := c.inflight.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedSubmitTimeout)
		defer cancel()
		return c.submitVote(shared, req)
	})

	select {
	case <-ctx.Done():
		return SubmitResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return SubmitResult{}, res.Err
		}
		return res.Val.(SubmitResult), nil
	}
}

func (c *Client) submitVote(ctx context.Context, req VoteRequest) (SubmitResult, error) {
	body := models.SubmitVoteRequest{
		Email: req.Email,
		Slot:  req.Slot,
		Title: strings.TrimSpace(req.PollTitle),
	}
	headers := map[string]string{"Idempotency-Key": c.newKey()}

	var resp models.SubmitVoteResponse
	path := "/polls/" + url.PathEscape(req.PollID) + "/votes"
	status, attempts, err := c.callWithRetry(ctx, http.MethodPost, path, body, headers, &resp)
	if err != nil {
		c.logger.Error("vote submission failed", "poll_id", req.PollID, "attempts", attempts, "error", err)
		return SubmitResult{Attempts: attempts}, fmt.Errorf("submit vote: %w", notFound(err))
	}

	result := SubmitResult{
		Status:     StatusSubmitted,
		VoteID:     resp.VoteID,
		Replaced:   resp.Replaced,
		Recognized: resp.Recognized,
		Attempts:   attempts,
	}
	if resp.Replayed || status == http.StatusOK {
		result.Status = StatusReplayed
	}

	c.logger.Info("vote submitted",
		"poll_id", req.PollID,
		"vote_id", result.VoteID,
		"status", result.Status.String(),
		"attempts", attempts,
	)
	if !resp.Recognized {
		c.logger.Warn("vote slot is not one of the poll's candidates", "poll_id", req.PollID, "slot", req.Slot)
	}
	return result, nil
}

// Votes is a poll's vote list split into usable and quarantined records.
type Votes struct {
	PollID string
	// Usable votes in arrival order.
	Votes []models.Vote
	// Records missing an email or a slot. They are never tallied.
	Quarantined []models.Vote
}

// Tally converts the usable votes for tally.Compute.
func (v Votes) Tally() []tally.Vote {
	out := make([]tally.Vote, 0, len(v.Votes))
	for _, vote := range v.Votes {
		out = append(out, tally.Vote{Email: vote.Email, Slot: vote.Slot})
	}
	return out
}

// FetchVotes returns every vote on the poll in arrival order.
func (c *Client) FetchVotes(ctx context.Context, pollID, adminKey string) (Votes, error) {
	var list models.VoteList
	path := "/polls/" + url.PathEscape(pollID) + "/votes"
	if _, _, err := c.callWithRetry(ctx, http.MethodGet, path, nil, map[string]string{"X-Admin-Key": adminKey}, &list); err != nil {
		return Votes{}, fmt.Errorf("fetch votes: %w", notFound(err))
	}

	votes := Votes{PollID: pollID, Votes: []models.Vote{}}
	for _, v := range list.Votes {
		if strings.TrimSpace(v.Email) == "" || strings.TrimSpace(v.Slot) == "" {
			c.logger.Warn("quarantined malformed vote", "poll_id", pollID, "vote_id", v.ID)
			votes.Quarantined = append(votes.Quarantined, v)
			continue
		}
		votes.Votes = append(votes.Votes, v)
	}
	return votes, nil
}

// Tally fetches the poll and its votes and computes the result locally,
// using the poll's priority recipients for tie-breaks.
func (c *Client) Tally(ctx context.Context, pollID, adminKey string) (tally.Result, models.Poll, error) {
	full, err := c.GetPollAdmin(ctx, pollID, adminKey)
	if err != nil {
		return tally.Result{}, models.Poll{}, err
	}

	votes, err := c.FetchVotes(ctx, pollID, adminKey)
	if err != nil {
		return tally.Result{}, models.Poll{}, err
	}

	counted := votes.Tally()
	if !full.Poll.AllowMultipleVotes {
		counted = tally.Dedupe(counted)
	}
	return tally.Compute(counted, full.Priority), full.Poll, nil
}

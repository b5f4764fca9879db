// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/danielhkuo/syncmeet/models"
)

// ErrNoOrganizer is returned by organizer calls on a client built without
// WithOrganizerID.
var ErrNoOrganizer = errors.New("organizer id not configured")

// CreatePoll stores a new poll. The response carries the admin key needed
// for every later organizer call. Creation is not retried: a lost response
// would otherwise produce a duplicate poll.
func (c *Client) CreatePoll(ctx context.Context, req models.CreatePollRequest) (models.CreatePollResponse, error) {
	var resp models.CreatePollResponse
	headers := map[string]string{"X-Organizer-ID": c.organizerID}
	if _, err := c.call(ctx, http.MethodPost, "/polls", req, headers, &resp); err != nil {
		return models.CreatePollResponse{}, fmt.Errorf("create poll: %w", err)
	}
	c.logger.Info("poll created", "poll_id", resp.PollID)
	return resp, nil
}

// GetPoll returns the public view of a poll.
func (c *Client) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	var poll models.Poll
	if _, _, err := c.callWithRetry(ctx, http.MethodGet, "/polls/"+url.PathEscape(pollID), nil, nil, &poll); err != nil {
		return models.Poll{}, fmt.Errorf("get poll: %w", notFound(err))
	}
	return poll, nil
}

// GetPollAdmin returns the poll with its recipients and priority subset.
func (c *Client) GetPollAdmin(ctx context.Context, pollID, adminKey string) (models.PollWithRecipients, error) {
	var full models.PollWithRecipients
	path := "/polls/" + url.PathEscape(pollID) + "/admin"
	if _, _, err := c.callWithRetry(ctx, http.MethodGet, path, nil, map[string]string{"X-Admin-Key": adminKey}, &full); err != nil {
		return models.PollWithRecipients{}, fmt.Errorf("get poll: %w", notFound(err))
	}
	return full, nil
}

// LookupPoll resolves a title to the newest poll carrying it.
func (c *Client) LookupPoll(ctx context.Context, title string) (models.Poll, error) {
	var poll models.Poll
	path := "/polls/lookup?" + url.Values{"title": {title}}.Encode()
	if _, _, err := c.callWithRetry(ctx, http.MethodGet, path, nil, nil, &poll); err != nil {
		return models.Poll{}, fmt.Errorf("lookup poll: %w", notFound(err))
	}
	return poll, nil
}

// MarkSent records that invitations went out and returns the stored time.
func (c *Client) MarkSent(ctx context.Context, pollID, adminKey string) (time.Time, error) {
	var resp models.MarkSentResponse
	path := "/polls/" + url.PathEscape(pollID) + "/sent"
	if _, _, err := c.callWithRetry(ctx, http.MethodPost, path, nil, map[string]string{"X-Admin-Key": adminKey}, &resp); err != nil {
		return time.Time{}, fmt.Errorf("mark sent: %w", notFound(err))
	}
	return resp.SentAt, nil
}

// Results returns the store's own tally of the poll.
func (c *Client) Results(ctx context.Context, pollID, adminKey string) (models.ResultsResponse, error) {
	var resp models.ResultsResponse
	path := "/polls/" + url.PathEscape(pollID) + "/results"
	if _, _, err := c.callWithRetry(ctx, http.MethodGet, path, nil, map[string]string{"X-Admin-Key": adminKey}, &resp); err != nil {
		return models.ResultsResponse{}, fmt.Errorf("results: %w", notFound(err))
	}
	return resp, nil
}

// LastPoll loads the organizer's newest poll. It wraps ErrNoPoll when the
// organizer has none.
func (c *Client) LastPoll(ctx context.Context) (models.LastPollResponse, error) {
	if c.organizerID == "" {
		return models.LastPollResponse{}, ErrNoOrganizer
	}
	var resp models.LastPollResponse
	headers := map[string]string{"X-Organizer-ID": c.organizerID}
	if _, _, err := c.callWithRetry(ctx, http.MethodGet, "/organizers/me/polls/last", nil, headers, &resp); err != nil {
		return models.LastPollResponse{}, fmt.Errorf("last poll: %w", notFound(err))
	}
	return resp, nil
}

// MyPolls lists the organizer's polls, newest first.
func (c *Client) MyPolls(ctx context.Context) ([]models.OrganizerPollSummary, error) {
	if c.organizerID == "" {
		return nil, ErrNoOrganizer
	}
	var resp models.GetMyPollsResponse
	headers := map[string]string{"X-Organizer-ID": c.organizerID}
	if _, _, err := c.callWithRetry(ctx, http.MethodGet, "/organizers/me/polls", nil, headers, &resp); err != nil {
		return nil, fmt.Errorf("my polls: %w", err)
	}
	return resp.Polls, nil
}

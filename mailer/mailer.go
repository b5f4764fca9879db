// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/syncmeet/client"
	"github.com/danielhkuo/syncmeet/logging"
	"github.com/danielhkuo/syncmeet/models"
)

var (
	// ErrNoRecipients is returned before any request when there is nobody to invite.
	ErrNoRecipients = errors.New("no recipients")
	// ErrDispatchFailed wraps every failure of the email service.
	ErrDispatchFailed = errors.New("failed to send invitations")
)

// Invitation is the body of POST /send-email.
type Invitation struct {
	PollID      string   `json:"poll_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Time        []string `json:"time"`
	Emails      []string `json:"emails"`
	Priority    []string `json:"priority,omitempty"`
	// MeetingLink is the generic vote page; Links holds one link per email.
	MeetingLink string            `json:"meetingLink"`
	Links       map[string]string `json:"links"`
}

// Client hands invitations to the email-dispatch service.
type Client struct {
	url      string
	votePage string
	http     *http.Client
	logger   *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a dispatcher for the service at mailerURL. Vote links point
// at votePageURL.
func New(mailerURL, votePageURL string, opts ...Option) *Client {
	c := &Client{
		url:      strings.TrimRight(mailerURL, "/"),
		votePage: votePageURL,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.Resolve(c.logger)
	return c
}

// BuildInvitation assembles the payload for a stored poll.
func (c *Client) BuildInvitation(pollID string, poll models.CreatePollRequest) (Invitation, error) {
	inv := Invitation{
		PollID:      pollID,
		Title:       poll.Title,
		Description: poll.Description,
		Time:        poll.Slots,
		Emails:      poll.Recipients,
		Priority:    poll.Priority,
		Links:       make(map[string]string, len(poll.Recipients)),
	}

	generic, err := client.VoteLink{PollID: pollID, Title: poll.Title, Slots: poll.Slots}.URL(c.votePage)
	if err != nil {
		return Invitation{}, err
	}
	inv.MeetingLink = generic

	for _, email := range poll.Recipients {
		link, err := client.VoteLink{
			Email:  email,
			PollID: pollID,
			Title:  poll.Title,
			Slots:  poll.Slots,
		}.URL(c.votePage)
		if err != nil {
			return Invitation{}, err
		}
		inv.Links[email] = link
	}
	return inv, nil
}

// Dispatch sends the invitations and returns nil once the service has
// acknowledged them with a 2xx answer.
func (c *Client) Dispatch(ctx context.Context, pollID string, poll models.CreatePollRequest) error {
	if len(poll.Recipients) == 0 {
		return ErrNoRecipients
	}

	inv, err := c.BuildInvitation(pollID, poll)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	body, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrDispatchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/send-email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("email dispatch failed", "poll_id", pollID, "error", err)
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("email service rejected invitations",
			"poll_id", pollID,
			"status", resp.StatusCode,
			"body", strings.TrimSpace(string(snippet)),
		)
		return fmt.Errorf("%w: status %d", ErrDispatchFailed, resp.StatusCode)
	}

	c.logger.Info("invitations sent", "poll_id", pollID, "recipients", len(inv.Emails))
	return nil
}

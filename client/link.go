// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Query keys of a vote link. email and title are what the first links
// carried; poll and slot were added later.
const (
	linkEmail = "email"
	linkTitle = "title"
	linkPoll  = "poll"
	linkSlot  = "slot"
)

// ErrBadLink is wrapped by ParseVoteLink for unusable links.
var ErrBadLink = errors.New("invalid vote link")

// VoteLink is the per-recipient link that opens the vote page.
type VoteLink struct {
	Email  string
	PollID string
	Title  string
	Slots  []string
}

// URL renders the link against the vote page base URL.
func (l VoteLink) URL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("vote page url: %w", err)
	}
	q := u.Query()
	if l.Email != "" {
		q.Set(linkEmail, l.Email)
	}
	if l.PollID != "" {
		q.Set(linkPoll, l.PollID)
	}
	if l.Title != "" {
		q.Set(linkTitle, l.Title)
	}
	for _, s := range l.Slots {
		q.Add(linkSlot, s)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseVoteLink decodes a vote link. The email is required, and so is the
// poll id or, for older links, the title.
func ParseVoteLink(raw string) (VoteLink, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return VoteLink{}, fmt.Errorf("%w: %v", ErrBadLink, err)
	}
	q := u.Query()

	link := VoteLink{
		Email:  strings.TrimSpace(q.Get(linkEmail)),
		PollID: strings.TrimSpace(q.Get(linkPoll)),
		Title:  strings.TrimSpace(q.Get(linkTitle)),
	}
	for _, s := range q[linkSlot] {
		if s = strings.TrimSpace(s); s != "" {
			link.Slots = append(link.Slots, s)
		}
	}

	if link.Email == "" {
		return VoteLink{}, fmt.Errorf("%w: missing email", ErrBadLink)
	}
	if link.PollID == "" && link.Title == "" {
		return VoteLink{}, fmt.Errorf("%w: missing poll", ErrBadLink)
	}
	return link, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/syncmeet/client"
	"github.com/danielhkuo/syncmeet/models"
)

func samplePoll() models.CreatePollRequest {
	return models.CreatePollRequest{
		Title:       "Design review",
		Description: "Pick a slot",
		Slots:       []string{"Mon 9am", "Tue 2pm"},
		Recipients:  []string{"ann@example.com", "ben@example.com"},
		Priority:    []string{"ben@example.com"},
	}
}

func TestDispatch(t *testing.T) {
	var got Invitation
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send-email", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "https://meet.example.com/vote")
	require.NoError(t, c.Dispatch(context.Background(), "p1", samplePoll()))

	assert.Equal(t, "p1", got.PollID)
	assert.Equal(t, "Design review", got.Title)
	assert.Equal(t, []string{"Mon 9am", "Tue 2pm"}, got.Time)
	assert.Equal(t, []string{"ann@example.com", "ben@example.com"}, got.Emails)
	assert.Equal(t, []string{"ben@example.com"}, got.Priority)
	require.Len(t, got.Links, 2)

	link, err := client.ParseVoteLink(got.Links["ann@example.com"])
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", link.Email)
	assert.Equal(t, "p1", link.PollID)
	assert.Equal(t, []string{"Mon 9am", "Tue 2pm"}, link.Slots)
	assert.NotEmpty(t, got.MeetingLink)
}

func TestDispatch_NoRecipients(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	poll := samplePoll()
	poll.Recipients = nil

	err := New(srv.URL, "https://meet.example.com/vote").Dispatch(context.Background(), "p1", poll)
	require.ErrorIs(t, err, ErrNoRecipients)
	assert.False(t, called)
}

func TestDispatch_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "smtp down", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, "https://meet.example.com/vote").Dispatch(context.Background(), "p1", samplePoll())
	require.ErrorIs(t, err, ErrDispatchFailed)
}

func TestDispatch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url, "https://meet.example.com/vote").Dispatch(context.Background(), "p1", samplePoll())
	require.ErrorIs(t, err, ErrDispatchFailed)
}

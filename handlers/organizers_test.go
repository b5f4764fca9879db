// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/syncmeet/auth"
	"github.com/danielhkuo/syncmeet/models"
	"github.com/danielhkuo/syncmeet/testutil"
)

func TestRegisterOrganizer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewOrganizerHandler(db, testutil.GetTestConfig())

	register := func(externalID string) *httptest.ResponseRecorder {
		headers := map[string]string{}
		if externalID != "" {
			headers[OrganizerIDHeader] = externalID
		}
		w := httptest.NewRecorder()
		handler.Register(w, testutil.MakeRequest("POST", "/organizers/register", nil, headers))
		return w
	}

	testutil.AssertStatus(t, register(""), http.StatusBadRequest)

	w := register("auth0|org-1")
	testutil.AssertStatus(t, w, http.StatusCreated)
	var first models.RegisterOrganizerResponse
	testutil.AssertJSON(t, w, &first)
	if !first.IsNew {
		t.Error("Expected is_new=true on first registration")
	}

	w = register("auth0|org-1")
	testutil.AssertStatus(t, w, http.StatusOK)
	var second models.RegisterOrganizerResponse
	testutil.AssertJSON(t, w, &second)
	if second.IsNew || second.OrganizerID != first.OrganizerID {
		t.Errorf("Expected existing organizer %s, got %+v", first.OrganizerID, second)
	}
}

func TestGetMyPolls(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewOrganizerHandler(db, cfg)
	pollHandler := NewPollHandler(db, cfg)

	headers := map[string]string{OrganizerIDHeader: "auth0|org-2"}

	t.Run("unregistered", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetMyPolls(w, testutil.MakeRequest("GET", "/organizers/me/polls", nil, headers))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	var ids []string
	for _, title := range []string{"First", "Second"} {
		body := validCreateRequest()
		body.Title = title
		w := httptest.NewRecorder()
		pollHandler.CreatePoll(w, testutil.MakeRequest("POST", "/polls", body, headers))
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreatePollResponse
		testutil.AssertJSON(t, w, &resp)
		ids = append(ids, resp.PollID)
	}
	testutil.SubmitTestVote(t, db, ids[0], "alice@example.com", "Mon 9am")

	w := httptest.NewRecorder()
	handler.GetMyPolls(w, testutil.MakeRequest("GET", "/organizers/me/polls", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.GetMyPollsResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Polls) != 2 {
		t.Fatalf("Expected 2 polls, got %d", len(resp.Polls))
	}
	if resp.Polls[0].Title != "Second" {
		t.Errorf("Expected newest first, got %q", resp.Polls[0].Title)
	}
	if resp.Polls[1].VoteCount != 1 {
		t.Errorf("Expected 1 vote on first poll, got %d", resp.Polls[1].VoteCount)
	}
}

func TestGetLastPoll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewOrganizerHandler(db, cfg)
	pollHandler := NewPollHandler(db, cfg)

	headers := map[string]string{OrganizerIDHeader: "auth0|org-3"}

	w := httptest.NewRecorder()
	handler.Register(w, testutil.MakeRequest("POST", "/organizers/register", nil, headers))
	testutil.AssertStatus(t, w, http.StatusCreated)

	t.Run("no polls yet", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetLastPoll(w, testutil.MakeRequest("GET", "/organizers/me/polls/last", nil, headers))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	body := validCreateRequest()
	w = httptest.NewRecorder()
	pollHandler.CreatePoll(w, testutil.MakeRequest("POST", "/polls", body, headers))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.CreatePollResponse
	testutil.AssertJSON(t, w, &created)

	w = httptest.NewRecorder()
	handler.GetLastPoll(w, testutil.MakeRequest("GET", "/organizers/me/polls/last", nil, headers))
	testutil.AssertStatus(t, w, http.StatusOK)

	var last models.LastPollResponse
	testutil.AssertJSON(t, w, &last)
	if last.Poll.ID != created.PollID {
		t.Errorf("Expected poll %s, got %s", created.PollID, last.Poll.ID)
	}
	if err := auth.ValidateAdminKey(last.Poll.ID, last.AdminKey, cfg.AdminKeySalt); err != nil {
		t.Errorf("Expected a working admin key: %v", err)
	}
	if len(last.Recipients) != len(body.Recipients) || len(last.Priority) != len(body.Priority) {
		t.Errorf("Expected recipients and priority to round-trip, got %+v", last.PollWithRecipients)
	}
}

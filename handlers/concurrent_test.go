// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/syncmeet/cliparse"
	"github.com/danielhkuo/syncmeet/models"
	"github.com/danielhkuo/syncmeet/testutil"
)

// TestConcurrentVoteSubmissions verifies that simultaneous votes from
// different voters are all stored exactly once
func TestConcurrentVoteSubmissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	pollID, _ := testutil.CreateTestPoll(t, db, cfg, testutil.TestPoll{})
	slots := []string{"Mon 9am", "Tue 2pm"}

	numVoters := 10
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			body := models.SubmitVoteRequest{
				Email: fmt.Sprintf("voter%d@example.com", voterIdx),
				Slot:  slots[voterIdx%len(slots)],
			}
			req := testutil.MakeRequest("POST", "/polls/"+pollID+"/votes", body, nil)
			req.SetPathValue("id", pollID)
			w := httptest.NewRecorder()
			handler.SubmitVote(w, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful submissions, got %d", numVoters, successCount.Load())
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM vote WHERE poll_id = $1", pollID).Scan(&count)
	if count != numVoters {
		t.Errorf("Expected %d votes, got %d", numVoters, count)
	}
}

// TestConcurrentIdempotentRetries verifies that racing retries of one
// logical vote store a single row
func TestConcurrentIdempotentRetries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg)

	pollID, _ := testutil.CreateTestPoll(t, db, cfg, testutil.TestPoll{})
	body := models.SubmitVoteRequest{Email: "alice@example.com", Slot: "Mon 9am"}

	numAttempts := 5
	var created, replayed atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/polls/"+pollID+"/votes", body, map[string]string{
				IdempotencyKeyHeader: "same-key",
			})
			req.SetPathValue("id", pollID)
			w := httptest.NewRecorder()
			handler.SubmitVote(w, req)

			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusOK:
				replayed.Add(1)
			}
		}()
	}

	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly one created vote, got %d", created.Load())
	}
	if created.Load()+replayed.Load() != int32(numAttempts) {
		t.Errorf("Expected every attempt to succeed, got %d created and %d replayed", created.Load(), replayed.Load())
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM vote WHERE poll_id = $1", pollID).Scan(&count)
	if count != 1 {
		t.Errorf("Expected 1 vote, got %d", count)
	}
}

// TestConcurrentSingleVoteUpdates verifies that a voter changing their mind
// several times at once ends with exactly one vote under the single policy
func TestConcurrentSingleVoteUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	cfg.VotePolicy = cliparse.VotePolicySingle
	handler := NewVoteHandler(db, cfg)

	pollID, _ := testutil.CreateTestPoll(t, db, cfg, testutil.TestPoll{})
	slots := []string{"Mon 9am", "Tue 2pm"}

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			body := models.SubmitVoteRequest{Email: "alice@example.com", Slot: slots[idx%2]}
			req := testutil.MakeRequest("POST", "/polls/"+pollID+"/votes", body, nil)
			req.SetPathValue("id", pollID)
			handler.SubmitVote(httptest.NewRecorder(), req)
		}(i)
	}

	wg.Wait()

	var count int
	db.QueryRow("SELECT COUNT(*) FROM vote WHERE poll_id = $1", pollID).Scan(&count)
	if count != 1 {
		t.Errorf("Expected a single vote after concurrent updates, got %d", count)
	}
}

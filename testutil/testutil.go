// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/syncmeet/auth"
	"github.com/danielhkuo/syncmeet/cliparse"
	"github.com/danielhkuo/syncmeet/db"
	"github.com/danielhkuo/syncmeet/emails"
)

// sqlitePragmas let concurrent test requests wait on the write lock.
const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// SetupTestDB creates a fresh SQLite database in a temp dir with the full
// schema. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := GetTestConfig()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "syncmeet.db") + sqlitePragmas

	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(conn, cfg.DatabaseType); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseType: cliparse.DatabaseSQLite,
		AdminKeySalt: "test-admin-salt",
		IPHashSalt:   "test-ip-salt",
		Env:          "test",
		VotePolicy:   cliparse.VotePolicyMultiple,
		CORSOrigins:  []string{"*"},
	}
}

// TestPoll describes a poll for CreateTestPoll. Zero fields get defaults.
type TestPoll struct {
	Title              string
	Slots              []string
	Recipients         []string
	Priority           []string
	AllowMultipleVotes *bool
}

// CreateTestPoll inserts a poll and returns its ID and admin key
func CreateTestPoll(t *testing.T, db *sql.DB, cfg cliparse.Config, p TestPoll) (pollID, adminKey string) {
	t.Helper()

	if p.Title == "" {
		p.Title = "Test Poll"
	}
	if p.Slots == nil {
		p.Slots = []string{"Mon 9am", "Tue 2pm"}
	}
	if p.Recipients == nil {
		p.Recipients = []string{"alice@example.com", "bob@example.com"}
	}
	allowMultiple := cfg.AllowMultipleVotes()
	if p.AllowMultipleVotes != nil {
		allowMultiple = *p.AllowMultipleVotes
	}

	pollID = auth.NewID()
	adminKey = auth.GenerateAdminKey(pollID, cfg.AdminKeySalt)

	_, err := db.Exec(`
		INSERT INTO poll (id, title, description, allow_multiple_votes, created_at)
		VALUES ($1, $2, 'A test poll', $3, $4)
	`, pollID, p.Title, allowMultiple, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for i, slot := range p.Slots {
		if _, err := db.Exec(`
			INSERT INTO poll_slot (poll_id, position, value) VALUES ($1, $2, $3)
		`, pollID, i, slot); err != nil {
			t.Fatalf("Failed to create test slot: %v", err)
		}
	}

	priority := make(map[string]bool, len(p.Priority))
	for _, e := range p.Priority {
		priority[e] = true
	}
	for i, email := range p.Recipients {
		if _, err := db.Exec(`
			INSERT INTO poll_recipient (poll_id, position, email, priority) VALUES ($1, $2, $3, $4)
		`, pollID, i, email, priority[email]); err != nil {
			t.Fatalf("Failed to create test recipient: %v", err)
		}
	}

	return pollID, adminKey
}

// SubmitTestVote inserts a vote directly and returns its ID
func SubmitTestVote(t *testing.T, db *sql.DB, pollID, email, slot string) string {
	t.Helper()

	voteID := auth.NewID()
	_, err := db.Exec(`
		INSERT INTO vote (id, poll_id, email, email_key, slot, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voteID, pollID, email, emails.Canonical(email), slot, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return voteID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool { return &b }

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewID(t *testing.T) {
	id := NewID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("NewID() = %q is not a UUID: %v", id, err)
	}

	// Test randomness - two IDs should be different
	if NewID() == NewID() {
		t.Error("NewID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestNewIdempotencyKey(t *testing.T) {
	k1 := NewIdempotencyKey()
	k2 := NewIdempotencyKey()
	if k1 == "" || k1 == k2 {
		t.Errorf("expected distinct non-empty keys, got %q and %q", k1, k2)
	}
}

func TestGenerateAdminKey(t *testing.T) {
	tests := []struct {
		name   string
		pollID string
		salt   string
	}{
		{"standard", "poll123", "secret-salt"},
		{"empty poll id", "", "salt"},
		{"empty salt", "poll456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key1 := GenerateAdminKey(tt.pollID, tt.salt)
			key2 := GenerateAdminKey(tt.pollID, tt.salt)

			// Deterministic
			if key1 != key2 {
				t.Errorf("GenerateAdminKey() not deterministic: %s != %s", key1, key2)
			}

			// No padding
			if strings.Contains(key1, "=") {
				t.Errorf("GenerateAdminKey() contains padding: %s", key1)
			}
		})
	}

	if GenerateAdminKey("poll", "salt-a") == GenerateAdminKey("poll", "salt-b") {
		t.Error("different salts should produce different keys")
	}
}

func TestValidateAdminKey(t *testing.T) {
	pollID := "poll-123"
	salt := "secret"
	validKey := GenerateAdminKey(pollID, salt)

	tests := []struct {
		name    string
		pollID  string
		key     string
		wantErr bool
	}{
		{"valid key", pollID, validKey, false},
		{"wrong key", pollID, "not-the-key", true},
		{"empty key", pollID, "", true},
		{"other poll", "poll-456", validKey, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminKey(tt.pollID, tt.key, salt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAdminKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && err != ErrInvalidAdminKey {
				t.Errorf("expected ErrInvalidAdminKey, got %v", err)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	h1 := HashIP("192.168.1.1", "salt")
	h2 := HashIP("192.168.1.1", "salt")
	h3 := HashIP("192.168.1.2", "salt")

	if h1 != h2 {
		t.Error("HashIP() should be deterministic")
	}
	if h1 == h3 {
		t.Error("different IPs should hash differently")
	}
	if len(h1) != 16 {
		t.Errorf("HashIP() length = %d, want 16", len(h1))
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides key and identifier generation for the poll store.

Voters are not authenticated: anyone holding a vote link may vote. Only the
organizer's views (recipients, votes, results) are guarded.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(pollID, salt)
	err := auth.ValidateAdminKey(pollID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same poll ID and salt always produce the same key, so it never needs to be
stored.

# Identifiers

	pollID := auth.NewID()            // random UUID
	key := auth.NewIdempotencyKey()   // one per logical vote submission

# IP Hashing

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package mailer posts poll invitations to the email-dispatch service.
// Each recipient gets a vote link carrying their email, the poll id, the
// title and the candidate slots.
package mailer

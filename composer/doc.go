// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package composer holds the state of a poll while an organizer writes it
// and sends it: title, description, candidate slots, recipients parsed from
// free text, and the priority voters who break ties.
//
// Submit stores the poll through a PollStore and hands it to a Dispatcher.
// The production implementations are client.Client and mailer.Client.
package composer

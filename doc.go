// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the SyncMeet poll store.

SyncMeet helps an organizer pick a meeting time: the organizer proposes
candidate slots and invites recipients by email, each recipient votes for a
slot, and the tally picks the most-voted slot. Ties go to the first slot
backed by a priority recipient.

# Starting the Server

	DATABASE_URL=./syncmeet.db ADMIN_KEY_SALT=... go run .

Or with flags, or a YAML file:

	go run . -p 3318 -t postgres -d "postgres://..."
	go run . -c config.yaml

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string
  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - IP_HASH_SALT (-ip-salt): defaults to the admin salt
  - ENV (-env), LOG_FORMAT (-log-format)
  - VOTE_POLICY (-vote-policy): multiple or single (default: multiple)
  - CORS_ORIGINS: comma list (default: *)

# Architecture

  - handlers: HTTP request handlers (polls, votes, results, organizers)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: IDs, admin keys, IP hashing
  - db: Connection and migrations
  - cliparse: Configuration parsing
  - logging: slog handler selection

The core used by front ends lives in emails, tally, client and composer;
mailer and presenter adapt it to the email dispatcher and to text output.
cmd/pollctl drives all of it from the command line.
*/
package main

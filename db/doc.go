// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the poll store and keeps its schema current.

# Connecting

Open picks the driver from the configured database type:

	conn, err := db.Open(cfg) // "postgres" via lib/pq, "sqlite" via modernc.org/sqlite

SQLite DSNs should point at a file. An in-memory DSN gives every pooled
connection its own empty database.

# Migrations

Migrations are embedded per dialect under migrations/postgres and
migrations/sqlite and applied with golang-migrate:

	if err := db.Migrate(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call on every start.

# Tables

  - poll: title, description, vote policy, sent timestamp
  - poll_slot: candidate time slots in display order
  - poll_recipient: invited emails, priority flag
  - vote: one row per submission; seq is arrival order
  - organizer: organizers keyed by auth-provider id
  - organizer_poll: links organizers to polls they created

# Relationships

	poll 1──* poll_slot
	poll 1──* poll_recipient
	poll 1──* vote
	organizer *──* poll (via organizer_poll)

All foreign keys use ON DELETE CASCADE.
*/
package db

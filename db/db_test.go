// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/syncmeet/cliparse"
)

func sqliteConfig(t *testing.T) cliparse.Config {
	t.Helper()
	return cliparse.Config{
		DatabaseType: cliparse.DatabaseSQLite,
		DatabaseURL:  filepath.Join(t.TempDir(), "syncmeet.db"),
	}
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(cliparse.Config{DatabaseType: "mysql", DatabaseURL: "x"})
	require.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestMigrateUnsupported(t *testing.T) {
	conn, err := Open(sqliteConfig(t))
	require.NoError(t, err)
	defer conn.Close()

	require.ErrorIs(t, Migrate(conn, "mysql"), ErrUnsupportedDriver)
}

func TestMigrateSQLite(t *testing.T) {
	cfg := sqliteConfig(t)
	conn, err := Open(cfg)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Migrate(conn, cfg.DatabaseType))
	// second run is a no-op
	require.NoError(t, Migrate(conn, cfg.DatabaseType))

	for _, table := range []string{"poll", "poll_slot", "poll_recipient", "vote", "organizer", "organizer_poll"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestVoteSeqIsArrivalOrder(t *testing.T) {
	cfg := sqliteConfig(t)
	conn, err := Open(cfg)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, Migrate(conn, cfg.DatabaseType))

	_, err = conn.Exec(`INSERT INTO poll (id, title) VALUES ('p1', 'Standup')`)
	require.NoError(t, err)

	for _, id := range []string{"v-c", "v-a", "v-b"} {
		_, err := conn.Exec(`INSERT INTO vote (id, poll_id, email, email_key, slot) VALUES ($1, 'p1', 'a@b.co', 'a@b.co', '9am')`, id)
		require.NoError(t, err)
	}

	rows, err := conn.Query(`SELECT id FROM vote WHERE poll_id = 'p1' ORDER BY seq`)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		got = append(got, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"v-c", "v-a", "v-b"}, got)
}

func TestIdempotencyKeyUnique(t *testing.T) {
	cfg := sqliteConfig(t)
	conn, err := Open(cfg)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, Migrate(conn, cfg.DatabaseType))

	_, err = conn.Exec(`INSERT INTO poll (id, title) VALUES ('p1', 'Standup')`)
	require.NoError(t, err)

	insert := `INSERT INTO vote (id, poll_id, email, email_key, slot, idempotency_key) VALUES ($1, 'p1', 'a@b.co', 'a@b.co', '9am', $2)`
	_, err = conn.Exec(insert, "v1", "key-1")
	require.NoError(t, err)
	_, err = conn.Exec(insert, "v2", "key-1")
	assert.Error(t, err)

	// NULL keys never collide
	_, err = conn.Exec(insert, "v3", nil)
	require.NoError(t, err)
	_, err = conn.Exec(insert, "v4", nil)
	require.NoError(t, err)
}

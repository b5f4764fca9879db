// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSONWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "prod", "", false)

	log.Info("poll created", "poll_id", "p1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "poll created", line["msg"])
	assert.Equal(t, "p1", line["poll_id"])
}

func TestNewWithWriter_TextOnTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "prod", "", true)

	log.Info("vote submitted", "slot", "T1")

	assert.Contains(t, buf.String(), "msg=\"vote submitted\"")
	assert.Contains(t, buf.String(), "slot=T1")
}

func TestNewWithWriter_FormatOverride(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "prod", "JSON", true)

	log.Info("hello")

	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestNewWithWriter_Levels(t *testing.T) {
	var local, prod bytes.Buffer
	NewWithWriter(&local, EnvLocal, FormatText, false).Debug("details")
	NewWithWriter(&prod, "prod", FormatText, false).Debug("details")

	assert.Contains(t, local.String(), "details")
	assert.Empty(t, prod.String())
}

func TestResolve(t *testing.T) {
	assert.Equal(t, slog.Default(), Resolve(nil))

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, custom, Resolve(custom))
}

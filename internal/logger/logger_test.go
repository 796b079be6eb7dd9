package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestModule_AddsField(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "debug")
	t.Cleanup(func() { Log = zerolog.Nop() })

	Module("vcard").Debug().Str("tag", "TEL").Msg("dropped property")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "vcard", entry["module"])
	require.Equal(t, "TEL", entry["tag"])
	require.Equal(t, "debug", entry["level"])
}

func TestModule_FollowsLaterInit(t *testing.T) {
	var first, second bytes.Buffer
	InitWriter(&first, "info")
	t.Cleanup(func() { Log = zerolog.Nop() })

	Module("ops").Info().Msg("one")
	InitWriter(&second, "info")
	Module("ops").Info().Msg("two")

	require.Contains(t, first.String(), "one")
	require.NotContains(t, first.String(), "two")
	require.Contains(t, second.String(), `"module":"ops"`)
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn")
	t.Cleanup(func() { Log = zerolog.Nop() })

	Log.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	Log.Warn().Msg("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "loud")
	t.Cleanup(func() { Log = zerolog.Nop() })

	require.Equal(t, zerolog.InfoLevel, Log.GetLevel())
}

package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCombinedScore(t *testing.T) {
	t.Parallel()

	p := Program{Metrics: map[string]float64{"combined_score": 0.82, "speed": 1.1}}
	score, ok := p.CombinedScore()
	require.True(t, ok)
	require.InDelta(t, 0.82, score, 1e-9)

	_, ok = Program{Metrics: map[string]float64{"speed": 1.1}}.CombinedScore()
	require.False(t, ok)
	_, ok = Program{}.CombinedScore()
	require.False(t, ok)
}

func TestTimestampMillis(t *testing.T) {
	t.Parallel()

	p := Program{Timestamp: "2026-08-01T10:00:00Z"}
	require.Equal(t, int64(1785578400000), p.TimestampMillis())

	require.Zero(t, Program{Timestamp: "not-a-time"}.TimestampMillis())
	require.Zero(t, Program{}.TimestampMillis())
}

func TestRunStatusTerminal(t *testing.T) {
	t.Parallel()

	require.True(t, RunCompleted.Terminal())
	require.True(t, RunFailed.Terminal())
	require.False(t, RunRunning.Terminal())
	require.False(t, RunPaused.Terminal())
}

func TestFormatMetadataValue(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0.1235", FormatMetadataValue(0.12345))
	require.Equal(t, "42", FormatMetadataValue(42))
	require.Equal(t, "42", FormatMetadataValue(int64(42)))
	require.Equal(t, "mutation", FormatMetadataValue("mutation"))
	require.Equal(t, "true", FormatMetadataValue(true))
}

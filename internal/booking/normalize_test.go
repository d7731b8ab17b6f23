package booking

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalizeKeepsExplicitOffset(t *testing.T) {
	n := NewNormalizer(discardLogger())

	in := n.Normalize("2024-09-01T14:00:00-04:00", time.UTC)
	require.True(t, in.IsZoned())
	assert.Equal(t, "2024-09-01T14:00:00-04:00", in.String())
}

func TestNormalizeKeepsUTCMarker(t *testing.T) {
	n := NewNormalizer(discardLogger())

	in := n.Normalize("2024-09-01T14:00:00Z", time.UTC)
	require.True(t, in.IsZoned())
	assert.Equal(t, "2024-09-01T14:00:00Z", in.String())
}

func TestNormalizeIsIdempotentForUnambiguousInput(t *testing.T) {
	n := NewNormalizer(discardLogger())
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	for _, raw := range []string{
		"2024-09-01T14:00:00Z",
		"2024-09-01T14:00:00-04:00",
		"2024-09-01T14:00:00+09:00",
		"2024-09-01",
	} {
		once := n.Normalize(raw, ny)
		twice := n.Normalize(once.String(), ny)
		assert.Equal(t, once.String(), twice.String(), "normalize should be idempotent for %q", raw)
	}
}

func TestNormalizeDateOnlyPassesThroughUnchanged(t *testing.T) {
	n := NewNormalizer(discardLogger())

	in := n.Normalize("2024-09-01", time.UTC)
	require.True(t, in.IsAllDay())
	assert.Equal(t, "2024-09-01", in.String())
	assert.Empty(t, in.Zone(), "all-day events carry no timezone")
}

func TestNormalizeAttachesDefaultZoneToNaiveTimestamp(t *testing.T) {
	n := NewNormalizer(discardLogger())
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	in := n.Normalize("2024-09-01T14:00:00", ny)
	require.True(t, in.IsZoned())
	assert.Equal(t, "America/New_York", in.Zone())
	assert.Equal(t, "2024-09-01T14:00:00-04:00", in.String())

	// Re-parsing yields the same wall-clock time in the attached zone.
	parsed, ok := in.Time()
	require.True(t, ok)
	assert.Equal(t, 14, parsed.Hour())
	assert.Equal(t, "America/New_York", parsed.Location().String())
}

func TestNormalizeRecoversMinutePrecision(t *testing.T) {
	n := NewNormalizer(discardLogger())

	in := n.Normalize("2024-09-01T14:00", time.UTC)
	require.True(t, in.IsZoned())
	assert.Equal(t, "2024-09-01T14:00:00Z", in.String())
}

func TestNormalizeEmptyStringReturnsEmpty(t *testing.T) {
	n := NewNormalizer(discardLogger())

	in := n.Normalize("", time.UTC)
	assert.True(t, in.IsZero())
	assert.Equal(t, "", in.String())
}

func TestNormalizeUnparseableInputPassesThrough(t *testing.T) {
	n := NewNormalizer(discardLogger())

	raw := "half past nine someday"
	in := n.Normalize(raw, time.UTC)
	assert.False(t, in.IsZoned())
	assert.False(t, in.IsAllDay())
	assert.Equal(t, raw, in.String(), "unparseable input degrades to passthrough")
}

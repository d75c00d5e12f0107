package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	ts, err := Parse("20240315143022")
	require.NoError(t, err)
	assert.Equal(t, "20240315143022", Format(ts))
}

func TestParseRejectsWrongLength(t *testing.T) {
	_, err := Parse("2024031514302")
	assert.Error(t, err)
}

func TestParseRejectsNonDigits(t *testing.T) {
	_, err := Parse("2024031514302x")
	assert.Error(t, err)
}

func TestDefaultRangeDefaultsFrom(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 22, 0, time.UTC)
	from, to, err := DefaultRange("", "", now)
	require.NoError(t, err)
	assert.Equal(t, "20240301000000", Format(from))
	assert.Equal(t, "20240315143022", Format(to))
}

func TestDefaultRangeRejectsFromAfterTo(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 22, 0, time.UTC)
	_, _, err := DefaultRange("20240401000000", "", now)
	assert.Error(t, err)
}

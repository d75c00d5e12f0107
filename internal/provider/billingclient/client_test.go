package billingclient

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRetryAfterSeconds(t *testing.T) {
	d, ok := parseRetryAfter("5")
	require.True(t, ok)
	require.Equal(t, 5*time.Second, d)
}

func TestParseRetryAfterHTTPDate(t *testing.T) {
	future := time.Now().Add(2 * time.Minute).UTC().Format(http.TimeFormat)
	d, ok := parseRetryAfter(future)
	require.True(t, ok)
	require.Greater(t, d, time.Duration(0))
}

func TestParseRetryAfterEmpty(t *testing.T) {
	_, ok := parseRetryAfter("")
	require.False(t, ok)
}

func TestParseRetryAfterGarbage(t *testing.T) {
	_, ok := parseRetryAfter("not-a-time")
	require.False(t, ok)
}

package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganshmuel/platform/internal/apperr"
	"ganshmuel/platform/internal/billing/store"
)

func TestParseExcelRoundTrip(t *testing.T) {
	rows := []store.Rate{
		{Product: "Apples", Scope: store.AllScope, RateAmt: 5},
		{Product: "Oranges", Scope: "3", RateAmt: 7},
	}
	data, err := WriteExcel(rows)
	require.NoError(t, err)

	parsed, err := ParseExcel(data)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "Apples", parsed[0].Product)
	assert.Equal(t, store.AllScope, parsed[0].Scope)
	assert.Equal(t, 5, parsed[0].RateAmt)
	assert.Equal(t, "3", parsed[1].Scope)
}

func TestReplaceFromRowsRejectsBadScope(t *testing.T) {
	svc := New(nil)
	err := svc.ReplaceFromRows(nil, []store.Rate{{Product: "Apples", Scope: "not-a-number", RateAmt: 5}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestReplaceFromRowsRejectsEmptyProduct(t *testing.T) {
	svc := New(nil)
	err := svc.ReplaceFromRows(nil, []store.Rate{{Product: "  ", Scope: store.AllScope, RateAmt: 1}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestResolveFromRowsPrefersProviderScopeOverAll(t *testing.T) {
	rows := []store.Rate{
		{Product: "Apples", Scope: store.AllScope, RateAmt: 5},
		{Product: "Apples", Scope: "7", RateAmt: 9},
	}
	rate, err := resolveFromRows(rows, "Apples", 7)
	require.NoError(t, err)
	assert.Equal(t, 9, rate)
}

func TestResolveFromRowsFallsBackToAll(t *testing.T) {
	rows := []store.Rate{{Product: "Apples", Scope: store.AllScope, RateAmt: 5}}
	rate, err := resolveFromRows(rows, "Apples", 7)
	require.NoError(t, err)
	assert.Equal(t, 5, rate)
}

func TestResolveFromRowsNotFound(t *testing.T) {
	_, err := resolveFromRows(nil, "Apples", 7)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

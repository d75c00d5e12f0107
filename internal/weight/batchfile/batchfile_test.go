package batchfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVTwoColumnHeuristic(t *testing.T) {
	res, err := ParseCSV(strings.NewReader("C1,300\nC2,900\n"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "kg", res.Rows[0].Unit)
	assert.Equal(t, "lbs", res.Rows[1].Unit)
	assert.True(t, res.UsedHeuristic)
}

func TestParseCSVThreeColumnExplicitUnit(t *testing.T) {
	res, err := ParseCSV(strings.NewReader("id,weight,unit\nC1,500,kg\nC2,1000,lbs\n"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "kg", res.Rows[0].Unit)
	assert.Equal(t, "lbs", res.Rows[1].Unit)
	assert.False(t, res.UsedHeuristic)
}

func TestParseCSVEmptyFails(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseJSONDefaultsUnitToKg(t *testing.T) {
	res, err := ParseJSON(strings.NewReader(`[{"id":"C1","weight":500},{"id":"C2","weight":10,"unit":"lbs"}]`))
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "kg", res.Rows[0].Unit)
	assert.Equal(t, "lbs", res.Rows[1].Unit)
}

func TestResolvePathRejectsTraversal(t *testing.T) {
	_, err := ResolvePath("/data/uploads", "../../etc/passwd")
	assert.Error(t, err)
}

func TestResolvePathRejectsAbsolute(t *testing.T) {
	_, err := ResolvePath("/data/uploads", "/etc/passwd")
	assert.Error(t, err)
}

func TestResolvePathAcceptsRelative(t *testing.T) {
	p, err := ResolvePath("/data/uploads", "containers.csv")
	require.NoError(t, err)
	assert.Equal(t, "/data/uploads/containers.csv", p)
}

func TestParseByExtensionEnforcesSizeCap(t *testing.T) {
	_, err := ParseByExtension("big.csv", MaxFileSizeBytes+1, strings.NewReader(""))
	assert.Error(t, err)
}

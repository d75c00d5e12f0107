package weighmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKgIsIdentity(t *testing.T) {
	v, err := Normalize(4200, Kg)
	require.NoError(t, err)
	assert.Equal(t, 4200, v)
}

func TestNormalizeLbsToKg(t *testing.T) {
	v, err := Normalize(1000, Lbs)
	require.NoError(t, err)
	assert.Equal(t, 454, v)
}

func TestNormalizeRoundTripKgIsIdentity(t *testing.T) {
	lbsToKg, err := Normalize(1000, Lbs)
	require.NoError(t, err)
	again, err := Normalize(lbsToKg, Kg)
	require.NoError(t, err)
	assert.Equal(t, lbsToKg, again)
}

func TestNormalizeRejectsUnknownUnit(t *testing.T) {
	_, err := Normalize(100, "stone")
	assert.Error(t, err)
}

func TestValidateRejectsZeroAndNegative(t *testing.T) {
	assert.Error(t, Validate(0))
	assert.Error(t, Validate(-5))
}

func TestValidateRejectsOverCeiling(t *testing.T) {
	assert.Error(t, Validate(MaxWeightKg+1))
}

func TestValidateAcceptsInRange(t *testing.T) {
	assert.NoError(t, Validate(1))
	assert.NoError(t, Validate(MaxWeightKg))
}

func TestTruckTaraClampsAtZero(t *testing.T) {
	assert.Equal(t, 0, TruckTara(500, 600))
	assert.Equal(t, 100, TruckTara(600, 500))
}

func TestNetWeightClampsAtZero(t *testing.T) {
	assert.Equal(t, 0, NetWeight(4000, 5000))
	assert.Equal(t, 6000, NetWeight(10000, 4000))
}

func TestScenarioStandardBilling(t *testing.T) {
	// From spec §8 scenario 1: IN bruto=10000, containers C1=500 C2=600,
	// OUT bruto=4000. truck_tara = max(0, 4000-1100) = 2900,
	// neto = max(0, 10000-4000) = 6000.
	containerTara := 1100
	truckTara := TruckTara(4000, containerTara)
	neto := NetWeight(10000, 4000)
	assert.Equal(t, 2900, truckTara)
	assert.Equal(t, 6000, neto)
}

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyItemRegisteredIsAlwaysContainer(t *testing.T) {
	assert.Equal(t, KindContainer, ClassifyItem(true, UsageCounts{AsTruck: 5, AsContainer: 0}))
}

func TestClassifyItemUnknownWhenNoUsage(t *testing.T) {
	assert.Equal(t, KindUnknown, ClassifyItem(false, UsageCounts{}))
}

func TestClassifyItemPrefersContainerOnTie(t *testing.T) {
	assert.Equal(t, KindContainer, ClassifyItem(false, UsageCounts{AsTruck: 3, AsContainer: 3}))
}

func TestClassifyItemTruckWhenTruckDominates(t *testing.T) {
	assert.Equal(t, KindTruck, ClassifyItem(false, UsageCounts{AsTruck: 5, AsContainer: 1}))
}

func TestClassifyItemContainerWhenContainerDominates(t *testing.T) {
	assert.Equal(t, KindContainer, ClassifyItem(false, UsageCounts{AsTruck: 1, AsContainer: 5}))
}

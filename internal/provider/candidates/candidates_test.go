package candidates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganshmuel/platform/internal/apperr"
)

func TestCreateRejectsEmptyCompanyName(t *testing.T) {
	svc := New(nil, nil)
	_, err := svc.Create(context.Background(), CreateInput{
		CompanyName:     "  ",
		ContactEmail:    "a@b.com",
		Products:        []string{"apples"},
		TruckCount:      1,
		CapacityTonsDay: 1,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateRejectsInvalidEmail(t *testing.T) {
	svc := New(nil, nil)
	_, err := svc.Create(context.Background(), CreateInput{
		CompanyName:     "Acme",
		ContactEmail:    "not-an-email",
		Products:        []string{"apples"},
		TruckCount:      1,
		CapacityTonsDay: 1,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateRejectsEmptyProducts(t *testing.T) {
	svc := New(nil, nil)
	_, err := svc.Create(context.Background(), CreateInput{
		CompanyName:     "Acme",
		ContactEmail:    "a@b.com",
		Products:        nil,
		TruckCount:      1,
		CapacityTonsDay: 1,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateRejectsUnknownProduct(t *testing.T) {
	svc := New(nil, nil)
	_, err := svc.Create(context.Background(), CreateInput{
		CompanyName:     "Acme",
		ContactEmail:    "a@b.com",
		Products:        []string{"kiwis"},
		TruckCount:      1,
		CapacityTonsDay: 1,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateRejectsNonPositiveTruckCount(t *testing.T) {
	svc := New(nil, nil)
	_, err := svc.Create(context.Background(), CreateInput{
		CompanyName:     "Acme",
		ContactEmail:    "a@b.com",
		Products:        []string{"apples"},
		TruckCount:      0,
		CapacityTonsDay: 1,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

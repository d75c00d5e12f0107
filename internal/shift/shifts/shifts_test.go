package shifts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ganshmuel/platform/internal/apperr"
)

func TestStartRejectsEmptyOperator(t *testing.T) {
	s := New(nil)
	_, err := s.Start(context.Background(), "   ", "")
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

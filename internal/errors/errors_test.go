package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "tickerbot/internal/errors"
)

func TestWrap_MatchesSentinelByCode(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("dial tcp: i/o timeout")
	err := fmt.Errorf("fetching quote: %w", apperrors.Wrap(apperrors.ErrDataSourceUnavailable, cause))

	require.ErrorIs(t, err, apperrors.ErrDataSourceUnavailable)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, apperrors.ErrSymbolNotRecognized)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, "DATA_SOURCE_UNAVAILABLE", appErr.Code)
	require.Contains(t, appErr.Error(), "i/o timeout")
}

func TestWithMessage_KeepsCode(t *testing.T) {
	t.Parallel()

	err := apperrors.WithMessage(apperrors.ErrInvalidInput, "missing query parameter q")
	require.Equal(t, "missing query parameter q", err.Error())
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

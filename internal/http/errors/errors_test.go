package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrPasswordTooWeak.WithDetail("too_short"))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, map[string]string{
		"code":    "PASSWORD_TOO_WEAK",
		"message": ErrPasswordTooWeak.Message,
		"detail":  "too_short",
	}, body)
	require.Empty(t, ErrPasswordTooWeak.Detail, "WithDetail must not mutate the shared value")
}

func TestWriteError_HidesCause(t *testing.T) {
	cause := stderrors.New("pq: relation app_user does not exist")

	rec := httptest.NewRecorder()
	WriteError(rec, cause)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "app_user")

	wrapped := ErrServiceUnavailable.WithCause(cause)
	require.ErrorIs(t, wrapped, cause)
	rec = httptest.NewRecorder()
	WriteError(rec, wrapped)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotContains(t, rec.Body.String(), "app_user")
}

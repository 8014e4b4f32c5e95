package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	dto "github.com/dropDatabas3/hellologin/internal/http/dto/health"
)

func TestHealthz(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	rec := httptest.NewRecorder()
	NewHealthController(map[string]Pinger{"store": ok, "cache": ok}, []string{"google"}).
		Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ready", resp.Status)
	require.Equal(t, map[string]string{"store": "ok", "cache": "ok"}, resp.Components)
	require.Equal(t, []string{"google"}, resp.Providers)

	rec = httptest.NewRecorder()
	NewHealthController(map[string]Pinger{"store": ok, "cache": down}, nil).
		Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotContains(t, rec.Body.String(), "refused")

	resp = dto.Response{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "unavailable", resp.Status)
	require.Equal(t, "down", resp.Components["cache"])
	require.Empty(t, resp.Providers)
}

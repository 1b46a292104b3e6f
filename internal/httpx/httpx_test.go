package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "tickerbot/internal/errors"
	"tickerbot/internal/httpx"
)

func TestClient_SetsDefaultHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "tickerbot/1.0", r.Header.Get("User-Agent"))
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := httpx.New(time.Second)
	c.Headers = map[string]string{"Accept": "application/json"}

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, httpx.GetJSON(t.Context(), c, server.URL, nil, &out))
	require.True(t, out.OK)
}

func TestGet_NonOKIsUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := httpx.Get(t.Context(), httpx.New(time.Second), server.URL, nil)
	require.ErrorIs(t, err, apperrors.ErrDataSourceUnavailable)
}

func TestGet_TimeoutIsUnavailable(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	_, err := httpx.Get(ctx, httpx.New(time.Second), server.URL, nil)
	require.ErrorIs(t, err, apperrors.ErrDataSourceUnavailable)
}

func TestGetJSON_BadBodyIsUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	var out map[string]any
	err := httpx.GetJSON(t.Context(), httpx.New(time.Second), server.URL, nil, &out)
	require.ErrorIs(t, err, apperrors.ErrDataSourceUnavailable)
}

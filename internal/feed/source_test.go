package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablero/internal/config"
)

func streamCfg(t *testing.T, name string) config.Stream {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	s, ok := cfg.Stream(name)
	require.True(t, ok)
	return s
}

func TestHTTPSourceSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_data_ultimas", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"success": true, "data": [{"TICKER": "AL30", "VN": -100, "PX": 71.2}]}`))
	}))
	defer server.Close()

	src, err := NewHTTPSource(streamCfg(t, "last_orders"), NewClient(server.URL), nil)
	require.NoError(t, err)

	snap := src.Poll(context.Background())
	assert.True(t, snap.Success)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, "AL30", snap.Rows[0].Get("TICKER").String())
	assert.False(t, snap.ReceivedAt.IsZero())
}

func TestHTTPSourceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	src, err := NewHTTPSource(streamCfg(t, "intraday"), NewClient(url, WithTimeout(time.Second)), nil)
	require.NoError(t, err)

	snap := src.Poll(context.Background())
	assert.True(t, snap.Failed())
	assert.Equal(t, MsgUnavailable, snap.Message)
	assert.Empty(t, snap.Rows)
}

func TestHTTPSourceServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"success": false, "message": "Base de datos fuera de línea"}`))
	}))
	defer server.Close()

	src, err := NewHTTPSource(streamCfg(t, "intraday"), NewClient(server.URL), nil)
	require.NoError(t, err)

	snap := src.Poll(context.Background())
	assert.True(t, snap.Failed())
	assert.Equal(t, "Base de datos fuera de línea", snap.Message)
}

func TestHTTPSourceInvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	src, err := NewHTTPSource(streamCfg(t, "pending"), NewClient(server.URL), nil)
	require.NoError(t, err)

	snap := src.Poll(context.Background())
	assert.True(t, snap.Failed())
	assert.Equal(t, MsgInvalid, snap.Message)
}

func TestClientRetriesRetryable(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, WithRetries(3, 0))
	body, err := c.Get(context.Background(), "/x")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL, WithRetries(2, time.Millisecond))
	_, err := c.Get(context.Background(), "/x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", WithRetries(3, 0))
	_, err := c.Get(context.Background(), "/missing")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.False(t, apiErr.IsRetryable())
	assert.Equal(t, int32(1), calls.Load())
}

func TestAPIErrorRetryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tt := range tests {
		err := &APIError{StatusCode: tt.code}
		if got := err.IsRetryable(); got != tt.want {
			t.Errorf("APIError{%d}.IsRetryable() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

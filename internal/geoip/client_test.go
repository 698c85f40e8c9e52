package geoip

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(2*time.Second, slog.Default())
	c.baseURL = srv.URL
	return c
}

func TestLocate_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"success","lat":33.6846,"lon":-117.8265}`))
	})

	pos, err := c.Locate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 33.6846, pos.Lat, 1e-9)
	assert.InDelta(t, -117.8265, pos.Lng, 1e-9)
}

func TestLocate_Denied(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"private range"}`))
	})

	_, err := c.Locate(context.Background())
	assert.ErrorIs(t, err, ErrDenied)
}

func TestLocate_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Locate(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDenied)
}

func TestLocate_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":`))
	})

	_, err := c.Locate(context.Background())
	require.Error(t, err)
}

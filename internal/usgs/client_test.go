package usgs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 0, 0, zerolog.Nop())
}

func TestLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "-68.200000", r.URL.Query().Get("x"))
		assert.Equal(t, "44.300000", r.URL.Query().Get("y"))
		assert.Equal(t, "Meters", r.URL.Query().Get("units"))
		w.Write([]byte(`{"value": 152.5}`))
	})

	elevation, ok := client.Lookup(context.Background(), 44.3, -68.2)
	assert.True(t, ok)
	assert.Equal(t, 152.5, elevation)
}

func TestLookupIntegerValue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value": 500}`))
	})

	elevation, ok := client.Lookup(context.Background(), 44.3, -68.2)
	assert.True(t, ok)
	assert.Equal(t, 500.0, elevation)
}

func TestLookupStringValue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value": "152.5"}`))
	})

	elevation, ok := client.Lookup(context.Background(), 44.3, -68.2)
	assert.True(t, ok)
	assert.Equal(t, 152.5, elevation)
}

func TestLookupNoDataSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value": -1000000}`))
	})

	_, ok := client.Lookup(context.Background(), 44.3, -68.2)
	assert.False(t, ok)
}

func TestLookupNullValue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value": null}`))
	})

	_, ok := client.Lookup(context.Background(), 44.3, -68.2)
	assert.False(t, ok)
}

func TestLookupOutOfRange(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value": 99999}`))
	})

	_, ok := client.Lookup(context.Background(), 44.3, -68.2)
	assert.False(t, ok)
}

func TestLookupServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, ok := client.Lookup(context.Background(), 44.3, -68.2)
	assert.False(t, ok)
}

func TestLookupMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	})

	_, ok := client.Lookup(context.Background(), 44.3, -68.2)
	assert.False(t, ok)
}

func TestLookupCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value": 152.5}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := client.Lookup(ctx, 44.3, -68.2)
	assert.False(t, ok)
}

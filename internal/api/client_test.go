package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"evodash/internal/token"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *token.Slot) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	slot := token.New(filepath.Join(t.TempDir(), "token"))
	return New(srv.URL, slot, WithTimeout(2*time.Second)), slot
}

func TestClientAttachesBearerToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	client, slot := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	require.NoError(t, slot.Set("tok-1"))

	_, err := client.Runs(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-1", gotAuth)
}

func TestClientOmitsAuthorizationWhenSlotEmpty(t *testing.T) {
	t.Parallel()

	var hadAuth bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.Write([]byte(`[]`))
	}))

	_, err := client.Runs(context.Background())
	require.NoError(t, err)
	require.False(t, hadAuth)
}

func TestClientUnauthorizedClearsSlotAndFiresHandler(t *testing.T) {
	t.Parallel()

	client, slot := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	require.NoError(t, slot.Set("stale"))

	var fired atomic.Bool
	client.SetUnauthorizedHandler(func() { fired.Store(true) })

	_, err := client.Runs(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Empty(t, slot.Get())
	require.True(t, fired.Load())
	t.Log("credential dropped and teardown hook fired")
}

func TestClientLogin401IsOrdinaryRejection(t *testing.T) {
	t.Parallel()

	client, slot := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	require.NoError(t, slot.Set("previous"))

	var fired atomic.Bool
	client.SetUnauthorizedHandler(func() { fired.Store(true) })

	_, err := client.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, "Invalid credentials", Message(err, "fallback"))

	// A rejected login must not revoke the previously stored credential.
	require.Equal(t, "previous", slot.Get())
	require.False(t, fired.Load())
}

func TestClientDecodesErrorEnvelope(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"Run already stopped"}`))
	}))

	_, err := client.StopRun(context.Background(), "run-1")
	require.Error(t, err)
	require.Equal(t, "Run already stopped", Message(err, "fallback"))
	require.Equal(t, "fallback", Message(context.Canceled, "fallback"))
}

func TestClientProgramsQueryCarriesRunID(t *testing.T) {
	t.Parallel()

	var gotRunID string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRunID = r.URL.Query().Get("runId")
		w.Write([]byte(`[{"id":"p1","generation":3}]`))
	}))

	programs, err := client.Programs(context.Background(), "run-7")
	require.NoError(t, err)
	require.Equal(t, "run-7", gotRunID)
	require.Len(t, programs, 1)
	require.Equal(t, 3, programs[0].Generation)
}

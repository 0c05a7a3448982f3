package store

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"evodash/internal/api"
	"evodash/internal/token"
)

// newTestBackend stands up a fake dashboard server and a client wired to a
// throwaway token slot.
func newTestBackend(t *testing.T, handler http.Handler) (*api.Client, *token.Slot) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	slot := token.New(filepath.Join(t.TempDir(), "token"))
	client := api.New(srv.URL, slot, api.WithTimeout(2*time.Second))
	return client, slot
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"kavita_notification_bot/internal/domain/notified"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(discard{})
	return l
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// vaultStub simulates the companion service: health endpoint plus the
// notified-list read/write endpoints.
type vaultStub struct {
	mu      sync.Mutex
	healthy bool
	ids     []string
	putFail bool
	puts    int
}

func (v *vaultStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		v.mu.Lock()
		defer v.mu.Unlock()
		status := "online"
		if !v.healthy {
			status = "offline"
		}
		fmt.Fprintf(w, `{"status":%q,"components":{"storage":%q}}`, status, status)
	})
	mux.HandleFunc("/api/notifications/kavita", func(w http.ResponseWriter, r *http.Request) {
		v.mu.Lock()
		defer v.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{"source": "kavita", "ids": v.ids})
		case http.MethodPut:
			v.puts++
			if v.putFail {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			var payload struct {
				IDs []string `json:"ids"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			v.ids = payload.IDs
		}
	})
	return mux
}

func newTestStore(t *testing.T, stub *vaultStub) *NotifiedStore {
	t.Helper()
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)
	store := NewNotifiedStore(NewClient(server.URL, nil), "kavita", quietLogger())
	store.waitTimeout = 100 * time.Millisecond
	store.pollInterval = 10 * time.Millisecond
	return store
}

func TestLoadReturnsStoredIDs(t *testing.T) {
	stub := &vaultStub{healthy: true, ids: []string{"a", "b"}}
	store := newTestStore(t, stub)

	set := store.Load(context.Background())
	if set.Len() != 2 || !set.Contains("a") || !set.Contains("b") {
		t.Fatalf("unexpected set contents: %v", set.IDs())
	}
}

func TestLoadFailsOpenWhenNeverHealthy(t *testing.T) {
	stub := &vaultStub{healthy: false, ids: []string{"a"}}
	store := newTestStore(t, stub)

	set := store.Load(context.Background())
	if set == nil {
		t.Fatalf("load must never return nil")
	}
	if set.Len() != 0 {
		t.Fatalf("expected an empty set when the vault never reports healthy, got %v", set.IDs())
	}
}

func TestSaveWritesWholeSet(t *testing.T) {
	stub := &vaultStub{healthy: true}
	store := newTestStore(t, stub)

	set := notified.NewSet("x", "y", "z")
	if !store.Save(context.Background(), set) {
		t.Fatalf("save failed unexpectedly")
	}
	if len(stub.ids) != 3 {
		t.Fatalf("expected whole set persisted, got %v", stub.ids)
	}
}

func TestSaveReturnsFalseOnWriteFailure(t *testing.T) {
	stub := &vaultStub{healthy: true, putFail: true}
	store := newTestStore(t, stub)

	if store.Save(context.Background(), notified.NewSet("x")) {
		t.Fatalf("save must report false on a write failure")
	}
}

func TestSaveReturnsFalseWhenUnhealthy(t *testing.T) {
	stub := &vaultStub{healthy: false}
	store := newTestStore(t, stub)

	if store.Save(context.Background(), notified.NewSet("x")) {
		t.Fatalf("save must report false when the vault never reports healthy")
	}
	if stub.puts != 0 {
		t.Fatalf("no write must be attempted against an unhealthy vault")
	}
}

func TestLoadWaitsForHealthToRecover(t *testing.T) {
	stub := &vaultStub{healthy: false, ids: []string{"a"}}
	store := newTestStore(t, stub)

	go func() {
		time.Sleep(30 * time.Millisecond)
		stub.mu.Lock()
		stub.healthy = true
		stub.mu.Unlock()
	}()

	set := store.Load(context.Background())
	if !set.Contains("a") {
		t.Fatalf("expected the load to succeed once the vault recovered, got %v", set.IDs())
	}
}

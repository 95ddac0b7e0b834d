package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bitfantasy/partslib/internal/parts/events"
	"github.com/bitfantasy/partslib/internal/parts/testutil"
	"go.uber.org/zap/zaptest"
)

// openStream connects to the event stream and returns a line reader over the body.
func openStream(t *testing.T, ctx context.Context, url string) *bufio.Scanner {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to open stream: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Expected text/event-stream, got %q", ct)
	}
	return bufio.NewScanner(resp.Body)
}

func nextLine(t *testing.T, s *bufio.Scanner) string {
	t.Helper()
	if !s.Scan() {
		t.Fatalf("stream ended early: %v", s.Err())
	}
	return s.Text()
}

func waitForClients(t *testing.T, hub *events.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d SSE clients, have %d", want, hub.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEventStream(t *testing.T) {
	router, env := setupLibraryTest(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := openStream(t, ctx, srv.URL+"/api/v1/events")

	if line := nextLine(t, s); line != "event: connected" {
		t.Fatalf("Expected connected event, got %q", line)
	}
	if line := nextLine(t, s); !strings.HasPrefix(line, `data: {"client_id":`) {
		t.Errorf("Unexpected connected payload %q", line)
	}
	nextLine(t, s)
	waitForClients(t, env.Hub, 1)

	testutil.SeedComponent(t, env, "SSE-1")

	if line := nextLine(t, s); line != "event: "+events.ComponentCreated {
		t.Fatalf("Expected %s, got %q", events.ComponentCreated, line)
	}
	if line := nextLine(t, s); !strings.Contains(line, `"SSE-1"`) {
		t.Errorf("Expected component number in payload, got %q", line)
	}

	cancel()
	waitForClients(t, env.Hub, 0)
}

func TestEventStream_Heartbeat(t *testing.T) {
	env := testutil.SetupEnv(t)
	h := NewSSEHandler(env.Hub, zaptest.NewLogger(t))
	h.heartbeat = 20 * time.Millisecond
	router := testutil.SetupRouter()
	router.GET("/events", h.Stream)
	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := openStream(t, ctx, srv.URL+"/events")

	for i := 0; i < 3; i++ {
		nextLine(t, s)
	}
	if line := nextLine(t, s); line != ": keepalive" {
		t.Errorf("Expected keepalive comment, got %q", line)
	}
}

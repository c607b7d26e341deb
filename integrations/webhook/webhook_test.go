package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"arcadekit/core"
)

func TestSink_OnEventPostsToEndpoints(t *testing.T) {
	var hits int32
	var lastType atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		var ev core.Event
		_ = json.Unmarshal(body, &ev)
		lastType.Store(ev.Type)
	}))
	defer srv.Close()

	sink := New([]string{srv.URL})
	sink.OnEvent(core.NewScoreSubmitted("u1", "g1", 500))

	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", hits)
	}
	if lastType.Load() != core.EventScoreSubmitted {
		t.Fatalf("unexpected event type: %v", lastType.Load())
	}
}

func TestSink_SecretHeader(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("X-Webhook-Secret"))
	}))
	defer srv.Close()

	sink := New([]string{srv.URL}, WithSecret("s3cret"))
	sink.OnEvent(core.NewAchievementUnlocked("u1", core.TypeFirstGame))

	if got.Load() != "s3cret" {
		t.Fatalf("expected secret header, got %v", got.Load())
	}
}

func TestSink_NoEndpointsIsNoop(t *testing.T) {
	sink := New(nil)
	sink.OnEvent(core.NewGameCreated("u1", "g1"))
}

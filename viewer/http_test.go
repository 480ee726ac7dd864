package viewer

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandlerBeforeFirstFrame(t *testing.T) {
	h := Handler(&Image{}, 0, nil)
	if rec := get(t, h, "/chart.png"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /chart.png = %d, want 503", rec.Code)
	}
}

func TestHandler(t *testing.T) {
	im := &Image{}
	im.Set("RED queue", []byte("\x89PNG fake"))
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "redplot_series_points 1\n")
	})
	h := Handler(im, 1500*time.Millisecond, metrics)

	rec := get(t, h, "/chart.png")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("GET /chart.png = %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec.Body.String() != "\x89PNG fake" {
		t.Errorf("body = %q", rec.Body.String())
	}

	rec = get(t, h, "/")
	body := rec.Body.String()
	if !strings.Contains(body, "<title>RED queue</title>") {
		t.Errorf("page missing title:\n%s", body)
	}
	if !strings.Contains(body, `content="2"`) {
		t.Errorf("page refresh not rounded up to 2s:\n%s", body)
	}

	if rec := get(t, h, "/metrics"); !strings.Contains(rec.Body.String(), "redplot_series_points") {
		t.Errorf("/metrics = %q", rec.Body.String())
	}
	if rec := get(t, h, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", rec.Code)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, addr, Handler(&Image{}, 0, nil), zerolog.Nop())
	}()

	// Wait for the listener.
	deadline := time.Now().Add(2 * time.Second)
	for {
		c, err := net.Dial("tcp", addr)
		if err == nil {
			c.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("viewer never listened: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

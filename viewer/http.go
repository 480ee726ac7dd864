// Package viewer shows a rendered figure until the user is done with it,
// either in a browser or in the terminal.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Image holds the latest PNG frame. Safe for concurrent use.
type Image struct {
	mu      sync.RWMutex
	png     []byte
	title   string
	updated time.Time
}

func (im *Image) Set(title string, png []byte) {
	im.mu.Lock()
	im.title = title
	im.png = png
	im.updated = time.Now()
	im.mu.Unlock()
}

func (im *Image) Get() (string, []byte, time.Time) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.title, im.png, im.updated
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title>{{if .Refresh}}
<meta http-equiv="refresh" content="{{.Refresh}}">{{end}}</head>
<body>
<h3>{{.Title}}</h3>
<img src="/chart.png?t={{.Stamp}}" alt="{{.Title}}">
<p>updated {{.Updated}}</p>
</body>
</html>
`))

// Handler serves the page at / and the frame at /chart.png. A non-zero
// refresh makes the page reload itself. extra, when non-nil, is mounted
// at /metrics.
func Handler(im *Image, refresh time.Duration, extra http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chart.png", func(w http.ResponseWriter, r *http.Request) {
		_, png, updated := im.Get()
		if png == nil {
			http.Error(w, "chart not rendered yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Last-Modified", updated.UTC().Format(http.TimeFormat))
		w.Write(png)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		title, _, updated := im.Get()
		secs := 0
		if refresh > 0 {
			secs = int((refresh + time.Second - 1) / time.Second)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page.Execute(w, struct {
			Title   string
			Refresh int
			Stamp   int64
			Updated string
		}{title, secs, updated.UnixNano(), updated.Format(time.RFC3339)})
	})
	if extra != nil {
		mux.Handle("/metrics", extra)
	}
	return mux
}

// Serve listens on addr and blocks until ctx is cancelled.
func Serve(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("viewer listen: %w", err)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	log.Info().Str("url", "http://"+ln.Addr().String()+"/").Msg("serving chart, interrupt to quit")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

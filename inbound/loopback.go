package inbound

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goerrors "github.com/goliatone/go-errors"
)

const (
	DefaultLoopbackPath = "/callback"
	defaultLoopbackPage = "<!doctype html><html><body><p>Payment finished. You can return to the app.</p></body></html>"
)

type LoopbackConfig struct {
	// Path is the route the payment page redirects to. Defaults to /callback.
	Path string
	// Scheme prefixes the rebuilt callback URL so it passes the manager's
	// callback scheme check. Defaults to http.
	Scheme string
	// Page is the HTML returned to the browser after a delivery.
	Page string
}

// NewLoopbackRouter serves GET {Path}?status=... on a local listener and
// forwards the request as a callback URL to deliverer.
func NewLoopbackRouter(deliverer Deliverer, cfg LoopbackConfig) http.Handler {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = DefaultLoopbackPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	scheme := strings.TrimSuffix(strings.TrimSpace(cfg.Scheme), "://")
	if scheme == "" {
		scheme = "http"
	}
	page := cfg.Page
	if page == "" {
		page = defaultLoopbackPage
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get(path, func(w http.ResponseWriter, r *http.Request) {
		if deliverer == nil {
			http.Error(w, "callback receiver unavailable", http.StatusServiceUnavailable)
			return
		}
		rawURL := scheme + "://" + r.Host + r.URL.Path
		if r.URL.RawQuery != "" {
			rawURL += "?" + r.URL.RawQuery
		}
		if err := deliverer.Deliver(rawURL); err != nil {
			http.Error(w, http.StatusText(statusForError(err)), statusForError(err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(page))
	})
	return router
}

func statusForError(err error) int {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr != nil && richErr.Code != 0 {
		return richErr.Code
	}
	return http.StatusInternalServerError
}

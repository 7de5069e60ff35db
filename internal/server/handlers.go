package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leappage/internal/builder"
	"github.com/leapstack-labs/leappage/internal/server/notifier"
	"github.com/leapstack-labs/leappage/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

const maxFormBytes = 8 << 20

// Session keys.
const (
	sessionName = "leappage"
	lastPageKey = "last_page"
)

// Handlers serves pages and the page builder over HTTP.
type Handlers struct {
	builder  *builder.PageBuilder
	store    core.PageStore
	notify   *notifier.Notifier
	sessions sessions.Store
	logger   *slog.Logger
}

// NewHandlers creates handlers.
func NewHandlers(b *builder.PageBuilder, store core.PageStore, notify *notifier.Notifier, sessionStore sessions.Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{builder: b, store: store, notify: notify, sessions: sessionStore, logger: logger}
}

// Home reopens the editor on the last edited page, or lists the pages.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	target := "/pages"
	if sess, err := h.sessions.Get(r, sessionName); err == nil {
		if id, ok := sess.Values[lastPageKey].(string); ok && id != "" {
			target = "/pagebuilder/" + builder.ActionEdit + "?page=" + url.QueryEscape(id)
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// ListPages returns the page list as JSON.
func (h *Handlers) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.store.ListAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	body, err := json.Marshal(pages)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// ViewPage renders a stored page in Live mode.
func (h *Handlers) ViewPage(w http.ResponseWriter, r *http.Request) {
	resp, err := h.builder.ServePage(r.Context(), chi.URLParam(r, "id"), coreRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp.Write(w)
}

// PageBuilder dispatches /pagebuilder/{action}.
func (h *Handlers) PageBuilder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	action := chi.URLParam(r, "action")
	resp, err := h.builder.HandleRequest(r.Context(), action, coreRequest(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if action == builder.ActionEdit && resp.Status == http.StatusOK {
		h.rememberPage(w, r, r.Form.Get("page"))
	}
	resp.Write(w)
}

// rememberPage records the page an editor was opened on. A broken
// session only costs the redirect, so failures are logged.
func (h *Handlers) rememberPage(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.sessions.Get(r, sessionName)
	if err != nil {
		h.logger.Debug("discarding unreadable session", "error", err)
	}
	sess.Values[lastPageKey] = id
	if err := sess.Save(r, w); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}
}

// Events streams reload scripts to open editors.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	ch := h.notify.Subscribe()
	defer h.notify.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			h.logger.Debug("pushing reload", "theme", ev.Theme, "file", ev.File)
			if err := sse.ExecuteScript("window.location.reload()"); err != nil {
				return
			}
		}
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// coreRequest builds the explicit request context handed to controllers.
// ParseForm must have run for posted fields to be present.
func coreRequest(r *http.Request) *core.Request {
	return &core.Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Form:   r.PostForm,
	}
}

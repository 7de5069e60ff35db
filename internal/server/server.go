// Package server serves pages and the page builder over HTTP and reloads
// the theme when its files change.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leappage/internal/builder"
	"github.com/leapstack-labs/leappage/internal/server/notifier"
	"github.com/leapstack-labs/leappage/pkg/core"
	"golang.org/x/sync/errgroup"
)

const reloadDebounce = 100 * time.Millisecond

// Reloader reloads theme descriptors from disk.
type Reloader interface {
	Name() string
	Reload() error
}

// Server is the HTTP server.
type Server struct {
	builder  *builder.PageBuilder
	store    core.PageStore
	theme    Reloader
	themeDir string
	port     int
	watch    bool
	logger   *slog.Logger
	notifier *notifier.Notifier
	sessions *sessions.CookieStore
}

// Config holds configuration for the server.
type Config struct {
	Builder  *builder.PageBuilder
	Store    core.PageStore
	Theme    Reloader
	ThemeDir string
	Port     int
	Watch    bool
	Logger   *slog.Logger

	// SessionSecret signs the editor session cookie. When empty a random
	// key is used and sessions end with the process.
	SessionSecret string
}

// NewServer creates a new server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
	}
	sessionStore := sessions.NewCookieStore(secret)
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		builder:  cfg.Builder,
		store:    cfg.Store,
		theme:    cfg.Theme,
		themeDir: cfg.ThemeDir,
		port:     cfg.Port,
		watch:    cfg.Watch,
		logger:   logger,
		notifier: notifier.New(),
		sessions: sessionStore,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	SetupRoutes(r, NewHandlers(s.builder, s.store, s.notifier, s.sessions, s.logger))
	return r
}

// Notifier returns the server's reload notifier.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch && s.theme != nil && s.themeDir != "" {
		eg.Go(func() error {
			return s.watchTheme(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchTheme reloads the theme when one of its files changes.
func (s *Server) watchTheme(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, s.themeDir); err != nil {
		s.logger.Error("failed to watch theme directory", "dir", s.themeDir, "error", err)
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				// New block directories need their own watch.
				_ = watchDirRecursive(watcher, event.Name)
			}
			if !isThemeFile(event) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			file := event.Name
			debounceTimer = time.AfterFunc(reloadDebounce, func() {
				s.reload(file)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// reload rescans the theme and tells open editors to refresh.
func (s *Server) reload(file string) {
	s.logger.Debug("theme file changed, reloading", "file", file)
	if err := s.theme.Reload(); err != nil {
		s.logger.Error("theme reload failed", "theme", s.theme.Name(), "error", err)
		return
	}
	s.notifier.Broadcast(notifier.Event{Theme: s.theme.Name(), File: file})
}

func isThemeFile(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	switch filepath.Ext(event.Name) {
	case ".html", ".tmpl", ".star", ".yaml", ".yml":
		return true
	}
	return false
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

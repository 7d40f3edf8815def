package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/artwall/internal/client/client"
	"github.com/dmitrijs2005/artwall/internal/client/config"
	"github.com/dmitrijs2005/artwall/internal/client/identity"
	"github.com/dmitrijs2005/artwall/internal/client/leaderboard"
	"github.com/dmitrijs2005/artwall/internal/client/repositories/prefs"
	"github.com/dmitrijs2005/artwall/internal/client/services"
	"github.com/dmitrijs2005/artwall/internal/client/session"
	"github.com/dmitrijs2005/artwall/internal/client/store"
	"github.com/dmitrijs2005/artwall/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	baseURL  string
	gallery  services.GalleryService
	store    *store.Store
	board    *leaderboard.Deriver
	identity *identity.Provider
	session  *session.Session
	closers  []io.Closer
	reader   *bufio.Reader
	out      io.Writer

	modeMu sync.RWMutex
	mode   Mode
}

// NewApp opens the local state, builds the API client and wires the
// gallery components around one store.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repo, stateCloser, err := client.OpenPrefs(ctx, c.StateDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing local state: %w", err)
	}

	var sess *session.Session
	api, err := client.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout, client.TokenFunc(func() string {
		return sess.Token()
	}))
	if err != nil {
		_ = stateCloser.Close()
		return nil, err
	}
	sess = session.New(repo, api, log)

	a := assemble(c, log, api, repo, sess)
	a.baseURL = api.BaseURL()
	a.closers = []io.Closer{api, stateCloser}

	if err := sess.Restore(ctx); err != nil {
		log.Warn(ctx, "admin session not restored", "error", err)
	}
	if _, err := a.identity.ResolveUserID(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func assemble(c *config.Config, log logging.Logger, api client.Client, repo prefs.Repository, sess *session.Session) *App {
	id := identity.NewProvider(repo)
	st := store.New()
	return &App{
		config:   c,
		log:      log,
		gallery:  services.NewGalleryService(api, st, id, sess, log),
		store:    st,
		board:    leaderboard.New(st, c.LeaderboardSize, c.LeaderboardInterval, log),
		identity: id,
		session:  sess,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

// setMode reports whether the mode changed.
func (a *App) setMode(mode Mode) bool {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
	return changed
}

func (a *App) isPrivileged() bool {
	return a.session.IsPrivileged()
}

// StartOnlineStatusWatcher pings the server every interval until ctx is
// done. Coming back online triggers a full refresh. A non-positive
// interval disables the watcher.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.gallery.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	if a.setMode(ModeOnline) {
		if err := a.gallery.Refresh(ctx); err != nil {
			a.log.Warn(ctx, "refresh after reconnect failed", "error", err)
		}
	}
}

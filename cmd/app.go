package cmd

import (
	"github.com/iksnae/devchat/internal"
	"github.com/iksnae/devchat/internal/render"
)

// app wires the client components for one command invocation
type app struct {
	cfg      *internal.Config
	store    *internal.CredentialStore
	client   *internal.Client
	terminal *render.Terminal

	// set by RequireAuth
	profile  internal.Profile
	cache    *internal.CacheManager
	registry *internal.Registry
	pipeline *internal.Pipeline
}

func newApp(cfg *internal.Config) *app {
	store := internal.NewCredentialStore(cfg.Paths.CredentialsPath())
	gate := internal.NewAuthGate(cfg.APIURL, store,
		internal.WithTimeout(cfg.RequestTimeout),
		internal.WithRateLimit(cfg.RateLimit),
	)

	var highlighter render.Highlighter = render.NewChromaHighlighter(cfg.CodeStyle)
	if cfg.NoColor {
		highlighter = render.PlainHighlighter{}
	}

	return &app{
		cfg:      cfg,
		store:    store,
		client:   internal.NewClient(gate),
		terminal: render.NewTerminal(highlighter, cfg.Width),
	}
}

// RequireAuth runs the route guard and, when it passes, builds the session
// registry, message pipeline and session list cache.
func (a *app) RequireAuth() error {
	profile, err := internal.RequireAuth(a.store)
	if err != nil {
		return err
	}
	a.profile = profile

	var cache internal.SessionCache
	if a.cache == nil {
		cm, err := internal.NewCacheManager(a.cfg.Paths.CachePath())
		if err != nil {
			internal.LogWarn("Session cache unavailable: %v", err)
		} else {
			a.cache = cm
		}
	}
	if a.cache != nil {
		cache = a.cache.Scope(a.cfg.APIURL, profile.Email)
	}

	a.registry = internal.NewRegistry(a.client, internal.NewTranscript(""), cache)
	a.pipeline = internal.NewPipeline(a.client, a.registry)
	return nil
}

// Close waits for background work and releases the cache
func (a *app) Close() {
	if a.pipeline != nil {
		a.pipeline.Wait()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			internal.LogDebug("Failed to close session cache: %v", err)
		}
	}
}

// Logout clears the credential and the session list cache
func (a *app) Logout() error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	cm := a.cache
	if cm == nil {
		var err error
		cm, err = internal.NewCacheManager(a.cfg.Paths.CachePath())
		if err != nil {
			internal.LogDebug("No session cache to clear: %v", err)
			return nil
		}
		defer cm.Close()
	}
	if err := cm.ClearCache(); err != nil {
		internal.LogWarn("Failed to clear session cache: %v", err)
	}
	return nil
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tntchem/devhub/store"
)

// Stores bundles the persistence interfaces the router needs.
type Stores struct {
	Compounds   store.CompoundStore
	Deployments store.DeploymentStore
	Users       store.UserStore
	Sessions    store.SessionStore
}

// Config holds router settings.
type Config struct {
	LinkSecret     []byte
	Issuer         string
	BaseURL        string
	LinkTTL        time.Duration
	SessionTTL     time.Duration
	AuthRateLimit  int
	OAuthProviders map[string]*OAuthProviderConfig
	Logger         *slog.Logger
	Mailer         Mailer
}

// NewRouter wires all HTTP routes. The compound endpoints require a session;
// the status endpoint and the webhook receiver are open.
func NewRouter(stores Stores, cfg Config) (http.Handler, *Middleware) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mailer := cfg.Mailer
	if mailer == nil {
		mailer = &LogMailer{Logger: logger}
	}

	mw := NewMiddleware(stores.Sessions, stores.Users)
	limit := mw.RateLimit(cfg.AuthRateLimit)

	auth := NewAuthHandler(stores.Users, stores.Sessions, mailer, cfg.LinkSecret, cfg.Issuer, cfg.BaseURL, cfg.LinkTTL, cfg.SessionTTL)
	compounds := NewCompoundHandler(stores.Compounds, logger)
	webhooks := NewWebhookHandler(stores.Deployments, logger)
	status := NewStatusHandler(stores.Deployments, logger)

	mux := http.NewServeMux()

	mux.Handle("POST /api/auth/magic-link", limit(http.HandlerFunc(auth.MagicLink)))
	mux.Handle("GET /api/auth/callback", limit(http.HandlerFunc(auth.Callback)))
	mux.Handle("POST /api/auth", limit(http.HandlerFunc(auth.SignOut)))

	if len(cfg.OAuthProviders) > 0 {
		oauth := NewOAuthHandler(stores.Users, stores.Sessions, cfg.OAuthProviders, cfg.SessionTTL)
		mux.Handle("GET /api/auth/oauth/{provider}", limit(http.HandlerFunc(oauth.Authorize)))
		mux.Handle("GET /api/auth/oauth/{provider}/callback", limit(http.HandlerFunc(oauth.Callback)))
	}

	mux.Handle("GET /api/compounds", mw.RequireAuth(http.HandlerFunc(compounds.List)))
	mux.Handle("POST /api/compounds", mw.RequireAuth(http.HandlerFunc(compounds.Save)))
	mux.Handle("POST /api/compounds/seed", mw.RequireAuth(http.HandlerFunc(compounds.Seed)))

	mux.HandleFunc("GET /api/status", status.Get)
	mux.HandleFunc("POST /api/webhooks", webhooks.Receive)

	mux.Handle("GET /metrics", promhttp.Handler())

	return Instrument(mux), mw
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/tntchem/devhub/store"
)

// OAuthProviderConfig describes one OAuth2 provider.
type OAuthProviderConfig struct {
	ClientID     string   `json:"client_id" yaml:"client_id"`
	ClientSecret string   `json:"client_secret" yaml:"client_secret"`
	RedirectURL  string   `json:"redirect_url" yaml:"redirect_url"`
	Scopes       []string `json:"scopes" yaml:"scopes"`
	AuthURL      string   `json:"auth_url" yaml:"auth_url"`
	TokenURL     string   `json:"token_url" yaml:"token_url"`
	UserInfoURL  string   `json:"user_info_url" yaml:"user_info_url"`
}

// OAuthHandler handles redirect-based OAuth2 sign-in.
type OAuthHandler struct {
	users      store.UserStore
	sessions   store.SessionStore
	providers  map[string]*OAuthProviderConfig
	configs    map[string]*oauth2.Config
	sessionTTL time.Duration
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(users store.UserStore, sessions store.SessionStore, providers map[string]*OAuthProviderConfig, sessionTTL time.Duration) *OAuthHandler {
	configs := make(map[string]*oauth2.Config, len(providers))
	for name, p := range providers {
		configs[name] = &oauth2.Config{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			RedirectURL:  p.RedirectURL,
			Scopes:       p.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  p.AuthURL,
				TokenURL: p.TokenURL,
			},
		}
	}
	if sessionTTL == 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &OAuthHandler{
		users:      users,
		sessions:   sessions,
		providers:  providers,
		configs:    configs,
		sessionTTL: sessionTTL,
	}
}

// Authorize handles GET /api/auth/oauth/{provider}. It generates a state
// parameter, stores it in a cookie, and redirects to the provider.
func (h *OAuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	cfg, ok := h.configs[provider]
	if !ok {
		WriteError(w, http.StatusNotFound, "unknown oauth provider")
		return
	}

	state, err := randomHex(16)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /api/auth/oauth/{provider}/callback. It verifies the
// state, exchanges the code, resolves the user, and issues a session.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	cfg, ok := h.configs[provider]
	if !ok {
		WriteError(w, http.StatusNotFound, "unknown oauth provider")
		return
	}
	prov := h.providers[provider]

	cookie, err := r.Cookie("oauth_state")
	if err != nil || cookie.Value != r.URL.Query().Get("state") {
		WriteError(w, http.StatusBadRequest, "invalid state parameter")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		WriteError(w, http.StatusBadRequest, "missing code parameter")
		return
	}

	tok, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "code exchange failed")
		return
	}

	info, err := fetchUserInfo(r, cfg, tok, prov.UserInfoURL)
	if err != nil {
		WriteError(w, http.StatusBadGateway, "fetch user info failed")
		return
	}

	user, err := h.resolveUser(r, store.OAuthProvider(provider), info)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if _, err := issueSession(r.Context(), h.sessions, w, user.ID, r, h.sessionTTL); err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := time.Now()
	user.LastLoginAt = &now
	_ = h.users.Update(r.Context(), user)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// oauthUserInfo is the subset of a provider's userinfo response we consume.
type oauthUserInfo struct {
	Sub   string `json:"sub"`
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (info oauthUserInfo) subject() string {
	if info.Sub != "" {
		return info.Sub
	}
	return info.ID
}

func fetchUserInfo(r *http.Request, cfg *oauth2.Config, tok *oauth2.Token, userInfoURL string) (*oauthUserInfo, error) {
	client := cfg.Client(r.Context(), tok)
	resp, err := client.Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info status %d", resp.StatusCode)
	}

	var info oauthUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	if info.Email == "" {
		return nil, errors.New("user info has no email")
	}
	return &info, nil
}

// resolveUser finds the user by OAuth identity, falls back to email, and
// creates a new account when neither exists.
func (h *OAuthHandler) resolveUser(r *http.Request, provider store.OAuthProvider, info *oauthUserInfo) (*store.User, error) {
	ctx := r.Context()

	user, err := h.users.GetByOAuth(ctx, provider, info.subject())
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user, err = h.users.GetByEmail(ctx, info.Email)
	if err == nil {
		// Link the OAuth identity to the existing account.
		user.OAuthProvider = provider
		user.OAuthID = info.subject()
		if err := h.users.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user = &store.User{
		ID:            uuid.New(),
		Email:         info.Email,
		DisplayName:   info.Name,
		OAuthProvider: provider,
		OAuthID:       info.subject(),
		Active:        true,
	}
	if err := h.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

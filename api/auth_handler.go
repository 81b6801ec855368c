package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tntchem/devhub/store"
)

// Mailer delivers magic-link sign-in mail. Production deployments plug in
// the hosting provider's mail service.
type Mailer interface {
	SendMagicLink(ctx context.Context, email, link string) error
}

// LogMailer writes the magic link to the server log instead of sending mail,
// so local setups can complete the flow.
type LogMailer struct {
	Logger *slog.Logger
}

// SendMagicLink logs the link at info level.
func (m *LogMailer) SendMagicLink(_ context.Context, email, link string) error {
	m.Logger.Info("magic link issued", "email", email, "link", link)
	return nil
}

// AuthHandler handles passwordless sign-in and sign-out.
type AuthHandler struct {
	users      store.UserStore
	sessions   store.SessionStore
	mailer     Mailer
	secret     []byte
	issuer     string
	baseURL    string
	linkTTL    time.Duration
	sessionTTL time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users store.UserStore, sessions store.SessionStore, mailer Mailer, secret []byte, issuer, baseURL string, linkTTL, sessionTTL time.Duration) *AuthHandler {
	if linkTTL == 0 {
		linkTTL = 15 * time.Minute
	}
	if sessionTTL == 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &AuthHandler{
		users:      users,
		sessions:   sessions,
		mailer:     mailer,
		secret:     secret,
		issuer:     issuer,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		linkTTL:    linkTTL,
		sessionTTL: sessionTTL,
	}
}

// MagicLink handles POST /api/auth/magic-link. It issues a short-lived
// signed link and hands it to the mailer.
func (h *AuthHandler) MagicLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	token, err := h.generateLinkToken(req.Email)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	link := fmt.Sprintf("%s/api/auth/callback?token=%s", h.baseURL, url.QueryEscape(token))
	if err := h.mailer.SendMagicLink(r.Context(), req.Email, link); err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// Callback handles GET /api/auth/callback. It redeems a magic-link token
// into a session cookie and redirects to the application root.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	email, err := h.verifyLinkToken(r.URL.Query().Get("token"))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid or expired link")
		return
	}

	user, err := h.getOrCreateUser(r.Context(), email)
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

// SignOut handles POST /api/auth. The session is revoked and the caller is
// redirected to the root with a 301, matching the documented contract.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication error")
		return
	}
	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusUnauthorized, "Authentication error")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusMovedPermanently)
}

func (h *AuthHandler) getOrCreateUser(ctx context.Context, email string) (*store.User, error) {
	user, err := h.users.GetByEmail(ctx, email)
	if err == nil {
		if !user.Active {
			return nil, store.ErrNotFound
		}
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user = &store.User{
		ID:     uuid.New(),
		Email:  email,
		Active: true,
	}
	if err := h.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (h *AuthHandler) generateLinkToken(email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  email,
		"type": "magic-link",
		"iat":  now.Unix(),
		"exp":  now.Add(h.linkTTL).Unix(),
	}
	if h.issuer != "" {
		claims["iss"] = h.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

func (h *AuthHandler) verifyLinkToken(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", jwt.ErrTokenMalformed
	}
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.secret, nil
	})
	if err != nil || !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenMalformed
	}
	if tokenType, _ := claims["type"].(string); tokenType != "magic-link" {
		return "", jwt.ErrTokenInvalidClaims
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return "", jwt.ErrTokenMalformed
	}
	return email, nil
}

// issueSession creates a session row and sets the session cookie.
func issueSession(ctx context.Context, sessions store.SessionStore, w http.ResponseWriter, userID uuid.UUID, r *http.Request, ttl time.Duration) (*store.Session, error) {
	token, err := randomHex(32)
	if err != nil {
		return nil, err
	}
	sess := &store.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		IPAddress: realIP(r),
		UserAgent: r.UserAgent(),
		Active:    true,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

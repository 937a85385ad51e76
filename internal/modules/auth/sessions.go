package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/ummachristians-netizen/umma-christians/internal/config"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/jwt"
	sessionpkg "github.com/ummachristians-netizen/umma-christians/internal/pkg/session"
)

// Sessions issues and checks the office session cookie: a signed JWT
// naming a session that the store can revoke.
type Sessions struct {
	signer     *jwt.Signer
	store      sessionpkg.Store
	cookie     string
	secure     bool
	persistent bool
}

func NewSessions(signer *jwt.Signer, store sessionpkg.Store, cfg config.SessionConfig) *Sessions {
	return &Sessions{
		signer:     signer,
		store:      store,
		cookie:     cfg.CookieName,
		secure:     cfg.Secure,
		persistent: cfg.Persistence != config.PersistenceSession,
	}
}

func (s *Sessions) CookieName() string { return s.cookie }

// Start opens a session for id and sets the cookie. With "session"
// persistence the cookie has no Max-Age and dies with the browser.
func (s *Sessions) Start(ctx context.Context, w http.ResponseWriter, id *Identity) (*sessionpkg.Session, error) {
	sess := sessionpkg.New(id.UID, id.Email, s.persistent)
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	token, err := s.signer.Sign(sess.UserID, sess.Email, sess.ID, sess.TTL())
	if err != nil {
		_ = s.store.Revoke(ctx, sess.ID)
		return nil, err
	}
	maxAge := 0
	if sess.Persistent {
		maxAge = int(sess.TTL().Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// Resolve implements middleware.SessionResolver.
func (s *Sessions) Resolve(r *http.Request) (*sessionpkg.Session, error) {
	c, err := r.Cookie(s.cookie)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}
	return s.ResolveToken(r.Context(), c.Value)
}

// ResolveCookieHeader resolves a raw Cookie header, as seen in a socket
// handshake.
func (s *Sessions) ResolveCookieHeader(ctx context.Context, header string) (*sessionpkg.Session, error) {
	if header == "" {
		return nil, nil
	}
	r := &http.Request{Header: http.Header{"Cookie": []string{header}}}
	c, err := r.Cookie(s.cookie)
	if err != nil {
		return nil, nil
	}
	return s.ResolveToken(ctx, c.Value)
}

// ResolveToken returns the live session named by token, or nil when the
// token is invalid, expired or revoked.
func (s *Sessions) ResolveToken(ctx context.Context, token string) (*sessionpkg.Session, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil
	}
	sess, err := s.store.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.UserID != claims.UserID {
		return nil, nil
	}
	return sess, nil
}

// End revokes the request's session, if any, and clears the cookie.
func (s *Sessions) End(w http.ResponseWriter, r *http.Request) (*sessionpkg.Session, error) {
	sess, err := s.Resolve(r)
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	if err != nil || sess == nil {
		return nil, err
	}
	return sess, s.store.Revoke(r.Context(), sess.ID)
}

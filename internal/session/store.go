package session

import (
	"babymassage/webapp/internal/client"
	"babymassage/webapp/internal/config"
	"babymassage/webapp/internal/domain"
	"context"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// Session data keys. tokenKey is the fixed storage key for the bearer
// token; its lifecycle is tied 1:1 to the cached identity under userKey.
const (
	tokenKey = "accessToken"
	userKey  = "currentUser"
)

// Store owns the per-visitor Session: it is the only writer of the bearer
// token and the cached identity. Everything else reads through Current.
type Store struct {
	manager *scs.SessionManager
	api     *client.Client
	logger  *zap.Logger
}

// NewStore builds a cookie-backed session store.
func NewStore(api *client.Client, cfg config.SessionConfig, logger *zap.Logger) *Store {
	gob.Register(&domain.Session{})

	manager := scs.New()
	if cfg.Lifetime > 0 {
		manager.Lifetime = cfg.Lifetime
	}
	if cfg.CookieName != "" {
		manager.Cookie.Name = cfg.CookieName
	}
	manager.Cookie.HttpOnly = true
	manager.Cookie.Secure = cfg.Secure
	manager.Cookie.SameSite = http.SameSiteLaxMode

	return &Store{manager: manager, api: api, logger: logger}
}

// Wrap installs the session load/save middleware around next.
func (s *Store) Wrap(next http.Handler) http.Handler {
	return s.manager.LoadAndSave(next)
}

// Current resolves the visitor's Session, or nil when signed out. A token
// left over from an earlier visit is re-validated against the backend; on
// any failure the token is discarded so a Session without a valid token
// never survives this call.
func (s *Store) Current(ctx context.Context) *domain.Session {
	if sess, ok := s.manager.Get(ctx, userKey).(*domain.Session); ok {
		return sess
	}

	token := s.manager.GetString(ctx, tokenKey)
	if token == "" {
		return nil
	}
	if tokenExpired(token) {
		// No point asking the backend about a token that is already past
		// its exp claim.
		s.clear(ctx)
		return nil
	}

	user, err := s.api.WithToken(token).CurrentUser(ctx)
	if err != nil {
		s.logger.Info("stored token rejected, clearing session", zap.Error(err))
		s.clear(ctx)
		return nil
	}

	sess := &domain.Session{UserID: user.ID, Username: user.Username, IsTeacher: user.IsTeacher}
	s.manager.Put(ctx, userKey, sess)
	return sess
}

// tokenExpired peeks at the token's exp claim without verifying the
// signature; verification belongs to the backend. Opaque (non-JWT) tokens
// are treated as live and left for the backend to judge.
func tokenExpired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now())
}

// Login authenticates against the backend. On success the token and the
// fetched profile are stored together and the role-based landing route is
// returned. Failures never propagate as errors; ok is false and the
// session stays empty.
func (s *Store) Login(ctx context.Context, username, password string) (landing string, ok bool) {
	tok, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.logger.Info("login failed", zap.String("username", username), zap.Error(err))
		return "", false
	}

	user, err := s.api.WithToken(tok.AccessToken).CurrentUser(ctx)
	if err != nil {
		s.logger.Warn("profile fetch after login failed", zap.Error(err))
		return "", false
	}

	// Fresh session ID for the fresh identity.
	if err := s.manager.RenewToken(ctx); err != nil {
		s.logger.Warn("session renew failed", zap.Error(err))
		return "", false
	}
	s.manager.Put(ctx, tokenKey, tok.AccessToken)
	s.manager.Put(ctx, userKey, &domain.Session{
		UserID:    user.ID,
		Username:  user.Username,
		IsTeacher: user.IsTeacher,
	})

	if tok.IsTeacher {
		return "/teacher/videos", true
	}
	return "/student/videos", true
}

// Register submits a new account. It does not log the account in.
func (s *Store) Register(ctx context.Context, username, email, password string, isTeacher bool) bool {
	if err := s.api.Register(ctx, username, email, password, isTeacher); err != nil {
		s.logger.Info("registration failed", zap.String("username", username), zap.Error(err))
		return false
	}
	return true
}

// Logout drops the token and identity together.
func (s *Store) Logout(ctx context.Context) {
	if err := s.manager.Destroy(ctx); err != nil {
		s.logger.Warn("session destroy failed", zap.Error(err))
	}
}

func (s *Store) IsTeacher(ctx context.Context) bool {
	sess := s.Current(ctx)
	return sess != nil && sess.IsTeacher
}

func (s *Store) IsStudent(ctx context.Context) bool {
	return s.Current(ctx).IsStudent()
}

// API returns a backend client carrying the visitor's bearer token (or the
// bare client when signed out).
func (s *Store) API(ctx context.Context) *client.Client {
	token := s.manager.GetString(ctx, tokenKey)
	if token == "" {
		return s.api
	}
	return s.api.WithToken(token)
}

// ID is the opaque session identifier, used to key per-visitor state such
// as upload progress.
func (s *Store) ID(ctx context.Context) string {
	return s.manager.Token(ctx)
}

func (s *Store) clear(ctx context.Context) {
	s.manager.Remove(ctx, tokenKey)
	s.manager.Remove(ctx, userKey)
}

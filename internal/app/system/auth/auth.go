// Package auth resolves the current caller from the platform session
// cookie. Login and logout live in the platform's account service, which
// shares the session signing key; this service only reads sessions.
package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
)

// SessionUser is the resolved caller injected into r.Context(). Role is
// the platform role; IsTeacher and AgentRole are the application-level
// flags the credential engine reads and writes.
type SessionUser struct {
	ID                string
	Name              string
	Email             string
	Role              string // admin | member
	IsTeacher         bool
	AgentRole         string // "" | student | teacher
	AssignedTeacherID string
}

// UserFetcher loads fresh user data for a session's user ID on each
// request, so role promotions and disabled accounts take effect
// immediately. A nil return means the session is treated as anonymous.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager reads the shared platform session cookie and resolves
// the current user.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds a SessionManager for the named cookie signed
// with sessionKey. With an empty key a random ephemeral key is generated,
// which only makes sense in development: sessions will not survive a
// restart and will not match the account service's cookies.
func NewSessionManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		sessionKey = string(securecookie.GenerateRandomKey(64))
		logger.Warn("session key not configured; generated an ephemeral key (dev only)")
	} else if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("cookie", name),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher installs the fetcher used to load fresh user data on
// each request.
func (m *SessionManager) SetUserFetcher(f UserFetcher) {
	m.fetcher = f
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the resolved caller and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// LoadSessionUser injects the current user into the request context when
// a valid authenticated session is present. Without a configured
// UserFetcher the session is treated as anonymous: stale role data must
// never reach an authorization decision.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.store.Get(r, m.name)

		isAuth, _ := sess.Values[isAuthKey].(bool)
		userID, _ := sess.Values[userIDKey].(string)
		if !isAuth || userID == "" || m.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}

		if u := m.fetcher.FetchUser(r.Context(), userID); u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects anonymous API callers with a JSON 401 before
// the wrapped handler runs.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Not authenticated"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithTestUser injects a user directly into the request context,
// bypassing session middleware. For tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

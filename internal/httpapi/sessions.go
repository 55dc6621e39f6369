package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/slicken/TextFx-Studio/internal/session"
)

// CookieName carries the session ID.
const CookieName = "textfx_session"

// Registry maps session IDs to live sessions. Sessions unused for the idle
// timeout are dropped. An unknown but well-formed ID gets a fresh session
// under the same ID, so persistent history survives restarts and expiry.
type Registry struct {
	newSession func(id string) *session.Session

	mu       sync.Mutex
	sessions *cache.Cache
}

// NewRegistry creates a registry that builds sessions with newSession. A
// non-positive idle keeps sessions forever.
func NewRegistry(newSession func(id string) *session.Session, idle time.Duration) *Registry {
	expiry, cleanup := idle, idle
	if idle <= 0 {
		expiry, cleanup = cache.NoExpiration, 0
	}
	c := cache.New(expiry, cleanup)
	c.OnEvicted(func(id string, _ any) {
		log.Debug().Str("session", id).Msg("Session expired")
	})
	return &Registry{newSession: newSession, sessions: c}
}

// Get returns the session for id, creating it if needed, and restarts its
// idle timer.
func (r *Registry) Get(id string) *session.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s *session.Session
	if v, ok := r.sessions.Get(id); ok {
		s = v.(*session.Session)
	} else {
		s = r.newSession(id)
		log.Debug().Str("session", id).Msg("Session created")
	}
	r.sessions.SetDefault(id, s)
	return s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}

// FromRequest resolves the request's session, issuing a new cookie when the
// request has none or a malformed one.
func (r *Registry) FromRequest(w http.ResponseWriter, req *http.Request) *session.Session {
	if c, err := req.Cookie(CookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return r.Get(c.Value)
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return r.Get(id)
}

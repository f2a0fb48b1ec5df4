package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	platformlogging "github.com/code-merge/accompany/platform/go/logging"
)

// CookieName is the cookie that ties a browser to its wizard session.
const CookieName = "accompany_session"

type contextKey string

const ctxSession contextKey = "ACCOMPANY_SESSION"

// Handle is the request-scoped view of one session. Handlers read a snapshot
// with State and mutate through Update; both go through the shared store.
type Handle struct {
	id    uuid.UUID
	store *Store
}

// NewHandle binds a session id to its store.
func NewHandle(store *Store, id uuid.UUID) *Handle {
	if store == nil {
		panic("session: store is required")
	}
	return &Handle{id: id, store: store}
}

// ID returns the session id.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// State returns a snapshot of the session. A session that expired mid-request
// reads as empty.
func (h *Handle) State() State {
	state, ok := h.store.Get(h.id)
	if !ok {
		return State{}
	}
	return state
}

// Update mutates the session under the store lock and returns the result.
func (h *Handle) Update(fn func(*State)) State {
	return h.store.Update(h.id, fn)
}

// IntoContext stores the session handle in the provided context.
func IntoContext(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, ctxSession, h)
}

// FromContext extracts the session handle, returning false when not present.
func FromContext(ctx context.Context) (*Handle, bool) {
	if ctx == nil {
		return nil, false
	}
	v := ctx.Value(ctxSession)
	if v == nil {
		return nil, false
	}

	h, ok := v.(*Handle)
	return h, ok
}

// FromRequest extracts the session handle from the request context.
func FromRequest(r *http.Request) (*Handle, bool) {
	return FromContext(r.Context())
}

// Middleware resolves the wizard session for each request. A valid cookie
// keeps its session id; a missing or unparseable cookie gets a fresh session
// and a new signed cookie on the response.
func Middleware(store *Store, codec *Codec) func(http.Handler) http.Handler {
	if store == nil {
		panic("session: store is required")
	}
	if codec == nil {
		panic("session: codec is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := platformlogging.FromRequest(r, nil)

			var id uuid.UUID
			fresh := true
			if cookie, err := r.Cookie(CookieName); err == nil {
				if parsed, err := codec.Parse(cookie.Value); err == nil {
					id = parsed
					fresh = false
				} else if logger != nil {
					logger.Debug("rotating session cookie", zap.Error(err))
				}
			}

			if fresh {
				id = store.Create()
				token, err := codec.Issue(id)
				if err != nil {
					if logger != nil {
						logger.Error("issue session token", zap.Error(err))
					}
					http.Error(w, "session unavailable", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(codec.TTL().Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := IntoContext(r.Context(), NewHandle(store, id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

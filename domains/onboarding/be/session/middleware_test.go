package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, res *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range res.Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

func TestMiddlewareIssuesCookieForNewVisitor(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	codec := NewCodec([]byte("secret"), time.Hour)

	var seen *Handle
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle, ok := FromRequest(r)
		require.True(t, ok)
		seen = handle
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	Middleware(store, codec)(next).ServeHTTP(rec, req)

	require.NotNil(t, seen)

	cookie := sessionCookie(t, rec.Result())
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)

	id, err := codec.Parse(cookie.Value)
	require.NoError(t, err)
	require.Equal(t, seen.ID(), id)

	_, ok := store.Get(id)
	require.True(t, ok)
}

func TestMiddlewareKeepsExistingSession(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	codec := NewCodec([]byte("secret"), time.Hour)
	mw := Middleware(store, codec)

	id := store.Create()
	store.Update(id, func(s *State) { s.LicenceAccepted = true })

	token, err := codec.Issue(id)
	require.NoError(t, err)

	var state State
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle, ok := FromRequest(r)
		require.True(t, ok)
		require.Equal(t, id, handle.ID())
		state = handle.State()
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/db-setup", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	mw(next).ServeHTTP(rec, req)

	require.True(t, state.LicenceAccepted)
	require.Nil(t, sessionCookie(t, rec.Result()), "existing sessions keep their cookie")
}

func TestMiddlewareRotatesGarbageCookie(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	codec := NewCodec([]byte("secret"), time.Hour)

	var seen uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle, ok := FromRequest(r)
		require.True(t, ok)
		seen = handle.ID()
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	Middleware(store, codec)(next).ServeHTTP(rec, req)

	cookie := sessionCookie(t, rec.Result())
	require.NotNil(t, cookie)

	id, err := codec.Parse(cookie.Value)
	require.NoError(t, err)
	require.Equal(t, seen, id)
}

func TestHandleUpdateRoundTrips(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	handle := NewHandle(store, store.Create())

	handle.Update(func(s *State) { s.AdminPassword = "hunter2hunter2" })

	require.Equal(t, "hunter2hunter2", handle.State().AdminPassword)
}

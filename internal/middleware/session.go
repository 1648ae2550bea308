package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"simple-chat/internal/apperr"
	"simple-chat/internal/render"
	"simple-chat/internal/session"
)

type contextKey string

const (
	SessionKey contextKey = "session"
	UserKey    contextKey = "user_id"
)

// Identifier is what the middleware needs from the user service.
type Identifier interface {
	Identify(ctx context.Context, id int) (int, bool, error)
	IsValid(id int) bool
}

type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type SessionMiddleware struct {
	store      session.Store
	codec      *session.Codec
	identifier Identifier
	renderer   *render.Renderer
	cookie     CookieConfig
	logger     *zap.SugaredLogger
}

func NewSessionMiddleware(
	store session.Store,
	codec *session.Codec,
	identifier Identifier,
	renderer *render.Renderer,
	cookie CookieConfig,
	logger *zap.SugaredLogger,
) *SessionMiddleware {
	return &SessionMiddleware{
		store:      store,
		codec:      codec,
		identifier: identifier,
		renderer:   renderer,
		cookie:     cookie,
		logger:     logger,
	}
}

// Load attaches the caller's session to the request context. Callers without
// a usable cookie get a fresh, unsaved session.
func (sm *SessionMiddleware) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sm.lookup(r)

		// user ids do not survive a restart but redis sessions do
		if sess.UserID != 0 && !sm.identifier.IsValid(sess.UserID) {
			if err := sm.store.Delete(r.Context(), sess.ID); err != nil {
				sm.logger.Warnw("failed to drop stale session", "error", err)
			}
			sess = session.New()
		}

		ctx := context.WithValue(r.Context(), SessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (sm *SessionMiddleware) lookup(r *http.Request) *session.Session {
	cookie, err := r.Cookie(sm.cookie.Name)
	if err != nil {
		return session.New()
	}

	sid, err := sm.codec.Decode(cookie.Value)
	if err != nil {
		sm.logger.Debugw("discarding session cookie", "error", err)
		return session.New()
	}

	sess, err := sm.store.Get(r.Context(), sid)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			sm.logger.Warnw("session lookup failed", "error", err)
		}
		return session.New()
	}

	return sess
}

// Identify makes sure the session carries a user, creating one on first
// touch. Must run after Load.
func (sm *SessionMiddleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		if sess == nil {
			sm.renderer.Error(w, r, errors.New("session middleware not mounted"))
			return
		}

		userID, created, err := sm.identifier.Identify(r.Context(), sess.UserID)
		if err != nil {
			sm.renderer.Error(w, r, err)
			return
		}

		if created {
			sess.UserID = userID
			if err := sm.persist(w, r, sess); err != nil {
				sm.renderer.Error(w, r, err)
				return
			}
		}

		ctx := context.WithValue(r.Context(), UserKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects requests whose session has no valid user with 401.
// Must run after Load.
func (sm *SessionMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		if sess == nil || sess.UserID == 0 {
			sm.renderer.Error(w, r, apperr.Unauthorized("a session user is required"))
			return
		}

		if _, _, err := sm.identifier.Identify(r.Context(), sess.UserID); err != nil {
			sm.renderer.Error(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, sess.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (sm *SessionMiddleware) persist(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	if err := sm.store.Save(r.Context(), sess); err != nil {
		return err
	}

	value, err := sm.codec.Encode(sess.ID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookie.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sm.cookie.TTL.Seconds()),
	})

	return nil
}

func SessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(SessionKey).(*session.Session)
	return sess
}

// UserID returns the acting user id, or 0 when the route is not gated.
func UserID(ctx context.Context) int {
	id, _ := ctx.Value(UserKey).(int)
	return id
}

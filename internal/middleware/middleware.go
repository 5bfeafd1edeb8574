package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Webzensify/uber-web/internal/apiclient"
	"github.com/Webzensify/uber-web/internal/domain"
	"github.com/Webzensify/uber-web/internal/session"
)

// SessionCookie names the browser-session cookie. The cookie holds only an
// opaque ID; the credential triple lives server-side in the session store.
const SessionCookie = "uw_sid"

type contextKey string

const (
	ctxSID     contextKey = "sid"
	ctxSession contextKey = "session"
)

// SID returns the browser session ID for this request.
func SID(ctx context.Context) string {
	v, _ := ctx.Value(ctxSID).(string)
	return v
}

// Current returns the restored session for this request. It is a snapshot
// taken once, before any routing decision, so every consumer in the request
// sees the same session.
func Current(ctx context.Context) domain.Session {
	v, _ := ctx.Value(ctxSession).(domain.Session)
	return v
}

// Creds derives backend credentials from the request session, or nil when
// unauthenticated.
func Creds(ctx context.Context) *apiclient.Credentials {
	sess := Current(ctx)
	if !sess.Active() {
		return nil
	}
	return &apiclient.Credentials{Token: sess.Token, Role: sess.Role}
}

// SessionLoader restores the persisted session exactly once per request,
// before the role router makes its first decision.
type SessionLoader struct {
	Store  *session.Store
	Secure bool
	TTL    time.Duration
}

func (l *SessionLoader) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
			sid = c.Value
		}
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(l.TTL / time.Second),
				HttpOnly: true,
				Secure:   l.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		sess, err := l.Store.Restore(r.Context(), sid)
		if err != nil {
			// Storage trouble reads as "no session"; the user lands on the
			// public entry view rather than an error page.
			sess = domain.Session{}
		}

		ctx := context.WithValue(r.Context(), ctxSID, sid)
		ctx = context.WithValue(ctx, ctxSession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireDashboard gates a dashboard subtree. Unauthenticated requests are
// redirected to the public entry view; authenticated requests for the wrong
// dashboard are redirected to the caller's own dashboard, never denied
// silently. The check runs before any panel handler, so no protected content
// renders and no authorized-looking backend call fires for a rejected
// request.
func RequireDashboard(mount string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := Current(r.Context())
			if !sess.Active() {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			own := sess.Role.DashboardPath()
			if own == "" {
				// A role with no dashboard (driver) has nothing to see here.
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			if own != mount {
				http.Redirect(w, r, own, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCapability guards a single action inside an already-authorized
// dashboard, e.g. appointing operational admins.
func RequireCapability(c domain.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := Current(r.Context())
			if !sess.Active() || !sess.Role.Can(c) {
				own := sess.Role.DashboardPath()
				if own == "" {
					own = "/"
				}
				http.Redirect(w, r, own, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

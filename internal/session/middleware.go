package session

import "net/http"

// Renew is a middleware that keeps active sessions alive. When a request
// carries a valid session token that is past half its lifetime, a fresh
// cookie with a full TTL is set on the response. Requests without a
// usable token pass through untouched; gating is up to the individual
// endpoints.
func (m *Manager) Renew(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(CookieName); err == nil {
			if sessionID, expires, err := m.parseToken(cookie.Value); err == nil {
				if _, ok := m.Lookup(sessionID); ok {
					remaining := expires.Sub(m.clock.Now())
					if remaining < m.ttl/2 {
						if fresh, err := m.MintCookie(sessionID); err == nil {
							http.SetCookie(w, fresh)
						}
					}
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

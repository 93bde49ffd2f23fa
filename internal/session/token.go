package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie that carries the signed session token.
const CookieName = "session_token"

// MintCookie signs a fresh token for the session id, valid for the
// manager's full TTL from now.
func (m *Manager) MintCookie(sessionID string) (*http.Cookie, error) {
	expires := m.clock.Now().Add(m.ttl)
	token, err := m.mintToken(sessionID, expires)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		Path:     "/",
	}, nil
}

// ExpiredCookie returns a cookie that instructs the browser to drop the
// session token.
func ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	}
}

// FromCookieHeader resolves a raw Cookie header to a live session
// context. It reports false when the header has no session token, the
// token is invalid or expired, or the context is gone.
func (m *Manager) FromCookieHeader(header string) (*Context, bool) {
	if header == "" {
		return nil, false
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return nil, false
	}
	for _, cookie := range cookies {
		if cookie.Name != CookieName {
			continue
		}
		sessionID, _, err := m.parseToken(cookie.Value)
		if err != nil {
			return nil, false
		}
		return m.Lookup(sessionID)
	}
	return nil, false
}

func (m *Manager) mintToken(sessionID string, expires time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": expires.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) parseToken(tokenString string) (string, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.clock.Now))
	if err != nil {
		return "", time.Time{}, err
	}
	if !token.Valid {
		return "", time.Time{}, fmt.Errorf("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, fmt.Errorf("unexpected claims type %T", token.Claims)
	}
	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		return "", time.Time{}, fmt.Errorf("session token missing sid claim")
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return "", time.Time{}, fmt.Errorf("session token missing exp claim")
	}
	return sessionID, time.Unix(int64(exp), 0), nil
}

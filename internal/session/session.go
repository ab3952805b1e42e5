// Package session holds the admin bearer token in a cookie session.
//
// The token is the only shared mutable state in the application. Writers are
// limited to the login handler (SetToken) and the logout / expiry paths
// (Clear); everything else only reads it.
package session

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "admin-session"
	tokenKey    = "token"
)

// Flash is a one-shot message surfaced on the next rendered page.
type Flash struct {
	Type    string // "success" or "error"
	Message string
}

func init() {
	gob.Register(Flash{})
}

type Store struct {
	cookies *sessions.CookieStore
}

func NewStore(key []byte, secure bool, domain string) *Store {
	cs := sessions.NewCookieStore(key)
	cs.Options.HttpOnly = true
	cs.Options.Secure = secure
	cs.Options.SameSite = http.SameSiteLaxMode
	cs.Options.Path = "/"
	if domain != "" {
		cs.Options.Domain = domain
	}
	return &Store{cookies: cs}
}

// Token returns the stored bearer token. Presence of the token is the sole
// authentication signal; no expiry metadata is kept client-side.
func (s *Store) Token(r *http.Request) (string, bool) {
	sess, _ := s.cookies.Get(r, sessionName)
	token, ok := sess.Values[tokenKey].(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func (s *Store) SetToken(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := s.cookies.Get(r, sessionName)
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// Clear evicts the token but keeps the session alive so flashes queued in
// the same response still reach the next page.
func (s *Store) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.cookies.Get(r, sessionName)
	delete(sess.Values, tokenKey)
	return sess.Save(r, w)
}

func (s *Store) AddFlash(w http.ResponseWriter, r *http.Request, f Flash) {
	sess, _ := s.cookies.Get(r, sessionName)
	sess.AddFlash(f)
	sess.Save(r, w)
}

// Flashes drains queued flash messages, saving the session to clear them.
func (s *Store) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, _ := s.cookies.Get(r, sessionName)
	raw := sess.Flashes()
	if len(raw) > 0 {
		sess.Save(r, w)
	}
	var out []Flash
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	return out
}

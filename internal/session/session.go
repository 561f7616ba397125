// Package session holds the GUI base URL captured once at startup.
package session

import (
	"net/url"
	"strings"

	"github.com/dj8891/sonaric-desktop/internal/errors"
)

// Session 只读，创建后不可修改
type Session struct {
	base *url.URL
}

// New parses and freezes the GUI base URL.
func New(raw string) (*Session, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.ErrInvalidInput.WithCause(errors.New(errors.ErrTypeValidation, "invalid GUI URL: "+raw))
	}
	return &Session{base: u}, nil
}

// BaseURL returns the GUI address.
func (s *Session) BaseURL() string {
	return s.base.String()
}

// ActionURL returns the GUI address with ?action=<action>, used to hand a
// stop or uninstall request to the running GUI.
func (s *Session) ActionURL(action string) string {
	u := *s.base
	q := u.Query()
	q.Set("action", action)
	u.RawQuery = q.Encode()
	return u.String()
}

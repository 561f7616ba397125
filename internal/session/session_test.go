package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj8891/sonaric-desktop/internal/errors"
)

func TestSession(t *testing.T) {
	s, err := New("http://localhost:44004")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:44004", s.BaseURL())
	assert.Equal(t, "http://localhost:44004?action=stop", s.ActionURL("stop"))
	assert.Equal(t, "http://localhost:44004?action=uninstall", s.ActionURL("uninstall"))
	assert.Equal(t, "http://localhost:44004", s.BaseURL(), "ActionURL must not modify the base")
}

func TestSession_KeepsExistingQuery(t *testing.T) {
	s, err := New("http://localhost:44004/?lang=en")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:44004/?action=stop&lang=en", s.ActionURL("stop"))
}

func TestNew_Invalid(t *testing.T) {
	for _, raw := range []string{"", "localhost:44004", "://bad"} {
		_, err := New(raw)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput), raw)
	}
}

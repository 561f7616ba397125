package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj8891/sonaric-desktop/internal/errors"
)

func TestGUIProber_Probe(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   error
		retryable bool
	}{
		{
			name:   "marker present",
			status: http.StatusOK,
			body:   "<html><title>Sonaric</title></html>",
		},
		{
			name:    "other page",
			status:  http.StatusOK,
			body:    "<html>nginx welcome</html>",
			wantErr: errors.ErrUnexpectedGUIAnswer,
		},
		{
			name:    "not found with marker",
			status:  http.StatusNotFound,
			body:    "Sonaric: page not found",
			wantErr: errors.ErrUnexpectedGUIAnswer,
		},
		{
			name:      "starting up",
			status:    http.StatusBadGateway,
			body:      "",
			wantErr:   errors.ErrGUINotAvailable,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewGUIProber().Probe(context.Background(), srv.URL)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, tt.retryable, errors.IsRetryable(err))
		})
	}
}

func TestGUIProber_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewGUIProber(WithTimeout(time.Second)).Probe(context.Background(), url)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGUINotAvailable))
	assert.True(t, errors.IsRetryable(err))
}

func TestGUIProber_RetriesUntilReady(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("Sonaric"))
	}))
	defer srv.Close()

	p := NewGUIProber(WithMaxRetries(5), WithBackoff(10*time.Millisecond, 20*time.Millisecond))
	require.NoError(t, p.Probe(context.Background(), srv.URL))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGUIProber_DoesNotRetryPermanentFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte("something else"))
	}))
	defer srv.Close()

	p := NewGUIProber(WithMaxRetries(5), WithBackoff(10*time.Millisecond, 20*time.Millisecond))
	err := p.Probe(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnexpectedGUIAnswer))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGUIProber_CustomMarker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Node Console"))
	}))
	defer srv.Close()

	assert.NoError(t, NewGUIProber(WithMarker("Node Console")).Probe(context.Background(), srv.URL))
}

package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/usersapp/internal/common/logger"
)

func startServer(t *testing.T, handler http.Handler, grace time.Duration, hooks []ShutdownHook) (string, context.CancelFunc, <-chan error) {
	t.Helper()

	srv := NewServer(DefaultServerConfig("127.0.0.1:0"), handler)
	ln, err := Listen(srv)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	log := logger.NewWithWriter(&bytes.Buffer{}, "test", "info")
	go func() {
		done <- Serve(ctx, srv, ln, log, grace, hooks)
	}()

	return "http://" + ln.Addr().String(), cancel, done
}

func TestServe_ServesAndStopsOnCancel(t *testing.T) {
	var hookCalls atomic.Int32
	hooks := []ShutdownHook{func(context.Context) error {
		hookCalls.Add(1)
		return nil
	}}

	url, cancel, done := startServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}), time.Second, hooks)

	resp, err := http.Get(url)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, int32(1), hookCalls.Load())
}

func TestServe_ForcesCloseAfterGracePeriod(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	url, cancel, done := startServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}), 100*time.Millisecond, nil)

	go func() {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
		}
	}()

	<-started
	begin := time.Now()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after grace period")
	}
	assert.Less(t, time.Since(begin), 3*time.Second)
}

func TestListen_BindError(t *testing.T) {
	srv := NewServer(DefaultServerConfig("127.0.0.1:0"), http.NotFoundHandler())
	ln, err := Listen(srv)
	require.NoError(t, err)
	defer ln.Close()

	taken := NewServer(DefaultServerConfig(ln.Addr().String()), http.NotFoundHandler())
	_, err = Listen(taken)
	assert.Error(t, err)
}

func TestServe_RunsHooksWhenServeFails(t *testing.T) {
	srv := NewServer(DefaultServerConfig("127.0.0.1:0"), http.NotFoundHandler())
	ln, err := Listen(srv)
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	var hookCalls atomic.Int32
	hooks := []ShutdownHook{func(context.Context) error {
		hookCalls.Add(1)
		return nil
	}}
	log := logger.NewWithWriter(&bytes.Buffer{}, "test", "info")

	err = Serve(context.Background(), srv, ln, log, time.Second, hooks)

	assert.Error(t, err)
	assert.Equal(t, int32(1), hookCalls.Load())
}

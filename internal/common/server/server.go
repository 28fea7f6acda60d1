package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlibekovAA/usersapp/internal/common/logger"
)

type ShutdownHook func(ctx context.Context) error

// Listen binds the server address so bind errors surface before any
// traffic is accepted.
func Listen(server *http.Server) (net.Listener, error) {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}
	return ln, nil
}

// StartWithGracefulShutdown serves until SIGINT or SIGTERM, then shuts down.
func StartWithGracefulShutdown(
	server *http.Server,
	ln net.Listener,
	log *logger.Logger,
	gracePeriod time.Duration,
	hooks []ShutdownHook,
) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return Serve(ctx, server, ln, log, gracePeriod, hooks)
}

// Serve runs server on ln until ctx is done. It then stops accepting
// connections, gives in-flight requests at most gracePeriod to finish,
// force-closes whatever is left and runs hooks in order.
func Serve(
	ctx context.Context,
	server *http.Server,
	ln net.Listener,
	log *logger.Logger,
	gracePeriod time.Duration,
	hooks []ShutdownHook,
) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Infof("serving on %s", ln.Addr())
		serveErr <- server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		runHooks(log, gracePeriod, hooks)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infof("closing: stopping accepting new connections (grace period: %v)", gracePeriod)
	server.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracePeriod)
	defer cancel()

	var shutdownErr error
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("grace period elapsed, forcing remaining connections closed: %v", err)
		if cerr := server.Close(); cerr != nil {
			log.Errorf("failed to force close server: %v", cerr)
		}
		shutdownErr = err
	} else {
		log.Infof("server stopped gracefully")
	}

	<-serveErr

	runHooks(log, gracePeriod, hooks)

	if shutdownErr != nil && !errors.Is(shutdownErr, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown failed: %w", shutdownErr)
	}
	return nil
}

func runHooks(log *logger.Logger, timeout time.Duration, hooks []ShutdownHook) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			log.Errorf("shutdown hook %d failed: %v", i, err)
		}
	}
}

package http

import (
	"net/http"

	"github.com/AlibekovAA/usersapp/internal/common/constants"
	"github.com/AlibekovAA/usersapp/internal/common/logger"
)

// BuildBaseHandler wraps handler with the middleware every route shares.
// limiter may be nil.
func BuildBaseHandler(log *logger.Logger, limiter *RateLimiter, handler http.Handler) http.Handler {
	h := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)(handler)
	if limiter != nil {
		h = limiter.Middleware()(h)
	}
	h = TraceIDMiddleware(h)
	h = RecoveryMiddleware(log)(h)
	return SecurityHeadersMiddleware(h)
}

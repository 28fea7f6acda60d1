package http

import (
	"context"
	"net/http"

	"github.com/AlibekovAA/usersapp/internal/common/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports ok when the database answers a ping. A nil pinger
// only checks that the process is serving.
func HealthHandler(db Pinger, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				log.WithFields(r.Context(), logger.Fields{"action": "health"}).Warnf("database ping failed: %v", err)
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

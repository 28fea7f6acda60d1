package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlibekovAA/usersapp/internal/common/constants"
	commonerrors "github.com/AlibekovAA/usersapp/internal/common/errors"
	commonhttp "github.com/AlibekovAA/usersapp/internal/common/http"
	"github.com/AlibekovAA/usersapp/internal/common/logger"
	"github.com/AlibekovAA/usersapp/internal/observability/metrics"
	"github.com/AlibekovAA/usersapp/internal/user/domain"
	"github.com/AlibekovAA/usersapp/internal/user/repository"
)

type Handler struct {
	users repository.Repository
	log   *logger.Logger
	errs  *commonhttp.ErrorHandler
}

func NewHandler(users repository.Repository, log *logger.Logger) *Handler {
	return &Handler{
		users: users,
		log:   log,
		errs:  commonhttp.NewErrorHandler(log),
	}
}

// Routes serves the users collection. Mount it at /api/users.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.read)
	r.Put("/", h.update)
	r.Delete("/", h.delete)
	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r, anyOf(domain.CreateKeys))
	if err != nil {
		h.fail(w, r, "create", err)
		return
	}

	if err := h.users.Create(statementContext(r), fields); err != nil {
		h.fail(w, r, "create", commonerrors.ErrStorageFailure.WithCause(err))
		return
	}

	h.succeed(r, "create")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request) {
	filter := domain.ReadFilter{
		Limit:  constants.DefaultReadLimit,
		Offset: constants.DefaultReadOffset,
	}
	query := r.URL.Query()
	if _, ok := query["limit"]; ok {
		filter.Limit = query.Get("limit")
	}
	if _, ok := query["offset"]; ok {
		filter.Offset = query.Get("offset")
	}

	users, err := h.users.Read(statementContext(r), filter)
	if err != nil {
		h.fail(w, r, "read", commonerrors.ErrStorageFailure.WithCause(err))
		return
	}
	if users == nil {
		users = []domain.User{}
	}

	body, err := json.Marshal(users)
	if err != nil {
		h.fail(w, r, "read", err)
		return
	}

	h.succeed(r, "read")
	commonhttp.WriteRawJSON(w, http.StatusOK, body)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r, anyOf(domain.UpdateKeys))
	if err != nil {
		h.fail(w, r, "update", err)
		return
	}

	count, err := h.users.Update(statementContext(r), fields)
	if err != nil {
		h.fail(w, r, "update", commonerrors.ErrStorageFailure.WithCause(err))
		return
	}
	if count == 0 {
		h.fail(w, r, "update", commonerrors.ErrUserNotFound)
		return
	}

	h.succeed(r, "update")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r, hasKey(domain.FieldID))
	if err != nil {
		h.fail(w, r, "delete", err)
		return
	}

	if err := h.users.Delete(statementContext(r), fields); err != nil {
		h.fail(w, r, "delete", commonerrors.ErrStorageFailure.WithCause(err))
		return
	}

	h.succeed(r, "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) succeed(r *http.Request, operation string) {
	metrics.UserOperationsTotal.WithLabelValues(operation, "success").Inc()
	h.log.WithFields(r.Context(), logger.Fields{"operation": operation}).Debugf("users/%s success", operation)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	metrics.UserOperationsTotal.WithLabelValues(operation, "failure").Inc()
	h.log.WithFields(r.Context(), logger.Fields{"operation": operation}).Warnf("users/%s failed: %v", operation, err)
	h.errs.HandleError(w, r, err)
}

// statementContext keeps the request's values but not its cancellation: once
// a statement is issued it runs to completion even if the client goes away.
func statementContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// keyCheck decides whether a decoded JSON object is worth forwarding.
type keyCheck func(payload map[string]json.RawMessage) bool

// anyOf accepts a payload carrying at least one of keys. Required fields are
// not enforced here; the table constraints reject incomplete rows.
func anyOf(keys []string) keyCheck {
	return func(payload map[string]json.RawMessage) bool {
		for _, k := range keys {
			if _, ok := payload[k]; ok {
				return true
			}
		}
		return false
	}
}

func hasKey(key string) keyCheck {
	return func(payload map[string]json.RawMessage) bool {
		_, ok := payload[key]
		return ok
	}
}

func decodeFields(r *http.Request, accept keyCheck) (domain.Fields, error) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return domain.Fields{}, commonerrors.ErrInvalidJSON.WithCause(err)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Fields{}, commonerrors.ErrInvalidJSON.WithCause(err)
	}
	if !accept(payload) {
		return domain.Fields{}, commonerrors.ErrInvalidJSON
	}

	var fields domain.Fields
	if err := json.Unmarshal(body, &fields); err != nil {
		return domain.Fields{}, commonerrors.ErrInvalidJSON.WithCause(err)
	}
	return fields, nil
}

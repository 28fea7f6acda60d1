package page

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/AlibekovAA/usersapp/internal/common/constants"
	commonerrors "github.com/AlibekovAA/usersapp/internal/common/errors"
	commonhttp "github.com/AlibekovAA/usersapp/internal/common/http"
	"github.com/AlibekovAA/usersapp/internal/common/logger"
	"github.com/AlibekovAA/usersapp/internal/observability/metrics"
	"github.com/AlibekovAA/usersapp/internal/user/domain"
)

type UserReader interface {
	Read(ctx context.Context, filter domain.ReadFilter) ([]domain.User, error)
}

// Data is what the index template sees.
type Data struct {
	Title   string
	Heading string
	Users   []domain.User
}

type Renderer struct {
	tmpl  *template.Template
	users UserReader
	log   *logger.Logger
	errs  *commonhttp.ErrorHandler
}

// NewRenderer parses the index template from dir once; a missing or broken
// template fails startup rather than the first request.
func NewRenderer(dir string, users UserReader, log *logger.Logger) (*Renderer, error) {
	path := filepath.Join(dir, constants.PageTemplate)
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	return &Renderer{
		tmpl:  tmpl,
		users: users,
		log:   log,
		errs:  commonhttp.NewErrorHandler(log),
	}, nil
}

func (p *Renderer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	users, err := p.users.Read(context.WithoutCancel(r.Context()), domain.ReadFilter{
		Limit:  constants.DefaultReadLimit,
		Offset: constants.DefaultReadOffset,
	})
	if err != nil {
		p.fail(w, r, err)
		return
	}

	data := Data{
		Title:   constants.PageTitle,
		Heading: constants.PageHeading,
		Users:   users,
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		p.fail(w, r, err)
		return
	}

	metrics.PageRendersTotal.WithLabelValues("success").Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (p *Renderer) fail(w http.ResponseWriter, r *http.Request, err error) {
	metrics.PageRendersTotal.WithLabelValues("failure").Inc()
	p.log.WithFields(r.Context(), logger.Fields{"action": "render_index"}).Errorf("render failed: %v", err)
	p.errs.HandleError(w, r, commonerrors.ErrRenderFailed.WithCause(err))
}

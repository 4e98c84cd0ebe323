package http

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/kjstillabower/health-advisory-service/internal/client"
	"github.com/kjstillabower/health-advisory-service/internal/models"
	"github.com/kjstillabower/health-advisory-service/internal/observability"
	"github.com/kjstillabower/health-advisory-service/internal/service"
	"github.com/kjstillabower/health-advisory-service/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// AdvisoryGetter builds an advisory for a location.
type AdvisoryGetter interface {
	GetAdvisory(ctx context.Context, location string) (models.Advisory, error)
}

// AdvisoryHandler serves the HTML form and result pages.
type AdvisoryHandler struct {
	advisories AdvisoryGetter
}

// NewAdvisoryHandler returns a handler backed by advisories.
func NewAdvisoryHandler(advisories AdvisoryGetter) *AdvisoryHandler {
	return &AdvisoryHandler{advisories: advisories}
}

type indexPage struct {
	Error    string
	Location string
}

// Index handles GET /.
func (h *AdvisoryHandler) Index(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, "index.html", indexPage{})
}

// Submit handles POST / with form field "location".
func (h *AdvisoryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderPage(w, r, http.StatusBadRequest, "index.html", indexPage{Error: "Invalid form submission."})
		return
	}
	raw := r.PostFormValue("location")
	location, err := validation.ValidateLocation(raw)
	if err != nil {
		renderPage(w, r, http.StatusBadRequest, "index.html", indexPage{Error: validation.Message(err), Location: raw})
		return
	}

	adv, err := h.advisories.GetAdvisory(r.Context(), location)
	if err != nil {
		status, msg := advisoryErrorMessage(err)
		observability.LoggerFromContext(r.Context()).Info("advisory failed",
			zap.String("location", location),
			zap.String("category", string(client.CategorizeError(err))),
			zap.Error(err))
		renderPage(w, r, status, "index.html", indexPage{Error: msg, Location: location})
		return
	}
	renderPage(w, r, http.StatusOK, "result.html", adv)
}

// advisoryErrorMessage maps a service error to a status and the text shown on the form.
func advisoryErrorMessage(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrCurrentWeather):
		return http.StatusBadGateway, "Current weather error: " + client.UpstreamMessage(err)
	case errors.Is(err, client.ErrLocationNotFound):
		return http.StatusNotFound, "Location not found."
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The weather service took too long to respond. Please try again."
	default:
		return http.StatusBadGateway, "Could not look up that location right now. Please try again."
	}
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		observability.LoggerFromContext(r.Context()).Error("render template", zap.String("template", name), zap.Error(err))
	}
}

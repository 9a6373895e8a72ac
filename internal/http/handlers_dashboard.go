package http

import (
	"bytes"
	"errors"
	"net/http"

	"ventas/internal/core"
	"ventas/internal/dataset"
	"ventas/internal/log"
	"ventas/internal/services"
)

const msgNotLoaded = "Los datos de ventas aún no están disponibles"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Página no encontrada").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	d, ok := s.loadDashboard(w, r, ParseFilter(r.URL.Query()))
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", s.newPageData(d)); err != nil {
		s.logError(r, "Failed to render page", err, log.ComponentTemplate, log.OpRender, d.Filter)
		InternalServerError("No se pudo mostrar la página").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(buf.Bytes()).Write(w)
}

// handleDashboardPartial renders the tiles and both tables for htmx swaps.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	d, ok := s.loadDashboard(w, r, ParseFilter(r.URL.Query()))
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard", s.newPageData(d)); err != nil {
		s.logError(r, "Failed to render dashboard", err, log.ComponentTemplate, log.OpRender, d.Filter)
		InternalServerError("No se pudo mostrar el tablero").
			TriggerErrorNotification("Error al actualizar el tablero").
			Write(w)
		return
	}

	resp := NewHTMXResponse().
		BodyHTML(buf.Bytes()).
		TriggerDashboardUpdated(d.Summary.Rows, d.SnapshotID)
	if isHTMX(r) {
		resp.PushURL("/" + FilterQuery(d.Filter))
	}
	resp.Write(w)
}

func (s *Server) handleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	f := ParseFilter(r.URL.Query())
	d, err := s.dashboards.Dashboard(r.Context(), f)
	if err != nil {
		s.jsonFailure(w, r, err, f)
		return
	}
	NewHTMXResponse().JSON(newDashboardJSON(d)).Write(w)
}

func (s *Server) handleSalespeople(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	names, err := s.dashboards.Salespeople(r.Context())
	if err != nil {
		s.jsonFailure(w, r, err, core.Filter{})
		return
	}
	if names == nil {
		names = []string{}
	}
	NewHTMXResponse().JSON(names).Write(w)
}

// loadDashboard computes the dashboard for f, writing the error response
// itself when that fails.
func (s *Server) loadDashboard(w http.ResponseWriter, r *http.Request, f core.Filter) (*services.Dashboard, bool) {
	d, err := s.dashboards.Dashboard(r.Context(), f)
	if err == nil {
		return d, true
	}
	if errors.Is(err, dataset.ErrNoSnapshot) {
		ServiceUnavailableError(msgNotLoaded).Write(w)
		return nil, false
	}
	s.logError(r, "Failed to compute dashboard", err, log.ComponentDashboard, log.OpFilter, f)
	InternalServerError("No se pudo calcular el tablero").Write(w)
	return nil, false
}

func (s *Server) jsonFailure(w http.ResponseWriter, r *http.Request, err error, f core.Filter) {
	if errors.Is(err, dataset.ErrNoSnapshot) {
		JSONError(http.StatusServiceUnavailable, msgNotLoaded).Header("Retry-After", "5").Write(w)
		return
	}
	s.logError(r, "Failed to compute dashboard", err, log.ComponentDashboard, log.OpFilter, f)
	JSONError(http.StatusInternalServerError, "internal error").Write(w)
}

// logError logs through the request-scoped logger so the request ID is kept.
func (s *Server) logError(r *http.Request, msg string, err error, component, op string, f core.Filter) {
	sl := log.NewStructuredLogger(log.FromContext(r.Context()))
	sl.LogError(r.Context(), msg, err, component, op, log.NewFields().WithFilter(f.Salesperson, f.Search))
}

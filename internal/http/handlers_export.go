package http

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"ventas/internal/export"
	"ventas/internal/log"
)

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "lineas", ".xlsx", export.XLSXContentType, export.WriteXLSX)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "resumen", ".pdf", export.PDFContentType, export.WritePDF)
}

// serveExport renders the current filtered view into memory and only then
// sends it, so a failed render never leaves a truncated download.
func (s *Server) serveExport(w http.ResponseWriter, r *http.Request, name, ext, contentType string, write func(io.Writer, export.Report) error) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	d, ok := s.loadDashboard(w, r, ParseFilter(r.URL.Query()))
	if !ok {
		return
	}

	now := time.Now()
	report := export.Report{
		Filter:      d.Filter,
		Source:      d.Source,
		SnapshotID:  d.SnapshotID,
		GeneratedAt: now,
		Lines:       d.Lines,
		Summary:     d.Summary,
	}

	var buf bytes.Buffer
	if err := write(&buf, report); err != nil {
		s.logError(r, "Failed to render export", err, log.ComponentExport, log.OpExport, d.Filter)
		InternalServerError("No se pudo generar el archivo").Write(w)
		return
	}

	filename := "ventas-" + name + "-" + now.Format("20060102-150405") + ext
	NewHTMXResponse().Attachment(filename, contentType, buf.Bytes()).Write(w)
}

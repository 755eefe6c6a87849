package http

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"fintrack/internal/importer"
	"fintrack/internal/log"
)

const maxImportBytes = 10 << 20

type importResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	mode, err := importer.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, err := importBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	defer body.Close()

	result, err := s.transactions.ImportCSV(r.Context(), io.LimitReader(body, maxImportBytes), mode)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := importResponse{Imported: result.Imported, Skipped: result.Skipped}
	for _, rowErr := range result.RowErrors {
		resp.Errors = append(resp.Errors, rowErr.Error())
	}

	s.logger.InfoContext(r.Context(), "CSV import complete",
		log.FieldOperation, log.OpImport,
		log.FieldRowCount, result.Imported,
		log.FieldSkipped, result.Skipped)
	writeJSON(w, http.StatusOK, resp)
}

// importBody accepts either a multipart upload under the "file" field
// or a raw CSV request body.
func importBody(r *http.Request) (io.ReadCloser, error) {
	ct := r.Header.Get("Content-Type")
	if len(ct) >= 19 && ct[:19] == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing file field: %w", err)
		}
		return file, nil
	}
	return r.Body, nil
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := s.transactions.ExportCSV(r.Context(), w); err != nil {
		// part of the body may already be flushed; log rather than
		// attempt a second status line
		s.logger.ErrorContext(r.Context(), "CSV export failed",
			log.FieldOperation, log.OpExport,
			log.FieldError, err)
	}
}

package api

import (
	"fmt"
	"net/http"
	"time"
)

// handleExport streams the user's shelf as a download. The body is the raw
// export document rather than the usual envelope so the file round-trips
// through handleImport unchanged.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	filename := fmt.Sprintf("shelf-export-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := s.services.Backups.Export(r.Context(), user.ID, w); err != nil {
		// Headers may already be out; all we can do is log.
		s.logger.Error("export failed", "user_id", user.ID, "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	result, err := s.services.Backups.Import(r.Context(), user.ID, r.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, result)
}

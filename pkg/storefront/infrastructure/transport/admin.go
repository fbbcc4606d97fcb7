package transport

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/application/query"
)

func (s *server) exportCSV(w http.ResponseWriter, r *http.Request) {
	table, err := s.reports.Report(r.Context(), mux.Vars(r)["type"])
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+table.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	if err := query.WriteCSV(w, *table); err != nil {
		log.WithError(err).WithField("report", table.Type).Error("failed to stream CSV export")
	}
}

func (s *server) exportJSON(w http.ResponseWriter, r *http.Request) {
	table, err := s.reports.Report(r.Context(), mux.Vars(r)["type"])
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := query.WriteJSONEnvelope(w, *table); err != nil {
		log.WithError(err).WithField("report", table.Type).Error("failed to write JSON export")
	}
}

func (s *server) listSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.ListSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"settings": settings})
}

func (s *server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	settings, err := s.settings.UpdateSettings(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"settings": settings})
}

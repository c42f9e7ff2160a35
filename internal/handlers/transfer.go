package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tasktracker/internal/store"
)

const maxImportBytes = store.DefaultQuotaBytes

// Export downloads the stored tasks as a JSON file. With nothing to export the user is
// sent back to the list with an alert.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	var (
		data []byte
		ok   bool
	)
	h.dispatch(func() {
		if h.backend != nil {
			data, ok = h.backend.ExportData()
		}
	})
	if !ok {
		redirectHome(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", store.ExportFilename(h.now())))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// readImport returns the uploaded file of a multipart form, or the raw body otherwise.
func readImport(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

// Import replaces the collection with an uploaded export. Failures are shown as alerts.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	data, err := readImport(r)
	if err != nil {
		h.logger.Warn("failed to read import", zap.Error(err))
		respondError(w, http.StatusBadRequest, "invalid import file")
		return
	}

	h.dispatch(func() {
		if h.onImport != nil {
			h.onImport(data)
		}
	})

	redirectHome(w, r)
}

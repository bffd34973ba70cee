package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dgallion1/notegest/internal/export"
)

// handleListExports lists the export files in the output directory.
func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	files, err := export.List(s.outputDir)
	if err != nil {
		jsonError(w, "failed to list exports: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exports": files})
}

func (s *Server) handleGetExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, err := export.Path(s.outputDir, name)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			jsonError(w, "export not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to open export", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		jsonError(w, "failed to open export", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", export.ContentType(name))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleDeleteExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	err := export.Remove(s.outputDir, name)
	switch {
	case errors.Is(err, export.ErrInvalidName):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, fs.ErrNotExist):
		jsonError(w, "export not found", http.StatusNotFound)
		return
	case err != nil:
		jsonError(w, "failed to delete export: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.log.Info("export deleted", zap.String("name", name))
	writeJSON(w, http.StatusOK, map[string]any{"deleted": name})
}

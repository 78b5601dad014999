package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jonathanaloya/cineflix/internal/media"
)

// MediaHandler serves stored video and image files with byte-range support.
type MediaHandler struct {
	root string
}

func NewMediaHandler(uploadDir string) *MediaHandler {
	return &MediaHandler{root: uploadDir}
}

// @Summary Serve an uploaded media file
// @Description Honors single byte-range requests for video seeking
// @Tags media
// @Param path path string true "file path under the upload dir"
// @Router /uploads/{path} [get]
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")

	// reject traversal out of the upload root
	clean := filepath.Clean("/" + rel)
	if strings.Contains(rel, "..") {
		writeMessage(w, http.StatusNotFound, "Video not found")
		return
	}
	media.ServeFile(w, r, filepath.Join(h.root, clean))
}

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonathanaloya/cineflix/internal/models"
	"github.com/jonathanaloya/cineflix/internal/repository"
	"github.com/jonathanaloya/cineflix/internal/service"
)

type MovieHandler struct {
	svc *service.MovieService
}

func NewMovieHandler(s *service.MovieService) *MovieHandler { return &MovieHandler{svc: s} }

// @Summary Browse the catalog
// @Tags movies
// @Produce json
// @Param category query string false "category filter"
// @Param type query string false "movie|series"
// @Param genre query string false "genre tag"
// @Param language query string false "primary language"
// @Param search query string false "case-insensitive title substring"
// @Success 200 {array} models.MovieSummary
// @Router /movies [get]
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	movies, err := h.svc.List(r.Context(), repository.ListFilter{
		Category: q.Get("category"),
		Type:     q.Get("type"),
		Genre:    q.Get("genre"),
		Language: q.Get("language"),
		Search:   q.Get("search"),
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if movies == nil {
		movies = []models.MovieSummary{}
	}
	writeJSON(w, http.StatusOK, movies)
}

// @Summary List a category, featured and most-viewed first
// @Tags movies
// @Produce json
// @Param category path string true "category"
// @Param language query string false "primary language"
// @Param limit query int false "limit (default 20)"
// @Success 200 {array} models.Movie
// @Router /movies/category/{category} [get]
func (h *MovieHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if !models.IsValidCategory(category) {
		writeMessage(w, http.StatusBadRequest, "invalid category")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	movies, err := h.svc.ListByCategory(r.Context(), category, r.URL.Query().Get("language"), limit)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	writeJSON(w, http.StatusOK, movies)
}

// @Summary Featured titles
// @Tags movies
// @Produce json
// @Success 200 {array} models.MovieSummary
// @Router /movies/featured [get]
func (h *MovieHandler) Featured(w http.ResponseWriter, r *http.Request) {
	movies, err := h.svc.Featured(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if movies == nil {
		movies = []models.MovieSummary{}
	}
	writeJSON(w, http.StatusOK, movies)
}

// @Summary Get one movie
// @Tags movies
// @Produce json
// @Param id path string true "movie id"
// @Success 200 {object} models.Movie
// @Failure 404 {object} map[string]string
// @Router /movies/{id} [get]
func (h *MovieHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Movie not found")
		return
	}

	m, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if m == nil {
		writeMessage(w, http.StatusNotFound, "Movie not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// @Summary Resolve a stream URL
// @Description Runs behind the daily-limit and subscription middleware
// @Tags movies
// @Security BearerAuth
// @Produce json
// @Param id path string true "movie id"
// @Param language path string true "language code"
// @Success 200 {object} service.StreamInfo
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /movies/{id}/stream/{language} [get]
func (h *MovieHandler) Stream(w http.ResponseWriter, r *http.Request) {
	u := UserFromContext(r.Context())
	if u == nil {
		writeMessage(w, http.StatusUnauthorized, "user not found")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Movie not found")
		return
	}

	info, denial, err := h.svc.Stream(r.Context(), u, id, chi.URLParam(r, "language"), time.Now())
	if err != nil {
		writeStreamError(w, err)
		return
	}
	if denial != nil {
		writeDenial(w, denial)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// @Summary Resolve a download URL
// @Tags movies
// @Security BearerAuth
// @Produce json
// @Param id path string true "movie id"
// @Param language path string true "language code"
// @Success 200 {object} service.DownloadInfo
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /movies/{id}/download/{language} [post]
func (h *MovieHandler) Download(w http.ResponseWriter, r *http.Request) {
	u := UserFromContext(r.Context())
	if u == nil {
		writeMessage(w, http.StatusUnauthorized, "user not found")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Movie not found")
		return
	}

	info, err := h.svc.Download(r.Context(), u, id, chi.URLParam(r, "language"))
	if err != nil {
		writeStreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// writeStreamError keeps not-found distinct from entitlement failures.
func writeStreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMovieNotFound):
		writeMessage(w, http.StatusNotFound, "Movie not found")
	case errors.Is(err, service.ErrLanguageNotFound):
		writeMessage(w, http.StatusNotFound, "Language version not found")
	default:
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jonathanaloya/cineflix/internal/models"
	"github.com/jonathanaloya/cineflix/internal/service"
)

const maxUploadBytes = 512 << 20

type AdminHandler struct {
	svc       *service.AdminService
	movies    *service.MovieService
	uploadDir string
}

func NewAdminHandler(s *service.AdminService, movies *service.MovieService, uploadDir string) *AdminHandler {
	return &AdminHandler{svc: s, movies: movies, uploadDir: uploadDir}
}

// @Summary Dashboard stats
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.DashboardStats
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.DashboardStats(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary Live dashboard stats (WebSocket)
// @Description Pushes a stats frame every five seconds until the client disconnects
// @Tags admin
// @Security BearerAuth
// @Router /admin/ws/dashboard [get]
func (h *AdminHandler) DashboardWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "could not open WebSocket")
		return
	}
	defer conn.Close()

	// reader goroutine only to notice the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		stats, err := h.svc.DashboardStats(r.Context())
		if err != nil {
			_ = conn.WriteJSON(map[string]any{"type": "error", "error": err.Error()})
			return
		}
		if err := conn.WriteJSON(map[string]any{
			"type":        "stats",
			"stats":       stats,
			"generatedAt": time.Now().UTC(),
		}); err != nil {
			return
		}

		select {
		case <-ticker.C:
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// @Summary List users
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.User
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

type userStatusRequest struct {
	IsActive bool `json:"isActive"`
}

// @Summary Ban or reactivate a user
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "user id"
// @Param body body userStatusRequest true "status"
// @Success 200 {object} map[string]string
// @Router /admin/users/{id}/status [patch]
func (h *AdminHandler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	var req userStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.SetUserStatus(r.Context(), id, req.IsActive); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	verb := "banned"
	if req.IsActive {
		verb = "activated"
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("User %s successfully", verb))
}

// @Summary List the full catalog for the back office
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Movie
// @Router /admin/movies [get]
func (h *AdminHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movies.ListAllAdmin(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	writeJSON(w, http.StatusOK, movies)
}

// @Summary Create a movie (multipart upload)
// @Description Poster/trailer files go to the upload dir; genre and languages fields are JSON
// @Tags admin
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Success 201 {object} models.Movie
// @Failure 400 {object} map[string]string
// @Router /admin/movies [post]
func (h *AdminHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	m := &models.Movie{
		Title:                r.FormValue("title"),
		Description:          r.FormValue("description"),
		Category:             r.FormValue("category"),
		Type:                 r.FormValue("type"),
		PrimaryLanguage:      r.FormValue("primaryLanguage"),
		SubscriptionRequired: r.FormValue("subscriptionRequired"),
		Quality:              r.FormValue("quality"),
		Featured:             r.FormValue("featured") == "true",
	}
	if m.Title == "" || m.Description == "" {
		writeMessage(w, http.StatusBadRequest, "title and description are required")
		return
	}
	if !models.IsValidCategory(m.Category) {
		writeMessage(w, http.StatusBadRequest, "invalid category")
		return
	}
	if !models.IsValidLanguage(m.PrimaryLanguage) {
		writeMessage(w, http.StatusBadRequest, "invalid primary language")
		return
	}

	m.ReleaseYear, _ = strconv.Atoi(r.FormValue("releaseYear"))
	m.Duration, _ = strconv.Atoi(r.FormValue("duration"))
	m.Rating, _ = strconv.ParseFloat(r.FormValue("rating"), 64)
	m.FileSize, _ = strconv.ParseInt(r.FormValue("fileSize"), 10, 64)

	if g := r.FormValue("genre"); g != "" {
		if err := json.Unmarshal([]byte(g), &m.Genre); err != nil {
			writeMessage(w, http.StatusBadRequest, "genre must be a JSON array")
			return
		}
	}
	if lv := r.FormValue("languages"); lv != "" {
		if err := json.Unmarshal([]byte(lv), &m.Languages); err != nil {
			writeMessage(w, http.StatusBadRequest, "languages must be a JSON array")
			return
		}
	}
	if _, ok := m.Language(m.PrimaryLanguage); !ok && len(m.Languages) > 0 {
		writeMessage(w, http.StatusBadRequest, "primaryLanguage has no media entry")
		return
	}

	var err error
	if m.Poster, err = h.saveUpload(r, "poster"); err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if m.Trailer, err = h.saveUpload(r, "trailer"); err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.movies.CreateMovie(r.Context(), m); err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

type movieUpdateRequest struct {
	Title                *string                  `json:"title"`
	Description          *string                  `json:"description"`
	Genre                *[]string                `json:"genre"`
	Category             *string                  `json:"category"`
	Type                 *string                  `json:"type"`
	PrimaryLanguage      *string                  `json:"primaryLanguage"`
	ReleaseYear          *int                     `json:"releaseYear"`
	Duration             *int                     `json:"duration"`
	Rating               *float64                 `json:"rating"`
	SubscriptionRequired *string                  `json:"subscriptionRequired"`
	Languages            *[]models.LanguageVersion `json:"languages"`
	Featured             *bool                    `json:"featured"`
	Quality              *string                  `json:"quality"`
	FileSize             *int64                   `json:"fileSize"`
}

// @Summary Update a movie
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "movie id"
// @Success 200 {object} models.Movie
// @Failure 404 {object} map[string]string
// @Router /admin/movies/{id} [put]
func (h *AdminHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Movie not found")
		return
	}
	var req movieUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	update := bson.M{}
	setIf(update, "title", req.Title)
	setIf(update, "description", req.Description)
	setIf(update, "genre", req.Genre)
	setIf(update, "category", req.Category)
	setIf(update, "type", req.Type)
	setIf(update, "primaryLanguage", req.PrimaryLanguage)
	setIf(update, "releaseYear", req.ReleaseYear)
	setIf(update, "duration", req.Duration)
	setIf(update, "rating", req.Rating)
	setIf(update, "subscriptionRequired", req.SubscriptionRequired)
	setIf(update, "languages", req.Languages)
	setIf(update, "featured", req.Featured)
	setIf(update, "quality", req.Quality)
	setIf(update, "fileSize", req.FileSize)
	if len(update) == 0 {
		writeMessage(w, http.StatusBadRequest, "no fields to update")
		return
	}

	m, err := h.movies.UpdateMovie(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, service.ErrMovieNotFound) {
			writeMessage(w, http.StatusNotFound, "Movie not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// @Summary Delete a movie
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "movie id"
// @Success 200 {object} map[string]string
// @Router /admin/movies/{id} [delete]
func (h *AdminHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Movie not found")
		return
	}

	if err := h.movies.DeleteMovie(r.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeMessage(w, http.StatusNotFound, "Movie not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeMessage(w, http.StatusOK, "Movie deleted successfully")
}

// saveUpload stores one multipart file under uploadDir/movies with a
// timestamp-prefixed name and returns its relative path, or "" when the
// field is absent.
func (h *AdminHandler) saveUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()
	return h.writeUpload(file, header)
}

func (h *AdminHandler) writeUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	dir := filepath.Join(h.uploadDir, "movies")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(header.Filename))
	dst := filepath.Join(dir, name)

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(dst)
		return "", err
	}
	log.Debug().Str("file", dst).Msg("[admin] upload stored")
	return filepath.ToSlash(dst), nil
}

// setIf adds non-nil pointer values to a partial update.
func setIf[T any](update bson.M, key string, v *T) {
	if v != nil {
		update[key] = *v
	}
}

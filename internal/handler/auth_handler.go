package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonathanaloya/cineflix/internal/models"
	"github.com/jonathanaloya/cineflix/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: s}
}

type userResponse struct {
	ID                string              `json:"id"`
	Email             string              `json:"email"`
	Mobile            string              `json:"mobile,omitempty"`
	Name              string              `json:"name"`
	Role              string              `json:"role"`
	PreferredLanguage string              `json:"preferredLanguage"`
	Subscription      models.Subscription `json:"subscription"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:                u.ID.Hex(),
		Email:             u.Email,
		Mobile:            u.Mobile,
		Name:              u.Name,
		Role:              u.Role,
		PreferredLanguage: u.PreferredLanguage,
		Subscription:      u.Subscription,
	}
}

type registerRequest struct {
	Email             string `json:"email"`
	Mobile            string `json:"mobile"`
	Password          string `json:"password"`
	Name              string `json:"name"`
	PreferredLanguage string `json:"preferredLanguage"`
}

// @Summary Register
// @Description Creates a new account and returns a token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "registration data"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	u, token, err := h.svc.Register(r.Context(), service.RegisterUserData{
		Email:             req.Email,
		Mobile:            req.Mobile,
		Password:          req.Password,
		Name:              req.Name,
		PreferredLanguage: req.PreferredLanguage,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  toUserResponse(u),
	})
}

type loginRequest struct {
	EmailOrMobile string `json:"emailOrMobile"`
	Password      string `json:"password"`
}

// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credentials"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.EmailOrMobile, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toUserResponse(u),
	})
}

// @Summary Profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetProfile(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// @Summary Watchlist and favorites, resolved to movies
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /auth/lists [get]
func (h *AuthHandler) GetLists(w http.ResponseWriter, r *http.Request) {
	watchlist, favorites, err := h.svc.GetLists(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if watchlist == nil {
		watchlist = []models.Movie{}
	}
	if favorites == nil {
		favorites = []models.Movie{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"watchlist": watchlist,
		"favorites": favorites,
	})
}

// AddToList handles POST /auth/{watchlist|favorites}/{movieId}.
func (h *AuthHandler) AddToList(list string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movieID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "movieId"))
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid movie id")
			return
		}
		if err := h.svc.AddToList(r.Context(), UserIDFromContext(r.Context()), list, movieID); err != nil {
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeMessage(w, http.StatusOK, "Added to "+list)
	}
}

func (h *AuthHandler) RemoveFromList(list string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movieID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "movieId"))
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid movie id")
			return
		}
		if err := h.svc.RemoveFromList(r.Context(), UserIDFromContext(r.Context()), list, movieID); err != nil {
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeMessage(w, http.StatusOK, "Removed from "+list)
	}
}

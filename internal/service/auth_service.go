package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathanaloya/cineflix/internal/models"
	"github.com/jonathanaloya/cineflix/internal/repository"
)

type AuthService struct {
	users     *repository.UserRepository
	movies    *repository.MovieRepository
	jwtSecret []byte
}

type RegisterUserData struct {
	Email             string
	Mobile            string
	Password          string
	Name              string
	PreferredLanguage string
}

func NewAuthService(users *repository.UserRepository, movies *repository.MovieRepository, secret string) *AuthService {
	return &AuthService{users: users, movies: movies, jwtSecret: []byte(secret)}
}

// ================== REGISTER & LOGIN ==================

func (s *AuthService) Register(ctx context.Context, data RegisterUserData) (*models.User, string, error) {
	if data.Email == "" || data.Password == "" || data.Name == "" {
		return nil, "", fmt.Errorf("email, password and name are required")
	}
	if data.PreferredLanguage != "" && !models.IsValidLanguage(data.PreferredLanguage) {
		return nil, "", fmt.Errorf("invalid preferred language")
	}

	taken, err := s.users.ExistsByIdentity(ctx, data.Email, data.Mobile)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), 12)
	if err != nil {
		return nil, "", err
	}

	lang := data.PreferredLanguage
	if lang == "" {
		lang = "english"
	}

	now := time.Now().UTC()
	u := &models.User{
		Email:             data.Email,
		Mobile:            data.Mobile,
		PasswordHash:      string(hash),
		Name:              data.Name,
		Role:              models.RoleUser,
		PreferredLanguage: lang,
		Subscription:      models.Subscription{Type: models.TierFree},
		DailyStreams:      models.DailyStreams{Date: DayStart(now), Count: 0},
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.users.Insert(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login accepts either email or mobile number. Banned accounts get the
// same answer as bad credentials.
func (s *AuthService) Login(ctx context.Context, emailOrMobile, password string) (string, *models.User, error) {
	u, err := s.users.FindByEmailOrMobile(ctx, emailOrMobile)
	if err != nil {
		return "", nil, err
	}
	if u == nil || !u.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *AuthService) issueToken(u *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  u.ID.Hex(),
		"role": u.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// ================== WATCHLIST & FAVORITES ==================

const (
	ListWatchlist = "watchlist"
	ListFavorites = "favorites"
)

func (s *AuthService) AddToList(ctx context.Context, userID primitive.ObjectID, list string, movieID primitive.ObjectID) error {
	if list != ListWatchlist && list != ListFavorites {
		return fmt.Errorf("invalid list %q", list)
	}
	return s.users.AddToList(ctx, userID, list, movieID)
}

func (s *AuthService) RemoveFromList(ctx context.Context, userID primitive.ObjectID, list string, movieID primitive.ObjectID) error {
	if list != ListWatchlist && list != ListFavorites {
		return fmt.Errorf("invalid list %q", list)
	}
	return s.users.RemoveFromList(ctx, userID, list, movieID)
}

// GetLists resolves the user's watchlist and favorites to movies,
// preserving insertion order. References to deleted movies are silently
// dropped.
func (s *AuthService) GetLists(ctx context.Context, userID primitive.ObjectID) (watchlist, favorites []models.Movie, err error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, ErrNotFound
	}

	watchlist, err = s.resolveList(ctx, u.Watchlist)
	if err != nil {
		return nil, nil, err
	}
	favorites, err = s.resolveList(ctx, u.Favorites)
	if err != nil {
		return nil, nil, err
	}
	return watchlist, favorites, nil
}

func (s *AuthService) resolveList(ctx context.Context, ids []primitive.ObjectID) ([]models.Movie, error) {
	found, err := s.movies.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Movie, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}

	// $in does not preserve order; reassemble in list order
	out := make([]models.Movie, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

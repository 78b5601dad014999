package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonathanaloya/cineflix/internal/models"
	"github.com/jonathanaloya/cineflix/internal/repository"
)

// AdminService backs the back office: dashboard stats, user management.
// Movie CRUD lives on MovieService so the cache-invalidation contract
// stays in one place.
type AdminService struct {
	users  *repository.UserRepository
	movies *repository.MovieRepository
}

func NewAdminService(users *repository.UserRepository, movies *repository.MovieRepository) *AdminService {
	return &AdminService{users: users, movies: movies}
}

type DashboardStats struct {
	TotalUsers          int64 `json:"totalUsers"`
	TotalMovies         int64 `json:"totalMovies"`
	ActiveSubscriptions int64 `json:"activeSubscriptions"`
	TotalViews          int64 `json:"totalViews"`
}

// DashboardStats recomputes on demand; there is no background sweep
// keeping subscription states fresh, so "active" is derived from
// expiresAt at call time.
func (s *AdminService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalMovies, err := s.movies.Count(ctx)
	if err != nil {
		return nil, err
	}
	activeSubs, err := s.users.CountActiveSubscriptions(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	totalViews, err := s.movies.TotalViews(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalUsers:          totalUsers,
		TotalMovies:         totalMovies,
		ActiveSubscriptions: activeSubs,
		TotalViews:          totalViews,
	}, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListAll(ctx)
}

// SetUserStatus bans (false) or reactivates (true) an account. Banning
// is a soft delete; nothing is removed.
func (s *AdminService) SetUserStatus(ctx context.Context, id primitive.ObjectID, active bool) error {
	return s.users.SetActive(ctx, id, active)
}

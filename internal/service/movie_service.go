package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonathanaloya/cineflix/internal/cache"
	"github.com/jonathanaloya/cineflix/internal/models"
	"github.com/jonathanaloya/cineflix/internal/repository"
)

// Cache policy for browse queries. Entries are also dropped eagerly on
// admin writes, so the TTLs only bound staleness for out-of-band edits.
const (
	listCacheTTL     = 600  // seconds
	featuredCacheTTL = 1800 // seconds
	featuredLimit    = 10
	moviesCachePfx   = "movies:"
	featuredCacheKey = "movies:featured"
)

type movieStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error)
	List(ctx context.Context, f repository.ListFilter) ([]models.MovieSummary, error)
	ListByCategory(ctx context.Context, category, language string, limit int) ([]models.Movie, error)
	Featured(ctx context.Context, limit int) ([]models.MovieSummary, error)
	Recent(ctx context.Context, limit int) ([]models.MovieSummary, error)
	Insert(ctx context.Context, m *models.Movie) error
	Update(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Movie, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListAllAdmin(ctx context.Context) ([]models.Movie, error)
	IncViewCount(ctx context.Context, id primitive.ObjectID) error
	IncDownloadCount(ctx context.Context, id primitive.ObjectID) error
}

type streamUserStore interface {
	ReserveDailyStream(ctx context.Context, id primitive.ObjectID, day time.Time, limit int) (bool, error)
	AddToList(ctx context.Context, id primitive.ObjectID, field string, movieID primitive.ObjectID) error
}

type MovieService struct {
	movies  movieStore
	users   streamUserStore
	cache   cache.Store
	access  *AccessService
	baseURL string
}

func NewMovieService(movies movieStore, users streamUserStore, c cache.Store, access *AccessService, baseURL string) *MovieService {
	return &MovieService{movies: movies, users: users, cache: c, access: access, baseURL: baseURL}
}

// ================== CATALOG ==================

// List runs a filtered browse query through the cache.
func (s *MovieService) List(ctx context.Context, f repository.ListFilter) ([]models.MovieSummary, error) {
	key := listCacheKey(f)

	var cached []models.MovieSummary
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("[movies] cache read failed")
	}

	out, err := s.movies.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, out, listCacheTTL); err != nil {
		log.Warn().Err(err).Msg("[movies] cache write failed")
	}
	return out, nil
}

func (s *MovieService) ListByCategory(ctx context.Context, category, language string, limit int) ([]models.Movie, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.movies.ListByCategory(ctx, category, language, limit)
}

// Featured returns featured titles, falling back to the most recent
// additions when nothing is flagged.
func (s *MovieService) Featured(ctx context.Context) ([]models.MovieSummary, error) {
	var cached []models.MovieSummary
	if ok, err := s.cache.Get(ctx, featuredCacheKey, &cached); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("[movies] cache read failed")
	}

	out, err := s.movies.Featured(ctx, featuredLimit)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		out, err = s.movies.Recent(ctx, featuredLimit)
		if err != nil {
			return nil, err
		}
	}
	if err := s.cache.Set(ctx, featuredCacheKey, out, featuredCacheTTL); err != nil {
		log.Warn().Err(err).Msg("[movies] cache write failed")
	}
	return out, nil
}

// GetByID is never cached. A nil movie means not found.
func (s *MovieService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	return s.movies.GetByID(ctx, id)
}

// listCacheKey serializes the filter set canonically: fixed field order,
// lower-cased search term.
func listCacheKey(f repository.ListFilter) string {
	return fmt.Sprintf("movies:list:cat=%s&type=%s&genre=%s&lang=%s&q=%s",
		f.Category, f.Type, f.Genre, f.Language, strings.ToLower(f.Search))
}

// ================== STREAM & DOWNLOAD ==================

type StreamInfo struct {
	StreamURL string `json:"streamUrl"`
	Subtitles string `json:"subtitles,omitempty"`
}

type DownloadInfo struct {
	DownloadURL string `json:"downloadUrl"`
	FileSize    int64  `json:"fileSize"`
	Filename    string `json:"filename"`
}

// Stream resolves the asset for a granted stream request and applies the
// side effects of the grant: for quota-tracked users it consumes one
// daily slot (atomically; a lost race turns into a denial here), and it
// bumps the view counter. Entitlement itself has already been checked by
// the middleware chain.
func (s *MovieService) Stream(ctx context.Context, u *models.User, movieID primitive.ObjectID, language string, now time.Time) (*StreamInfo, *Denial, error) {
	m, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, ErrMovieNotFound
	}

	lv, ok := m.Language(language)
	if !ok {
		return nil, nil, ErrLanguageNotFound
	}

	if s.access.TrackedForQuota(u) {
		reserved, err := s.users.ReserveDailyStream(ctx, u.ID, DayStart(now), s.access.FreeDailyLimit)
		if err != nil {
			return nil, nil, err
		}
		if !reserved {
			return nil, &Denial{
				Reason:  ReasonDailyLimit,
				Message: "Daily streaming limit reached. Please subscribe to continue watching.",
			}, nil
		}
	}

	if err := s.movies.IncViewCount(ctx, movieID); err != nil {
		log.Warn().Err(err).Str("movie", movieID.Hex()).Msg("[movies] view count update failed")
	}

	return &StreamInfo{StreamURL: lv.VideoURL, Subtitles: lv.Subtitles}, nil, nil
}

// Download resolves the asset for a granted download, records it on the
// user's downloadedMovies list and bumps the download counter.
func (s *MovieService) Download(ctx context.Context, u *models.User, movieID primitive.ObjectID, language string) (*DownloadInfo, error) {
	m, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMovieNotFound
	}

	lv, ok := m.Language(language)
	if !ok {
		return nil, ErrLanguageNotFound
	}

	if err := s.users.AddToList(ctx, u.ID, "downloadedMovies", movieID); err != nil {
		log.Warn().Err(err).Str("user", u.ID.Hex()).Msg("[movies] downloadedMovies update failed")
	}
	if err := s.movies.IncDownloadCount(ctx, movieID); err != nil {
		log.Warn().Err(err).Str("movie", movieID.Hex()).Msg("[movies] download count update failed")
	}

	return &DownloadInfo{
		DownloadURL: s.baseURL + "/" + strings.TrimPrefix(lv.VideoURL, "/"),
		FileSize:    m.FileSize,
		Filename:    fmt.Sprintf("%s_%s.mp4", m.Title, language),
	}, nil
}

// ================== ADMIN CRUD ==================

func (s *MovieService) CreateMovie(ctx context.Context, m *models.Movie) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Type == "" {
		m.Type = "movie"
	}
	if m.SubscriptionRequired == "" {
		m.SubscriptionRequired = models.TierFree
	}
	if err := s.movies.Insert(ctx, m); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *MovieService) UpdateMovie(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Movie, error) {
	m, err := s.movies.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMovieNotFound
	}
	s.invalidateCatalog(ctx)
	return m, nil
}

func (s *MovieService) DeleteMovie(ctx context.Context, id primitive.ObjectID) error {
	if err := s.movies.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *MovieService) ListAllAdmin(ctx context.Context) ([]models.Movie, error) {
	return s.movies.ListAllAdmin(ctx)
}

// invalidateCatalog drops every browse/featured cache entry after an
// admin write. Best effort: a failed invalidation only extends staleness
// up to the TTL.
func (s *MovieService) invalidateCatalog(ctx context.Context) {
	if err := s.cache.DelPrefix(ctx, moviesCachePfx); err != nil {
		log.Warn().Err(err).Msg("[movies] cache invalidation failed")
	}
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonathanaloya/cineflix/internal/models"
	"github.com/jonathanaloya/cineflix/internal/service"
)

type userLoader interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ResetDailyStreams(ctx context.Context, id primitive.ObjectID, day time.Time) error
}

type movieLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error)
}

// AccessMiddleware runs the usage-tracker and entitlement gates in front
// of the stream/download handlers. Order on the stream route is daily
// limit first, then subscription, matching the decision order the
// evaluator documents.
type AccessMiddleware struct {
	users  userLoader
	movies movieLoader
	access *service.AccessService
}

func NewAccessMiddleware(users userLoader, movies movieLoader, access *service.AccessService) *AccessMiddleware {
	return &AccessMiddleware{users: users, movies: movies, access: access}
}

func (a *AccessMiddleware) loadUser(w http.ResponseWriter, r *http.Request) *models.User {
	u, err := a.users.FindByID(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return nil
	}
	if u == nil {
		writeMessage(w, http.StatusUnauthorized, "user not found")
		return nil
	}
	return u
}

// CheckDailyLimit resets a stale counter and rejects free users who have
// exhausted today's quota. The check here is advisory; the binding
// reservation is the conditional increment at grant time.
func (a *AccessMiddleware) CheckDailyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := a.loadUser(w, r)
		if u == nil {
			return
		}

		now := time.Now()
		needsReset, denial := a.access.CheckDailyQuota(u, now)
		if needsReset {
			day := service.DayStart(now)
			if err := a.users.ResetDailyStreams(r.Context(), u.ID, day); err != nil {
				writeMessage(w, http.StatusInternalServerError, err.Error())
				return
			}
			u.DailyStreams = models.DailyStreams{Date: day, Count: 0}
		}
		if denial != nil {
			writeDenial(w, denial)
			return
		}

		ctx := context.WithValue(r.Context(), CtxUser, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSubscription gates streaming on the movie's minimum tier.
func (a *AccessMiddleware) RequireSubscription(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFromContext(r.Context())
		if u == nil {
			if u = a.loadUser(w, r); u == nil {
				return
			}
		}

		movieID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			writeMessage(w, http.StatusNotFound, "Movie not found")
			return
		}
		m, err := a.movies.GetByID(r.Context(), movieID)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		if m == nil {
			writeMessage(w, http.StatusNotFound, "Movie not found")
			return
		}

		if denial := a.access.CanStream(u, m, time.Now()); denial != nil {
			writeDenial(w, denial)
			return
		}

		ctx := context.WithValue(r.Context(), CtxUser, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireDownloadAccess gates downloads: any unexpired paid tier, or
// admin.
func (a *AccessMiddleware) RequireDownloadAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := a.loadUser(w, r)
		if u == nil {
			return
		}

		if denial := a.access.CanDownload(u, time.Now()); denial != nil {
			writeDenial(w, denial)
			return
		}

		ctx := context.WithValue(r.Context(), CtxUser, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

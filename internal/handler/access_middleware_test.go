package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jonathanaloya/cineflix/internal/models"
	"github.com/jonathanaloya/cineflix/internal/service"
)

type fakeUserLoader struct {
	user   *models.User
	resets int
}

func (f *fakeUserLoader) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return f.user, nil
}

func (f *fakeUserLoader) ResetDailyStreams(ctx context.Context, id primitive.ObjectID, day time.Time) error {
	f.resets++
	return nil
}

type fakeMovieLoader struct {
	movie *models.Movie
}

func (f *fakeMovieLoader) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	return f.movie, nil
}

func streamRequest(t *testing.T, userID, movieID primitive.ObjectID) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/movies/"+movieID.Hex()+"/stream/english", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", movieID.Hex())
	rctx.URLParams.Add("language", "english")

	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, CtxUserID, userID)
	return r.WithContext(ctx)
}

func denialBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	return body
}

func TestCheckDailyLimitResetsStaleCounter(t *testing.T) {
	now := time.Now().UTC()
	users := &fakeUserLoader{user: &models.User{
		ID:           primitive.NewObjectID(),
		Role:         models.RoleUser,
		Subscription: models.Subscription{Type: models.TierFree},
		DailyStreams: models.DailyStreams{Date: service.DayStart(now.AddDate(0, 0, -1)), Count: 1},
		IsActive:     true,
	}}
	mw := NewAccessMiddleware(users, &fakeMovieLoader{}, service.NewAccessService())

	var seen *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	mw.CheckDailyLimit(next).ServeHTTP(w, streamRequest(t, users.user.ID, primitive.NewObjectID()))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if users.resets != 1 {
		t.Fatalf("resets = %d", users.resets)
	}
	if seen == nil || seen.DailyStreams.Count != 0 {
		t.Fatal("downstream user should carry the reset counter")
	}
}

func TestCheckDailyLimitDenies(t *testing.T) {
	now := time.Now().UTC()
	users := &fakeUserLoader{user: &models.User{
		ID:           primitive.NewObjectID(),
		Role:         models.RoleUser,
		Subscription: models.Subscription{Type: models.TierFree},
		DailyStreams: models.DailyStreams{Date: service.DayStart(now), Count: 1},
		IsActive:     true,
	}}
	mw := NewAccessMiddleware(users, &fakeMovieLoader{}, service.NewAccessService())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	w := httptest.NewRecorder()
	mw.CheckDailyLimit(next).ServeHTTP(w, streamRequest(t, users.user.ID, primitive.NewObjectID()))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
	body := denialBody(t, w)
	if body["requiresSubscription"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestRequireSubscriptionUpgradeDenial(t *testing.T) {
	movieID := primitive.NewObjectID()
	users := &fakeUserLoader{user: &models.User{
		ID:           primitive.NewObjectID(),
		Role:         models.RoleUser,
		Subscription: models.Subscription{Type: models.TierFree},
		IsActive:     true,
	}}
	movies := &fakeMovieLoader{movie: &models.Movie{
		ID:                   movieID,
		SubscriptionRequired: models.TierPremium,
	}}
	mw := NewAccessMiddleware(users, movies, service.NewAccessService())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	w := httptest.NewRecorder()
	mw.RequireSubscription(next).ServeHTTP(w, streamRequest(t, users.user.ID, movieID))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
	body := denialBody(t, w)
	if body["requiredSubscription"] != models.TierPremium {
		t.Fatalf("body = %v", body)
	}
}

func TestRequireSubscriptionUnknownMovie(t *testing.T) {
	users := &fakeUserLoader{user: &models.User{
		ID:           primitive.NewObjectID(),
		Role:         models.RoleUser,
		Subscription: models.Subscription{Type: models.TierPremium},
		IsActive:     true,
	}}
	mw := NewAccessMiddleware(users, &fakeMovieLoader{}, service.NewAccessService())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	w := httptest.NewRecorder()
	mw.RequireSubscription(next).ServeHTTP(w, streamRequest(t, users.user.ID, primitive.NewObjectID()))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRequireDownloadAccessFreeTier(t *testing.T) {
	users := &fakeUserLoader{user: &models.User{
		ID:           primitive.NewObjectID(),
		Role:         models.RoleUser,
		Subscription: models.Subscription{Type: models.TierFree},
		IsActive:     true,
	}}
	mw := NewAccessMiddleware(users, &fakeMovieLoader{}, service.NewAccessService())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	w := httptest.NewRecorder()
	mw.RequireDownloadAccess(next).ServeHTTP(w, streamRequest(t, users.user.ID, primitive.NewObjectID()))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
	body := denialBody(t, w)
	if body["feature"] != "download" {
		t.Fatalf("body = %v", body)
	}
}

package main

import (
	"net/http"

	_ "github.com/jonathanaloya/cineflix/docs" // swagger docs

	"github.com/jonathanaloya/cineflix/internal/cache"
	"github.com/jonathanaloya/cineflix/internal/config"
	"github.com/jonathanaloya/cineflix/internal/db"
	"github.com/jonathanaloya/cineflix/internal/handler"
	"github.com/jonathanaloya/cineflix/internal/logging"
	"github.com/jonathanaloya/cineflix/internal/payments"
	"github.com/jonathanaloya/cineflix/internal/repository"
	"github.com/jonathanaloya/cineflix/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title CineFlix API
// @version 1.0
// @description Subscription video streaming backend (Mongo, Redis, Flutterwave)
// @host localhost:5000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	logging.Setup(cfg.AppEnv)

	// Mongo and the Redis-backed cache
	db.InitMongo(cfg)
	store := cache.New(cfg.RedisAddr, cfg.RedisPass)

	// repos
	userRepo := repository.NewUserRepository()
	movieRepo := repository.NewMovieRepository()

	// payment provider; nil keeps checkout disabled until a key is set
	var provider payments.Provider
	if cfg.FlwSecretKey != "" {
		provider = payments.New(cfg.FlwSecretKey)
	} else {
		log.Warn().Msg("FLW_SECRET_KEY not set, checkout disabled")
	}

	// services
	accessSvc := service.NewAccessService()
	authSvc := service.NewAuthService(userRepo, movieRepo, cfg.JWTSecret)
	movieSvc := service.NewMovieService(movieRepo, userRepo, store, accessSvc, cfg.BaseURL)
	subSvc := service.NewSubscriptionService(userRepo, provider, cfg.FrontendURL)
	adminSvc := service.NewAdminService(userRepo, movieRepo)

	// handlers
	authH := handler.NewAuthHandler(authSvc)
	movieH := handler.NewMovieHandler(movieSvc)
	subH := handler.NewSubscriptionHandler(subSvc)
	adminH := handler.NewAdminHandler(adminSvc, movieSvc, cfg.UploadDir)
	mediaH := handler.NewMediaHandler(cfg.UploadDir)
	accessMw := handler.NewAccessMiddleware(userRepo, movieRepo, accessSvc)

	r := chi.NewRouter()
	r.Use(handler.RequestLogger)
	r.Use(middleware.Recoverer)

	// =============
	// Public routes
	// =============
	r.Get("/health", handler.Health)

	r.Post("/auth/register", authH.Register)
	r.Post("/auth/login", authH.Login)

	// Catalog (public, metadata only)
	r.Get("/movies", movieH.List)
	r.Get("/movies/featured", movieH.Featured)
	r.Get("/movies/category/{category}", movieH.ListByCategory)
	r.Get("/movies/{id}", movieH.GetByID)

	r.Get("/subscriptions/plans", subH.Plans)

	// stored media with byte-range support
	r.Get("/uploads/*", mediaH.Serve)

	// ===========================
	// JWT-protected routes
	// ===========================
	authMw := handler.JWTAuth(cfg.JWTSecret)

	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.Get("/auth/me", authH.Me)
		r.Get("/auth/lists", authH.GetLists)
		r.Post("/auth/watchlist/{movieId}", authH.AddToList(service.ListWatchlist))
		r.Delete("/auth/watchlist/{movieId}", authH.RemoveFromList(service.ListWatchlist))
		r.Post("/auth/favorites/{movieId}", authH.AddToList(service.ListFavorites))
		r.Delete("/auth/favorites/{movieId}", authH.RemoveFromList(service.ListFavorites))

		// stream: daily limit first, then subscription
		r.With(accessMw.CheckDailyLimit, accessMw.RequireSubscription).
			Get("/movies/{id}/stream/{language}", movieH.Stream)
		r.With(accessMw.RequireDownloadAccess).
			Post("/movies/{id}/download/{language}", movieH.Download)

		r.Post("/subscriptions/create", subH.Create)
		r.Post("/subscriptions/verify", subH.Verify)
		r.Post("/subscriptions/cancel", subH.Cancel)

		// ---- ADMIN-only endpoints ----
		r.Group(func(r chi.Router) {
			r.Use(handler.AdminOnly())

			r.Get("/admin/dashboard", adminH.Dashboard)
			r.Get("/admin/ws/dashboard", adminH.DashboardWS)

			r.Get("/admin/users", adminH.ListUsers)
			r.Patch("/admin/users/{id}/status", adminH.UpdateUserStatus)

			r.Get("/admin/movies", adminH.ListMovies)
			r.Post("/admin/movies", adminH.CreateMovie)
			r.Put("/admin/movies/{id}", adminH.UpdateMovie)
			r.Delete("/admin/movies/{id}", adminH.DeleteMovie)
		})
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log.Info().Str("port", cfg.HTTPPort).Msg("HTTP listening")
	log.Fatal().Err(http.ListenAndServe(":"+cfg.HTTPPort, r)).Msg("server stopped")
}

package routes

import (
	"net/http"

	"lokal-bknd/internal/auth"
	"lokal-bknd/internal/config"
	"lokal-bknd/internal/handlers"
	"lokal-bknd/internal/logger"
	mdlwr "lokal-bknd/internal/middleware"
	"lokal-bknd/internal/overpass"
	"lokal-bknd/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/uptrace/bun"
)

// Services bundles the service layer so the scheduler can share it with the router.
type Services struct {
	JWT      *auth.JWTManager
	Auth     *services.AuthService
	Seed     *services.SeedService
	Business *services.BusinessService
	Review   *services.ReviewService
}

// NewServices wires the service layer.
func NewServices(db *bun.DB, cfg *config.Config, logr *logger.Logger, jwtMgr *auth.JWTManager) *Services {
	fetcher := overpass.NewClient(cfg.OverpassURL, logr.Logger)
	return &Services{
		JWT:      jwtMgr,
		Auth:     services.NewAuthService(db, jwtMgr, cfg, logr),
		Seed:     services.NewSeedService(db, fetcher, logr),
		Business: services.NewBusinessService(db),
		Review:   services.NewReviewService(db),
	}
}

func NewRouter(svcs *Services, cfg *config.Config, logr *logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// CORS middleware with config
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authMW := mdlwr.NewAuthMiddleware(svcs.JWT.PublicKey(), svcs.Auth, logr.Logger)

	authHandler := handlers.NewAuthHandler(svcs.Auth, logr, cfg)
	seedHandler := handlers.NewSeedHandler(svcs.Seed, logr.Logger)
	businessHandler := handlers.NewBusinessHandler(svcs.Business, logr.Logger)
	reviewHandler := handlers.NewReviewHandler(svcs.Review, logr.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))
		if err != nil {
			return
		}
	})

	r.Route("/api", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(authMW.JWTAuth)
				r.Post("/refresh", authHandler.Refresh)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Route("/businesses", func(r chi.Router) {
			r.Get("/", businessHandler.ListBusinesses)

			r.Route("/seed", func(r chi.Router) {
				//r.Use(authMW.JWTAuth) // TODO: restrict seeding to admins once the admin role rollout lands
				r.Get("/", seedHandler.Preview)
				r.Post("/", seedHandler.Seed)
			})

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", businessHandler.GetBusiness)
				r.Get("/reviews", reviewHandler.ListReviews)

				r.Group(func(r chi.Router) {
					r.Use(authMW.JWTAuth)
					r.Post("/reviews", reviewHandler.CreateReview)
				})
			})
		})

		r.Get("/categories", businessHandler.GetCategories)
	})

	return r
}

package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/knowelle28/autobook/internal/config"
	"github.com/knowelle28/autobook/internal/domain"
	"github.com/knowelle28/autobook/internal/handler"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	services handler.ServiceHandler,
	staff handler.StaffHandler,
	bookings handler.BookingHandler,
	hours handler.HoursHandler,
	settings handler.SettingsHandler,
	admin handler.AdminHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	services.RegisterPublicRoutes(r)
	staff.RegisterPublicRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		// customer-level (any authenticated account)
		pr.Group(func(cr chi.Router) {
			cr.Use(RequireRole(domain.RoleAdmin, domain.RoleCustomer))
			auth.RegisterProtectedRoutes(cr)
			bookings.RegisterRoutes(cr)
		})
		// admin-level
		pr.Group(func(ar chi.Router) {
			ar.Use(RequireRole(domain.RoleAdmin))
			auth.RegisterAdminRoutes(ar)
			admin.RegisterRoutes(ar)
			services.RegisterAdminRoutes(ar)
			staff.RegisterAdminRoutes(ar)
			hours.RegisterRoutes(ar)
			settings.RegisterRoutes(ar)
		})
	})

	return r
}

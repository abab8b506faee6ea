package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VIERNES-8020/domino-backend/api/controllers"
	"github.com/VIERNES-8020/domino-backend/api/middleware"
	"github.com/VIERNES-8020/domino-backend/internal/arxis"
	"github.com/VIERNES-8020/domino-backend/internal/auth"
	"github.com/VIERNES-8020/domino-backend/internal/closures"
	"github.com/VIERNES-8020/domino-backend/internal/dashboard"
	"github.com/VIERNES-8020/domino-backend/internal/media"
	"github.com/VIERNES-8020/domino-backend/internal/notifications"
	"github.com/VIERNES-8020/domino-backend/internal/properties"
	"github.com/VIERNES-8020/domino-backend/internal/users"
	"github.com/VIERNES-8020/domino-backend/pkg/auth/session"
	"github.com/VIERNES-8020/domino-backend/pkg/config"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	"github.com/VIERNES-8020/domino-backend/pkg/logger"
	"github.com/VIERNES-8020/domino-backend/pkg/metrics"
	"github.com/VIERNES-8020/domino-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Redis         *redis.Client
	Sessions      session.AccessSessionChecker
	Readiness     map[string]controllers.Pinger
	Metrics       *metrics.HTTPMetrics
	Auth          auth.Service
	Users         users.Service
	Properties    properties.Service
	Media         media.Service
	Closures      closures.Service
	Notifications notifications.Service
	Arxis         arxis.Service
	Dashboard     dashboard.Service
}

// NewRouter assembles the full HTTP surface: public catalog, authenticated
// API, and the admin plane.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public/v1", func(r chi.Router) {
		r.Get("/properties", controllers.PublicListings(deps.Properties, logg))
		r.Get("/properties/{propertyId}", controllers.PublicListingDetail(deps.Properties, logg))
		r.Post("/properties/{propertyId}/inquiries", controllers.PublicCreateInquiry(deps.Notifications, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(deps.Users, logg))
			r.Put("/", controllers.ProfileUpdate(deps.Users, logg))
		})

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", controllers.PropertyList(deps.Properties, logg))
			r.Post("/", controllers.PropertyCreate(deps.Properties, logg))
			r.Get("/{propertyId}", controllers.PropertyGet(deps.Properties, logg))
			r.Patch("/{propertyId}", controllers.PropertyUpdate(deps.Properties, logg))
			r.Delete("/{propertyId}", controllers.PropertyDelete(deps.Properties, logg))
		})

		r.Route("/media", func(r chi.Router) {
			r.Get("/", controllers.MediaList(deps.Media, logg))
			r.Post("/presign", controllers.MediaPresign(deps.Media, logg))
			r.Delete("/{mediaId}", controllers.MediaDelete(deps.Media, logg))
		})

		r.Route("/closures", func(r chi.Router) {
			r.Get("/", controllers.ClosureList(deps.Closures, logg))
			r.Post("/", controllers.ClosureSubmit(deps.Closures, logg))
			r.Get("/stats", controllers.ClosureStats(deps.Closures, logg))
			r.Get("/{closureId}", controllers.ClosureGet(deps.Closures, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/{notificationId}/respond", controllers.RespondNotification(deps.Notifications, logg))
		})

		r.Route("/arxis", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleArxis, enums.UserRoleAdmin, enums.UserRoleSuperAdmin))
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", controllers.ArxisProjectList(deps.Arxis, logg))
				r.Post("/", controllers.ArxisProjectCreate(deps.Arxis, logg))
				r.Get("/{projectId}", controllers.ArxisProjectGet(deps.Arxis, logg))
				r.Patch("/{projectId}", controllers.ArxisProjectUpdate(deps.Arxis, logg))
				r.Delete("/{projectId}", controllers.ArxisProjectDelete(deps.Arxis, logg))
				r.Get("/{projectId}/reports", controllers.ArxisReportList(deps.Arxis, logg))
				r.Post("/{projectId}/reports", controllers.ArxisReportCreate(deps.Arxis, logg))
			})
			r.Route("/maintenance", func(r chi.Router) {
				r.Get("/", controllers.ArxisMaintenanceList(deps.Arxis, logg))
				r.Post("/", controllers.ArxisMaintenanceCreate(deps.Arxis, logg))
				r.Patch("/{requestId}", controllers.ArxisMaintenanceUpdate(deps.Arxis, logg))
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/agent", controllers.DashboardAgent(deps.Dashboard, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleAccounting, enums.UserRoleAdmin, enums.UserRoleSuperAdmin)).
				Get("/accounting", controllers.DashboardAccounting(deps.Dashboard, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleArxis, enums.UserRoleAdmin, enums.UserRoleSuperAdmin)).
				Get("/arxis", controllers.DashboardArxis(deps.Dashboard, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin, enums.UserRoleSuperAdmin))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(deps.Users, logg))
			r.Put("/{userId}/role", controllers.AdminChangeRole(deps.Users, logg))
			r.Put("/{userId}/active", controllers.AdminSetActive(deps.Users, logg))
		})

		r.Route("/closures", func(r chi.Router) {
			r.Get("/", controllers.ClosureList(deps.Closures, logg))
			r.Get("/stats", controllers.ClosureStats(deps.Closures, logg))
			r.Get("/{closureId}", controllers.ClosureGet(deps.Closures, logg))
			r.Post("/{closureId}/validate", controllers.AdminClosureValidate(deps.Closures, logg))
			r.Post("/{closureId}/reject", controllers.AdminClosureReject(deps.Closures, logg))
		})

		r.Get("/dashboard", controllers.DashboardAdmin(deps.Dashboard, logg))
	})

	return r
}

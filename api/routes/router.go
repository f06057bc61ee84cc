package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hemolink/bloodbank-backend/api/controllers"
	"github.com/hemolink/bloodbank-backend/api/middleware"
	"github.com/hemolink/bloodbank-backend/internal/auth"
	"github.com/hemolink/bloodbank-backend/internal/dashboard"
	"github.com/hemolink/bloodbank-backend/internal/donors"
	"github.com/hemolink/bloodbank-backend/internal/inventory"
	"github.com/hemolink/bloodbank-backend/internal/matching"
	"github.com/hemolink/bloodbank-backend/internal/patients"
	"github.com/hemolink/bloodbank-backend/internal/requests"
	"github.com/hemolink/bloodbank-backend/pkg/auth/session"
	"github.com/hemolink/bloodbank-backend/pkg/config"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"github.com/hemolink/bloodbank-backend/pkg/logger"
	"github.com/hemolink/bloodbank-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth      auth.Service
	Donors    donors.Service
	Patients  patients.Service
	Inventory inventory.Service
	Requests  requests.Service
	Matching  matching.Service
	Dashboard dashboard.Service
}

// Dependencies carries the infrastructure handles the middleware stack needs.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	PromGateway prometheus.Gatherer
}

func NewRouter(deps Dependencies, svcs Services) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

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

	adminOnly := middleware.RequireRole(logg, string(enums.UserRoleAdmin))
	requesterOnly := middleware.RequireRole(logg, string(enums.UserRoleDonor), string(enums.UserRolePatient))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    deps.Redis,
		}))
	})

	if deps.PromGateway != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PromGateway, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/admin/login", controllers.AdminAuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
		if !cfg.App.IsProd() {
			r.With(middleware.Idempotency(deps.Redis, logg)).Post("/admin/register", controllers.AdminRegister(svcs.Auth, logg))
		}
	})

	// Public registration for donors and patients.
	r.With(middleware.Idempotency(deps.Redis, logg), middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
		Post("/api/v1/donors", controllers.DonorRegister(svcs.Donors, logg))
	r.With(middleware.Idempotency(deps.Redis, logg), middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
		Post("/api/v1/patients", controllers.PatientRegister(svcs.Patients, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/donors", func(r chi.Router) {
			r.With(adminOnly).Get("/", controllers.DonorList(svcs.Donors, logg))
			r.Get("/{donorID}", controllers.DonorGet(svcs.Donors, logg))
			r.Patch("/{donorID}", controllers.DonorUpdate(svcs.Donors, logg))
			r.Post("/{donorID}/verify-email", controllers.DonorVerifyEmail(svcs.Donors, logg))
			r.Delete("/{donorID}", controllers.DonorDelete(svcs.Donors, logg))
		})

		r.Route("/patients", func(r chi.Router) {
			r.With(adminOnly).Get("/", controllers.PatientList(svcs.Patients, logg))
			r.Get("/{patientID}", controllers.PatientGet(svcs.Patients, logg))
			r.Patch("/{patientID}", controllers.PatientUpdate(svcs.Patients, logg))
			r.Post("/{patientID}/verify-email", controllers.PatientVerifyEmail(svcs.Patients, logg))
			r.Delete("/{patientID}", controllers.PatientDelete(svcs.Patients, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Get("/", controllers.StockList(svcs.Inventory, logg))
			r.Get("/{bloodGroup}", controllers.StockGet(svcs.Inventory, logg))
			r.With(adminOnly).Put("/{bloodGroup}", controllers.StockSet(svcs.Inventory, logg))
		})

		r.Route("/requests", func(r chi.Router) {
			r.Route("/donations", func(r chi.Router) {
				r.With(middleware.RequireRole(logg, string(enums.UserRoleDonor))).
					Post("/", controllers.DonationRequestSubmit(svcs.Requests, logg))
				// Listing self-scopes to the caller unless they are an admin.
				r.Get("/", controllers.DonationRequestList(svcs.Requests, logg))
				r.With(adminOnly).Post("/{requestID}/decision", controllers.DonationRequestDecide(svcs.Requests, logg))
			})

			r.Route("/blood", func(r chi.Router) {
				r.With(requesterOnly).Post("/", controllers.BloodRequestSubmit(svcs.Requests, logg))
				r.Get("/", controllers.BloodRequestList(svcs.Requests, logg))
				r.With(adminOnly).Post("/{requestID}/decision", controllers.BloodRequestDecide(svcs.Requests, logg))
				r.With(adminOnly).Post("/{requestID}/match-donors", controllers.BloodRequestMatchDonors(svcs.Matching, logg))
			})
		})

		r.With(adminOnly).Get("/dashboard", controllers.DashboardSummary(svcs.Dashboard, logg))
	})

	return r
}

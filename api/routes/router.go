package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gegsoft/paytrack-backend/api/controllers"
	"github.com/gegsoft/paytrack-backend/api/middleware"
	"github.com/gegsoft/paytrack-backend/internal/activity"
	"github.com/gegsoft/paytrack-backend/internal/auth"
	"github.com/gegsoft/paytrack-backend/internal/contractors"
	"github.com/gegsoft/paytrack-backend/internal/contracts"
	"github.com/gegsoft/paytrack-backend/internal/dashboard"
	"github.com/gegsoft/paytrack-backend/internal/payments"
	"github.com/gegsoft/paytrack-backend/internal/projects"
	"github.com/gegsoft/paytrack-backend/internal/users"
	"github.com/gegsoft/paytrack-backend/pkg/auth/session"
	"github.com/gegsoft/paytrack-backend/pkg/config"
	"github.com/gegsoft/paytrack-backend/pkg/db"
	"github.com/gegsoft/paytrack-backend/pkg/logger"
	"github.com/gegsoft/paytrack-backend/pkg/metrics"
	"github.com/gegsoft/paytrack-backend/pkg/redis"
)

// Deps bundles everything the router needs wired in.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       db.Pinger
	RedisPinger    redis.Pinger
	SessionChecker session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics

	AuthService        auth.Service
	UsersService       users.Service
	ProjectsService    projects.Service
	ContractorsService contractors.Service
	ContractsService   contracts.Service
	PaymentsService    payments.Service
	ActivityService    activity.Service
	DashboardService   dashboard.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Metrics(d.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DBPinger, d.RedisPinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, d.SessionChecker, logg)).
			Post("/logout", controllers.AuthLogout(d.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.SessionChecker, logg))

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", controllers.ProjectList(d.ProjectsService, logg))
			r.Post("/", controllers.ProjectCreate(d.ProjectsService, logg))
			r.Get("/{projectId}", controllers.ProjectDetail(d.ProjectsService, logg))
			r.Patch("/{projectId}", controllers.ProjectUpdate(d.ProjectsService, logg))
			r.Delete("/{projectId}", controllers.ProjectDelete(d.ProjectsService, logg))
			r.Route("/{projectId}/assignments", func(r chi.Router) {
				r.Get("/", controllers.ProjectAssignedUsers(d.ProjectsService, logg))
				r.Post("/", controllers.ProjectAssignUser(d.ProjectsService, logg))
				r.Delete("/{userId}", controllers.ProjectUnassignUser(d.ProjectsService, logg))
			})
		})

		r.Route("/contractors", func(r chi.Router) {
			r.Get("/", controllers.ContractorList(d.ContractorsService, logg))
			r.Post("/", controllers.ContractorCreate(d.ContractorsService, logg))
			r.Get("/{contractorId}", controllers.ContractorDetail(d.ContractorsService, logg))
			r.Patch("/{contractorId}", controllers.ContractorUpdate(d.ContractorsService, logg))
			r.Delete("/{contractorId}", controllers.ContractorDelete(d.ContractorsService, logg))
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", controllers.ContractList(d.ContractsService, logg))
			r.Post("/", controllers.ContractCreate(d.ContractsService, logg))
			r.Get("/{contractId}", controllers.ContractDetail(d.ContractsService, logg))
			r.Patch("/{contractId}", controllers.ContractUpdate(d.ContractsService, logg))
			r.Delete("/{contractId}", controllers.ContractDelete(d.ContractsService, logg))
		})

		r.Route("/payment-requests", func(r chi.Router) {
			r.Get("/", controllers.PaymentRequestList(d.PaymentsService, logg))
			r.Post("/", controllers.PaymentRequestCreate(d.PaymentsService, logg))
			r.Get("/totals", controllers.PaymentRequestTotals(d.PaymentsService, logg))
			r.Get("/{paymentRequestId}", controllers.PaymentRequestDetail(d.PaymentsService, logg))
			r.Patch("/{paymentRequestId}", controllers.PaymentRequestUpdate(d.PaymentsService, logg))
			r.Delete("/{paymentRequestId}", controllers.PaymentRequestDelete(d.PaymentsService, logg))
			r.Post("/{paymentRequestId}/transition", controllers.PaymentRequestTransition(d.PaymentsService, logg))
			r.Route("/{paymentRequestId}/attachments", func(r chi.Router) {
				r.Get("/", controllers.AttachmentList(d.PaymentsService, logg))
				r.Post("/", controllers.AttachmentAdd(d.PaymentsService, logg))
			})
		})

		r.Route("/attachments", func(r chi.Router) {
			r.Get("/{attachmentId}/download", controllers.AttachmentDownload(d.PaymentsService, logg))
			r.Delete("/{attachmentId}", controllers.AttachmentDelete(d.PaymentsService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.UserList(d.UsersService, logg))
			r.Post("/", controllers.UserCreate(d.UsersService, logg))
			r.Get("/{userId}", controllers.UserDetail(d.UsersService, logg))
			r.Patch("/{userId}", controllers.UserUpdate(d.UsersService, logg))
			r.Delete("/{userId}", controllers.UserDelete(d.UsersService, logg))
		})

		r.Get("/activity", controllers.ActivityList(d.ActivityService, logg))
		r.Get("/dashboard/summary", controllers.DashboardSummary(d.DashboardService, logg))
	})

	return r
}

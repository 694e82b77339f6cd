package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campuskeep/staffdir-backend/api/controllers"
	"github.com/campuskeep/staffdir-backend/api/middleware"
	"github.com/campuskeep/staffdir-backend/internal/identity"
	"github.com/campuskeep/staffdir-backend/internal/registrations"
	"github.com/campuskeep/staffdir-backend/internal/staff"
	"github.com/campuskeep/staffdir-backend/pkg/config"
	"github.com/campuskeep/staffdir-backend/pkg/logger"
	"github.com/campuskeep/staffdir-backend/pkg/metrics"
)

// Deps carries everything the route table needs. Pages is optional for
// API-only deployments; nil disables the HTML routes.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Verifier      identity.TokenVerifier
	Admins        middleware.AdminChecker
	StaffService  staff.Service
	Registrations registrations.Service
	Importer      controllers.ImportRunner
	Uploads       controllers.UploadHandler
	Pages         *controllers.Pages
	Metrics       *metrics.HTTPMetrics
	Gatherer      prometheus.Gatherer
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.Metrics(d.Metrics),
		middleware.CORS(d.Config.CORS.Origins),
	)

	authed := middleware.Auth(d.Verifier, d.Logger)
	admin := middleware.AdminOnly(d.Verifier, d.Admins, d.Logger)
	maxUploadMB := int64(d.Config.Uploads.MaxUploadMB)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/create_if_staff", controllers.CreateIfStaff(d.StaffService, d.Logger))
		r.Post("/submit_registration", controllers.SubmitRegistration(d.Registrations, d.Logger))

		r.With(authed).Get("/staffs", controllers.StaffList(d.StaffService, d.Logger))
		r.With(authed).Post("/upload_file", controllers.UploadFile(d.Uploads, maxUploadMB, d.Logger))

		r.With(admin).Post("/upload_excel", controllers.UploadExcel(d.Importer, maxUploadMB, d.Logger))
		r.With(admin).Get("/pending_registrations", controllers.PendingRegistrations(d.Registrations, d.Logger))
		r.With(admin).Post("/approve_registration", controllers.ApproveRegistration(d.Registrations, d.Logger))
		r.With(admin).Post("/reject_registration", controllers.RejectRegistration(d.Registrations, d.Logger))

		r.Route("/staff", func(r chi.Router) {
			r.Use(admin)
			r.Get("/test_admin_check", controllers.AdminCheck())
			r.Post("/bulk_delete", controllers.StaffBulkDelete(d.StaffService, d.Logger))
			r.Delete("/{id}", controllers.StaffDelete(d.StaffService, d.Logger))
			r.Put("/{id}/type", controllers.StaffUpdateType(d.StaffService, d.Logger))
		})
	})

	if d.Pages != nil {
		pages := middleware.PageAuth()
		r.With(pages).Get("/", d.Pages.Login)
		r.With(pages).Get("/staff_list.html", d.Pages.StaffList)
		r.With(pages).Get("/admin.html", d.Pages.Admin)
		r.With(pages).Get("/staff-registration", d.Pages.Registration)
		r.Handle("/static/*", controllers.Static(d.Config.Web.StaticDir))
	}

	return r
}

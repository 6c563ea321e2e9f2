/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: Structured request logs (httplog, ECS schema)
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for the frontend
  5. Heartbeat:     GET /ping for load balancers

ROUTE GROUPS:
  /api/lock/*       App lock (never gated)
  /api/scenarios/*  Demo scenarios (never gated)
  /api/*            Workers, attendance, payroll (423 while Locked)
  /metrics          Prometheus
  /*                Static files (frontend), when built

SEE ALSO:
  - handlers.go: Handler implementations
  - lock.go: RequireUnlocked
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	// StaticDir is served at /* when it exists. Empty disables it.
	StaticDir string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(h.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Heartbeat("/ping"))

	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/lock", func(r chi.Router) {
			r.Get("/", h.GetLockState)
			r.Post("/enable", h.EnableLock)
			r.Post("/disable", h.DisableLock)
			r.Post("/unlock", h.UnlockApp)
			r.Post("/relock", h.RelockApp)
			r.Put("/passcode", h.SetPasscode)
		})

		r.Get("/statuses", h.ListStatuses)

		// Loading or resetting wipes attendance, so it is gated like the data routes.
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.With(h.RequireUnlocked).Post("/load", h.LoadScenario)
			r.With(h.RequireUnlocked).Post("/reset", h.ResetDatabase)
		})

		// Attendance data is hidden while the app is locked.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireUnlocked)

			r.Route("/workers", func(r chi.Router) {
				r.Get("/", h.ListWorkers)
				r.Post("/", h.CreateWorker)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetWorker)
					r.Put("/", h.UpdateWorker)
					r.Delete("/", h.DeleteWorker)
					r.Get("/attendance", h.GetMonthAttendance)
					r.Put("/attendance/{date}", h.SetAttendance)
					r.Delete("/attendance/{date}", h.ClearAttendance)
					r.Get("/payroll", h.GetPayroll)
				})
			})

			r.Get("/summary", h.GetSummary)
			r.Get("/summary.csv", h.ExportSummaryCSV)
		})
	})

	if dir := resolveStaticDir(opts.StaticDir); dir != "" {
		fileServer := http.FileServer(http.Dir(dir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			if _, err := os.Stat(filepath.Join(dir, filepath.Clean(r.URL.Path))); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(dir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	}

	return r
}

// resolveStaticDir tries dir as given, then relative to the executable.
func resolveStaticDir(dir string) string {
	if dir == "" {
		return ""
	}
	if _, err := os.Stat(dir); err == nil {
		return dir
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	alt := filepath.Join(filepath.Dir(exe), dir)
	if _, err := os.Stat(alt); err == nil {
		return alt
	}
	return ""
}

package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/lead-pipeline/internal/infra/http/handlers"
	"github.com/xavierca1/lead-pipeline/internal/infra/http/middleware"
)

var (
	corsMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsHeaders = []string{"authorization", "x-client-info", "apikey", "content-type", middleware.UserIDHeader}
)

type routes struct {
	Leads     *handlers.LeadHandler
	Research  *handlers.ResearchHandler
	Dashboard *handlers.DashboardHandler
	Health    *handlers.HealthHandler
}

func newRouter(h routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: corsMethods,
		AllowedHeaders: corsHeaders,
		MaxAge:         300,
	}))
	r.Use(answerOptions)

	r.Get("/health", h.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Post("/leads", h.Leads.HandleCreate)
		r.Get("/leads", h.Leads.HandleList)
		r.Get("/leads/stream", h.Leads.HandleStream)
		r.Patch("/leads/{id}", h.Leads.HandleUpdate)

		r.Get("/stats", h.Dashboard.HandleStats)
		r.Get("/meetings/upcoming", h.Dashboard.HandleUpcomingMeetings)

		r.Post("/research-lead", h.Research.Handle)
	})

	return r
}

// answerOptions replies 204 to OPTIONS requests the cors handler passed
// through (no Access-Control-Request-Method), before identity is checked.
func answerOptions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", strings.Join(corsMethods, ", "))
		h.Set("Access-Control-Allow-Headers", strings.Join(corsHeaders, ", "))
		w.WriteHeader(http.StatusNoContent)
	})
}

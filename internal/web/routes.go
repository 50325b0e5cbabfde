package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/ngocvo/rollcall/internal/extract"
	"github.com/ngocvo/rollcall/internal/verify"
	"github.com/ngocvo/rollcall/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	oracle := verify.NewClient(s.config.Oracle.URL, s.config.Oracle.Model)
	var extractor extract.Extractor
	if s.config.Extractor.URL != "" {
		extractor = extract.NewClient(s.config.Extractor.URL)
	}

	bucketsHandler := handlers.NewBucketsHandler(s.config, s.registry)
	attendanceHandler := handlers.NewAttendanceHandler(s.config)
	reconcileHandler := handlers.NewReconcileHandler(s.config, s.registry, bucketsHandler, oracle, s.runs)
	scanHandler := handlers.NewScanHandler(s.config, s.registry, extractor)
	tasksHandler := handlers.NewTasksHandler(s.registry)
	resultsHandler := handlers.NewResultsHandler(s.config)
	runsHandler := handlers.NewRunsHandler(s.runs)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/attendance/analyze", attendanceHandler.Analyze)

		r.Post("/reconcile", reconcileHandler.Start)
		r.Post("/scan", scanHandler.Start)

		r.Get("/tasks", tasksHandler.List)
		r.Get("/tasks/{taskID}", tasksHandler.Get)
		r.Get("/tasks/{taskID}/results", tasksHandler.Results)
		r.Get("/tasks/{taskID}/events", tasksHandler.Events)

		r.Post("/buckets/rescan", bucketsHandler.Rescan)
		r.Get("/buckets/stats", bucketsHandler.Stats)

		r.Get("/results", resultsHandler.List)
		r.Get("/results/{filename}", resultsHandler.Download)

		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{runID}/records", runsHandler.Records)
	})
}

package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/face-attendance/internal/web/handlers"
	"github.com/kozaktomas/face-attendance/internal/web/static"
)

func (s *Server) setupRoutes() {
	attendanceHandler := handlers.NewAttendanceHandler(s.board)
	configHandler := handlers.NewConfigHandler(s.config)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Streaming route, no request timeout
		r.Get("/attendance/events", attendanceHandler.Events)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(30 * time.Second))

			r.Get("/attendance", attendanceHandler.List)
			r.Get("/status", attendanceHandler.Status)
			r.Get("/frame.jpg", attendanceHandler.Frame)
			r.Get("/config", configHandler.Get)
		})
	})

	// Dashboard page and its assets
	s.router.Get("/*", s.serveStatic)
}

// serveStatic serves the embedded dashboard files
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	if !static.HasDist() {
		http.Error(w, "dashboard not available", http.StatusNotFound)
		return
	}
	static.Handler().ServeHTTP(w, r)
}

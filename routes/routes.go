package routes

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/fidel-league/docs"
	"github.com/Dosada05/fidel-league/handlers"
	"github.com/Dosada05/fidel-league/middleware"
)

const requestTimeout = 30 * time.Second

func SetupRoutes(
	router *chi.Mux,
	logger *slog.Logger,
	allowedOrigins []string,
	leagueHandler *handlers.LeagueHandler,
	feedHandler *handlers.FeedHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Amz-Date", "X-Api-Key", "X-Amz-Security-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", leagueHandler.Health)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// The websocket route stays outside the timeout middleware.
	router.Get("/ws/standings", feedHandler.ServeStandings)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(requestTimeout))

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", leagueHandler.ListTeams)
			r.Post("/", leagueHandler.CreateTeam)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", leagueHandler.ListMatches)
			r.Post("/", leagueHandler.RecordMatch)
			r.Get("/preview", leagueHandler.PreviewMatch)
			r.Delete("/{matchID}", leagueHandler.DeleteMatch)
		})

		r.Post("/recompute", leagueHandler.Recompute)
	})
}

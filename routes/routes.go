package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/kumiteops/kumite-system/handlers"
	"github.com/kumiteops/kumite-system/middleware"
	"github.com/kumiteops/kumite-system/models"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	eventHandler *handlers.EventHandler,
	matchHandler *handlers.MatchHandler,
	athleteHandler *handlers.AthleteHandler,
	wsHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	authenticate := middleware.Authenticate([]byte(jwtSecret))
	adminOnly := middleware.Authorize(string(models.RoleAdmin))
	scoringRoles := middleware.Authorize(string(models.RoleAdmin), string(models.RoleJudge))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{eventID}", eventHandler.GetEvent)
		r.Get("/{eventID}/matches", eventHandler.ListMatches)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/", eventHandler.CreateEvent)
			r.Put("/{eventID}", eventHandler.UpdateEvent)
			r.Post("/{eventID}/athletes", eventHandler.RegisterAthletes)
			r.Post("/{eventID}/bracket", eventHandler.GenerateBracket)
		})
	})

	router.Get("/brackets/metadata/{count}", eventHandler.BracketMetadata)

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetMatch)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(scoringRoles)

			r.Post("/{matchID}/scores", matchHandler.ApplyScore)
			r.Post("/{matchID}/undo", matchHandler.UndoLastAction)
			r.Post("/{matchID}/winner", matchHandler.SetWinner)
		})
	})

	router.Route("/athletes", func(r chi.Router) {
		r.Get("/", athleteHandler.ListAthletes)
		r.Get("/{athleteID}", athleteHandler.GetAthlete)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/", athleteHandler.CreateAthlete)
			r.Put("/{athleteID}", athleteHandler.UpdateAthlete)
			r.Delete("/{athleteID}", athleteHandler.DeleteAthlete)
			r.Post("/{athleteID}/photo", athleteHandler.UploadPhoto)
		})
	})

	router.Get("/ws/events/{eventID}", wsHandler.ServeEventWs)
	router.Get("/ws/matches/{matchID}", wsHandler.ServeMatchWs)
}

package routes

import (
	"github.com/JavierHEM/tarreo-oficial/handlers"
	"github.com/JavierHEM/tarreo-oficial/middleware"
	"github.com/JavierHEM/tarreo-oficial/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/JavierHEM/tarreo-oficial/docs"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Team         *handlers.TeamHandler
	Game         *handlers.GameHandler
	Tournament   *handlers.TournamentHandler
	Registration *handlers.RegistrationHandler
	Bracket      *handlers.BracketHandler
	Match        *handlers.MatchHandler
	Invite       *handlers.InviteHandler
	Notification *handlers.NotificationHandler
	Dashboard    *handlers.DashboardHandler
	WebSocket    *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, jwtSecret []byte) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Route("/games", func(r chi.Router) {
		r.Get("/", h.Game.ListGames)
		r.Get("/{gameID}", h.Game.GetGameByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Post("/", h.Game.CreateGame)
		})
	})

	router.Route("/platforms", func(r chi.Router) {
		r.Get("/", h.Game.ListPlatforms)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Post("/", h.Game.CreatePlatform)
		})
	})

	router.Route("/profiles", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/me", h.Auth.Me)
		r.Get("/looking-for-team", h.Profile.ListLookingForTeam)
		r.Get("/{profileID}", h.Profile.GetByID)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.List)
		r.Get("/{teamID}", h.Team.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", h.Team.Create)
			r.Post("/{teamID}/members", h.Team.AddMember)
			r.Patch("/{teamID}/members/{memberID}/activate", h.Team.ActivateMember)
			r.Put("/{teamID}/logo", h.Team.UploadLogo)
			r.Post("/{teamID}/invitations", h.Invite.InvitePlayer)
			r.Post("/{teamID}/join-requests", h.Invite.RequestToJoin)
			r.Get("/{teamID}/join-requests", h.Invite.ListJoinRequests)
		})
	})

	router.Route("/invitations", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", h.Invite.ListMyInvitations)
		r.Get("/sent", h.Invite.ListSentInvitations)
		r.Post("/{invitationID}/accept", h.Invite.AcceptInvitation)
		r.Post("/{invitationID}/decline", h.Invite.DeclineInvitation)
	})

	router.Route("/join-requests", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/{requestID}/approve", h.Invite.ApproveJoinRequest)
		r.Post("/{requestID}/reject", h.Invite.RejectJoinRequest)
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.Get("/{tournamentID}", h.Tournament.GetByID)
		r.Get("/{tournamentID}/registrations", h.Registration.ListByTournament)
		r.Get("/{tournamentID}/bracket", h.Bracket.Get)
		r.Get("/{tournamentID}/matches", h.Match.ListByTournament)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{tournamentID}/registrations", h.Registration.Register)
			r.Post("/{tournamentID}/subscribe", h.Notification.Subscribe)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Post("/", h.Tournament.Create)
			r.Post("/{tournamentID}/bracket", h.Bracket.Generate)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.Match.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Post("/{matchID}/start", h.Match.Start)
			r.Post("/{matchID}/result", h.Match.RecordResult)
		})
	})

	router.Route("/notifications", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", h.Notification.List)
		r.Patch("/{notificationID}/read", h.Notification.MarkRead)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)
		r.Get("/dashboard", h.Dashboard.GetStats)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
}

package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitversal/coach-scheduler/internal/config"
	"github.com/fitversal/coach-scheduler/internal/handlers"
	"github.com/fitversal/coach-scheduler/internal/middleware"
	"github.com/fitversal/coach-scheduler/internal/observability"
	"github.com/fitversal/coach-scheduler/internal/repository"
	"github.com/fitversal/coach-scheduler/internal/scheduling"
	"github.com/fitversal/coach-scheduler/internal/services"
	schedulews "github.com/fitversal/coach-scheduler/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	sessionRepo := repository.NewSessionRepository(db)
	linkFactory := services.NewMeetLinkFactory(cfg.MeetingLinkBaseURL)
	metrics := observability.NewMetrics("coach_scheduler")

	scheduleHub := schedulews.NewHub()
	go scheduleHub.Run()

	schedulingService := services.NewSchedulingService(
		sessionRepo,
		linkFactory,
		scheduleHub,
		metrics,
		services.SchedulingPolicy{
			WeeklyOccurrences: cfg.WeeklyOccurrences,
			Slots: scheduling.SlotPolicy{
				DayStartHour: cfg.DayStartHour,
				DayEndHour:   cfg.DayEndHour,
				StepMinutes:  cfg.SlotStepMinutes,
			},
		},
	)
	scheduleHandler := handlers.NewScheduleHandler(schedulingService, scheduleHub, cfg.JWTSecret)

	app.Get("/metrics", adaptor.HTTPHandler(observability.MetricsHandler()))

	api := app.Group("/api")
	v1 := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	schedule := v1.Group("/schedule")
	schedule.Post("/propose", scheduleHandler.ProposeSessions)
	schedule.Get("/slots", scheduleHandler.RecommendSlots)
	schedule.Post("/parse", scheduleHandler.ParseText)

	sessions := v1.Group("/sessions")
	sessions.Get("", scheduleHandler.ListSessions)
	sessions.Delete("/:id", scheduleHandler.CancelSession)

	api.Use("/v1/ws", scheduleHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(scheduleHandler.HandleWebSocket))
}

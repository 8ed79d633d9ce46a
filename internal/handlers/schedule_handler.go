package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/fitversal/coach-scheduler/internal/models"
	"github.com/fitversal/coach-scheduler/internal/scheduling"
	"github.com/fitversal/coach-scheduler/internal/services"
	schedulews "github.com/fitversal/coach-scheduler/internal/websocket"
	"github.com/fitversal/coach-scheduler/pkg/utils"
)

type scheduleApplicationService interface {
	ProposeSessions(ctx context.Context, coachID, clientID int64, proposals []models.ProposedSession) (*services.ScheduleOutcome, error)
	RecommendSlots(ctx context.Context, coachID int64, proposedTime time.Time, durationMinutes int, clientID int64) ([]models.TimeSlotRecommendation, error)
	ParseText(input string) scheduling.ParsedSchedule
	ListSessions(ctx context.Context, coachID int64) ([]models.Session, error)
	CancelSession(ctx context.Context, coachID, sessionID int64) (*models.Session, error)
}

type ScheduleHandler struct {
	service   scheduleApplicationService
	hub       *schedulews.Hub
	jwtSecret string
}

func NewScheduleHandler(service *services.SchedulingService, hub *schedulews.Hub, jwtSecret string) *ScheduleHandler {
	return &ScheduleHandler{
		service:   service,
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

type proposedSessionRequest struct {
	ScheduledAt     string  `json:"scheduled_at"`
	DurationMinutes int     `json:"duration_minutes"`
	SessionType     string  `json:"session_type"`
	Notes           *string `json:"notes"`
	Recurrence      string  `json:"recurrence"`
}

type proposeSessionsRequest struct {
	ClientID int64                    `json:"client_id"`
	Sessions []proposedSessionRequest `json:"sessions"`
}

type parseTextRequest struct {
	Text string `json:"text"`
}

func (h *ScheduleHandler) ProposeSessions(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	coachID, err := parseCoachID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req proposeSessionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ClientID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "client_id is required"})
	}
	if len(req.Sessions) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sessions must not be empty"})
	}

	proposals := make([]models.ProposedSession, 0, len(req.Sessions))
	for _, session := range req.Sessions {
		scheduledAt, err := time.Parse(time.RFC3339, strings.TrimSpace(session.ScheduledAt))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scheduled_at must be a valid RFC3339 timestamp"})
		}
		if session.DurationMinutes <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration_minutes must be greater than 0"})
		}
		recurrence := models.Recurrence(strings.TrimSpace(session.Recurrence))
		if recurrence == "" {
			recurrence = models.RecurrenceOnce
		}
		proposals = append(proposals, models.ProposedSession{
			ScheduledAt:     scheduledAt,
			DurationMinutes: session.DurationMinutes,
			SessionType:     session.SessionType,
			Notes:           session.Notes,
			Recurrence:      recurrence,
		})
	}

	outcome, err := h.service.ProposeSessions(c.Context(), coachID, req.ClientID, proposals)
	if err != nil {
		return mapScheduleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"outcome": outcome})
}

func (h *ScheduleHandler) RecommendSlots(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	coachID, err := parseCoachID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	proposedTime, err := time.Parse(time.RFC3339, strings.TrimSpace(c.Query("time")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "time must be a valid RFC3339 timestamp"})
	}
	durationMinutes, err := strconv.Atoi(c.Query("duration_minutes", "60"))
	if err != nil || durationMinutes <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration_minutes must be greater than 0"})
	}
	var clientID int64
	if raw := strings.TrimSpace(c.Query("client_id")); raw != "" {
		clientID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || clientID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client id"})
		}
	}

	slots, err := h.service.RecommendSlots(c.Context(), coachID, proposedTime, durationMinutes, clientID)
	if err != nil {
		return mapScheduleError(c, err)
	}

	return c.JSON(fiber.Map{"slots": slots})
}

func (h *ScheduleHandler) ParseText(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req parseTextRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text must not be empty"})
	}

	return c.JSON(fiber.Map{"parsed": h.service.ParseText(req.Text)})
}

func (h *ScheduleHandler) ListSessions(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	coachID, err := parseCoachID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sessions, err := h.service.ListSessions(c.Context(), coachID)
	if err != nil {
		return mapScheduleError(c, err)
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *ScheduleHandler) CancelSession(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	coachID, err := parseCoachID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.CancelSession(c.Context(), coachID, sessionID)
	if err != nil {
		return mapScheduleError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *ScheduleHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}
	if claims.Role != "coach" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}

func (h *ScheduleHandler) HandleWebSocket(conn *websocket.Conn) {
	coachID, _ := conn.Locals("user_id").(string)
	client := schedulews.NewClient(h.hub, conn, coachID)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}

func (h *ScheduleHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}

func parseCoachID(c *fiber.Ctx) (int64, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0, errors.New("missing user id")
	}
	coachID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || coachID <= 0 {
		return 0, errors.New("invalid user id")
	}
	return coachID, nil
}

func mapScheduleError(c *fiber.Ctx, err error) error {
	var persistErr *services.PersistenceError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.As(err, &persistErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to persist the full batch",
			"updated": persistErr.Updated,
			"created": persistErr.Created,
		})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process schedule request"})
	}
}

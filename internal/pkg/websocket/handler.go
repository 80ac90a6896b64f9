package websocket

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/rs/zerolog"
)

// DayLookup resolves the event day a client subscribes to
type DayLookup interface {
	GetByID(ctx context.Context, id int64) (*models.EventDay, error)
}

// Handler upgrades HTTP requests to live feed connections
type Handler struct {
	hub      *Hub
	days     DayLookup
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, days DayLookup, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		days:     days,
		upgrader: newUpgrader(allowedOrigins),
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Live check-in feed
// @Description Upgrades to a WebSocket streaming attendance, check-in and headcount events of an event day
// @Tags checkin, websocket
// @Security BearerAuth
// @Param id path int true "Event day ID"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /checkin/days/{id}/live [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	dayID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || dayID <= 0 {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid event day ID").WithField("id")))
		return
	}

	userID := c.GetInt64("userID")

	if _, err := h.days.GetByID(c.Request.Context(), dayID); err != nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "event day not found")))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("eventDayID", dayID).
			Int64("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:        h.hub,
		conn:       conn,
		send:       make(chan []byte, 256),
		userID:     userID,
		eventDayID: dayID,
		logger:     h.logger,
	}
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("eventDayID", dayID).
		Int64("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}

package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/assessai/internal/app/models/dto"
)

// UserIDKey is the gin context key the auth middleware stores the user id under
const UserIDKey = "userID"

// Handler upgrades authenticated requests to marking event streams
type Handler struct {
	hub      *Hub
	upgrader *websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler that accepts browser connections
// only from allowedOrigins or the serving host
func NewHandler(hub *Hub, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		upgrader: newUpgrader(allowedOrigins),
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to marking progress events
// @Description Upgrades the connection to a WebSocket that receives marking.started, marking.completed and marking.failed events for the caller's assessments
// @Tags marking, websocket
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /ws/marking [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	userID := c.GetInt64(UserIDKey)
	if userID <= 0 {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: userID,
		logger: h.logger,
	}
	if !h.hub.add(client) {
		h.logger.Warn().Int64("userID", userID).Msg("Hub stopped, closing WebSocket")
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

package ws

import (
	"context"
	"net/http"
	"strings"

	"job-trail/internal/domain/user"
	"job-trail/internal/pkg/logger"

	charmLog "github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (user.Principal, error)
}

type Handler struct {
	hub    *Hub
	auth   Authenticator
	logger *charmLog.Logger
}

func NewHandler(hub *Hub, auth Authenticator, log *charmLog.Logger) *Handler {
	return &Handler{hub: hub, auth: auth, logger: logger.OrDiscard(log).WithPrefix("ws")}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handle authenticates the access token from ?token= (browsers cannot set
// headers on a websocket handshake) and upgrades the connection.
func (h *Handler) Handle(c fiber.Ctx) error {
	if h == nil || h.hub == nil || h.auth == nil {
		return fiber.ErrServiceUnavailable
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		token = bearerToken(c.Get(fiber.HeaderAuthorization))
	}
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	principal, err := h.auth.Authenticate(c.Context(), token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("upgrade failed", "err", err)
			return
		}

		client := NewClient(h.hub, conn, principal.UserID)
		if !h.hub.Register(client) {
			_ = conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/petfm/server/models"
)

// TokenValidator is the slice of the auth service the ws package
// needs. Defining it here instead of importing services avoids the
// services -> ws -> services cycle.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.AccessClaims, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks are delegated to the CORS layer in front.
		return true
	},
}

// Handler upgrades HTTP requests to WebSocket connections.
type Handler struct {
	hub            *Hub
	tokenValidator TokenValidator
}

func NewHandler(hub *Hub, tokenValidator TokenValidator) *Handler {
	return &Handler{
		hub:            hub,
		tokenValidator: tokenValidator,
	}
}

// HandleConnection authenticates and upgrades the request. Browsers
// cannot set headers on WebSocket connects, so the access token rides
// in the query string: ws://server/ws?token=JWT.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", claims.Username, err)
		return
	}

	client := &Client{
		hub:      h.hub,
		conn:     conn,
		username: claims.Username,
		send:     make(chan []byte, sendBufferSize),
	}

	h.hub.register <- client

	go client.WritePump()
	client.ReadPump() // blocks until the connection closes
}

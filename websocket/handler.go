package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades an admin dashboard connection and streams ledger
// events to it until the peer disconnects
func HandleWebSocket(c echo.Context, hub *Hub) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		Conn: conn,
		send: make(chan Event, 16),
	}

	hub.register <- client

	conn.WriteJSON(Event{Type: "connected"})

	// Writer: pushes broadcast events to the peer.
	go func() {
		for event := range client.send {
			if err := conn.WriteJSON(event); err != nil {
				hub.unregister <- client
				return
			}
		}
	}()

	// Reader: the dashboard sends nothing meaningful, but reading is what
	// detects the disconnect.
	go func() {
		defer func() {
			hub.unregister <- client
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}

package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches conn to the hub and blocks until the peer disconnects.
// onOpen runs once the socket can receive frames; onMessage receives every
// text frame the peer sends. Either may be nil.
func ServeWs(hub *Hub, conn *websocket.Conn, userID uuid.UUID, onOpen func(), onMessage func([]byte)) {
	client := &Client{
		Hub:       hub,
		Conn:      conn,
		UserID:    userID,
		Send:      make(chan []byte, sendBuffer),
		OnMessage: onMessage,
	}
	if !hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	if onOpen != nil {
		onOpen()
	}
	client.readPump()
}

package web

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Florex0Real/linux-system-manager/internal/scheduler"
)

const writeWait = 5 * time.Second

// A nil CheckOrigin rejects browsers whose Origin host differs from Host.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 8192,
}

// wsHandler pushes every published snapshot as a JSON text message.
func (s *Server) wsHandler(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response.
		return nil
	}
	defer conn.Close()

	// The client never sends anything we use; reading detects close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err = s.follow(c.Request().Context(), closed, func(snap *scheduler.Snapshot) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(snap)
	})
	if err != nil {
		c.Logger().Debugf("websocket write failed: %v", err)
	}
	return nil
}

package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cnamway/keybout/internal/router"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true }, // CORS is enforced at the gin layer.
}

// Handler upgrades the request to a websocket, registers it with r, and
// runs its read/write pumps until the socket closes - mirroring the
// teacher's CreateRoomHandler upgrade-then-pump shape.
func Handler(r *router.Router, log zerolog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		socket, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		conn := New(socket)
		handle := r.Accept(conn)

		go conn.WritePump()
		conn.ReadPump(
			func(frame string) { r.HandleFrame(handle, frame) },
			func() { r.Disconnect(handle) },
		)
	}
}

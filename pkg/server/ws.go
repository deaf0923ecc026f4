package server

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"lox/pkg/lox"
)

// maxSourceSize bounds a single source frame.
const maxSourceSize = 64 << 10

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin; /repl is guarded by a token instead.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Reply is sent back for every source frame.
type Reply struct {
	Output string `json:"output"`
	Errors string `json:"errors,omitempty"`
}

// replConnection owns one websocket and the session evaluating its frames.
type replConnection struct {
	conn    *websocket.Conn
	session *lox.Session
	out     bytes.Buffer
	errOut  bytes.Buffer
	logger  *slog.Logger
}

func upgradeToWebSocket(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*replConnection, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(maxSourceSize)

	rc := &replConnection{conn: conn, logger: logger}
	rc.session = lox.NewSession(&rc.out, &rc.errOut, logger)
	return rc, nil
}

// serve evaluates text frames until the client goes away.
func (rc *replConnection) serve() {
	defer rc.conn.Close()

	for {
		messageType, message, err := rc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				rc.logger.Warn("repl connection closed", slog.Any("error", err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		if err := rc.conn.WriteJSON(rc.eval(string(message))); err != nil {
			rc.logger.Warn("repl write failed", slog.Any("error", err))
			return
		}
	}
}

func (rc *replConnection) eval(source string) Reply {
	rc.out.Reset()
	rc.errOut.Reset()
	rc.session.Reporter.Reset()

	// Failures reach errOut through the reporter.
	_ = rc.session.Run(source)

	return Reply{Output: rc.out.String(), Errors: rc.errOut.String()}
}

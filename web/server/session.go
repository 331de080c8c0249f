package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	maxCommandSize = 4096
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// session drives one progressive render for one websocket client.
// All writes to conn happen on the goroutine running run.
type session struct {
	id        string
	conn      *websocket.Conn
	req       *RenderRequest
	codec     FrameCodec
	camera    *geometry.Camera
	raytracer *renderer.ProgressiveRaytracer
	console   chan ConsoleMessage
	logger    *WebLogger
	started   time.Time
}

// handleRender validates the request, upgrades to a websocket and runs the session
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	sceneObj, err := scene.Create(req.Scene, req.Width, req.Height)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	codec, err := NewFrameCodec(req.Codec)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade: %v", err)
		_ = codec.Close()
		return
	}

	sess := newSession(conn, req, sceneObj, codec)
	sess.run(r.Context())
}

func newSession(conn *websocket.Conn, req *RenderRequest, s *scene.Scene, codec FrameCodec) *session {
	id := fmt.Sprintf("render-%d", time.Now().UnixNano())
	console := make(chan ConsoleMessage, 50)
	logger := NewWebLogger(id, console)

	return &session{
		id:        id,
		conn:      conn,
		req:       req,
		codec:     codec,
		camera:    s.Camera,
		raytracer: renderer.NewProgressiveRaytracer(s, req.Width, req.Height, req.progressiveConfig(s), logger),
		console:   console,
		logger:    logger,
		started:   time.Now(),
	}
}

// run serves the session until the client disconnects or sends stop.
// Workers are stopped and joined before it returns.
func (sess *session) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	defer sess.conn.Close()
	defer sess.closeCodec()
	defer sess.raytracer.Stop()

	commands := make(chan Command)
	go sess.readCommands(ctx, commands)

	if err := sess.sendHello(); err != nil {
		log.Printf("%s: %v", sess.id, err)
		return
	}
	if !sess.req.Paused {
		if err := sess.raytracer.Start(ctx); err != nil {
			sess.sendError(err)
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event := <-sess.raytracer.Updates():
			if err := sess.sendPass(event); err != nil {
				log.Printf("%s: %v", sess.id, err)
				return
			}

		case msg := <-sess.console:
			if err := sess.sendConsole(msg); err != nil {
				log.Printf("%s: %v", sess.id, err)
				return
			}

		case cmd, ok := <-commands:
			if !ok {
				return
			}
			done, err := sess.handleCommand(ctx, cmd)
			if err != nil {
				log.Printf("%s: %v", sess.id, err)
				return
			}
			if done {
				sess.raytracer.Stop()
				_ = sess.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stopped"),
					time.Now().Add(writeWait))
				return
			}

		case <-ticker.C:
			if err := sess.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// readCommands decodes client commands until the connection fails
func (sess *session) readCommands(ctx context.Context, commands chan<- Command) {
	defer close(commands)

	sess.conn.SetReadLimit(maxCommandSize)
	_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("%s: read error: %v", sess.id, err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		cmd, err := decodeCommand(data)
		if err != nil {
			sess.logger.Errorf("Ignoring command: %v\n", err)
			continue
		}

		select {
		case commands <- cmd:
		case <-ctx.Done():
			return
		}
	}
}

// handleCommand applies a client command and reports whether the session should end
func (sess *session) handleCommand(ctx context.Context, cmd Command) (bool, error) {
	switch cmd.Name {
	case "step":
		if err := sess.raytracer.Step(); err != nil {
			return false, sess.sendError(err)
		}
		return false, nil

	case "pause":
		sess.raytracer.Stop()
		return false, sess.sendStatus()

	case "resume":
		if err := sess.raytracer.Start(ctx); err != nil && !errors.Is(err, renderer.ErrRunning) {
			return false, sess.sendError(err)
		}
		return false, sess.sendStatus()

	case "exposure":
		if !(cmd.Value > 0) {
			return false, sess.sendError(fmt.Errorf("exposure must be positive, got %g", cmd.Value))
		}
		sess.raytracer.ChangeExposure(cmd.Value)
		return false, sess.sendFrame()

	case "tone":
		mode, err := renderer.ParseToneMode(cmd.Mode)
		if err != nil {
			return false, sess.sendError(err)
		}
		sess.raytracer.SetToneMode(mode)
		return false, sess.sendFrame()

	case "stop":
		return true, nil

	default:
		return false, sess.sendError(fmt.Errorf("unknown command %q", cmd.Name))
	}
}

// closeCodec releases the frame encoder when the session ends
func (sess *session) closeCodec() {
	if err := sess.codec.Close(); err != nil {
		log.Printf("%s: closing %s codec: %v", sess.id, sess.codec.Name(), err)
	}
}

func (sess *session) writeText(data []byte) error {
	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sess.conn.WriteMessage(websocket.TextMessage, data)
}

func (sess *session) writeMessage(kind string, fields map[string]interface{}) error {
	data, err := encodeMessage(kind, fields, time.Now())
	if err != nil {
		return err
	}
	return sess.writeText(data)
}

func (sess *session) sendHello() error {
	width, height := sess.raytracer.Size()
	return sess.writeMessage(msgHello, map[string]interface{}{
		"id":        sess.id,
		"scene":     sess.req.Scene,
		"width":     width,
		"height":    height,
		"codec":     sess.codec.Name(),
		"focus":     sess.camera.Focus(),
		"aperture":  sess.camera.Aperture(),
		"maxPasses": sess.req.MaxPasses,
		"exposure":  sess.raytracer.Exposure(),
		"tone":      sess.raytracer.ToneMode().String(),
		"paused":    sess.req.Paused,
	})
}

// sendPass sends the current display frame followed by the pass statistics
func (sess *session) sendPass(event renderer.PassEvent) error {
	if err := sess.sendFrame(); err != nil {
		return err
	}

	fields := statsFields(sess.raytracer.Stats())
	fields["pass"] = event.Pass
	fields["worker"] = event.Worker
	fields["durationMs"] = event.Duration.Milliseconds()
	fields["elapsedMs"] = time.Since(sess.started).Milliseconds()
	if err := sess.writeMessage(msgPass, fields); err != nil {
		return err
	}

	if sess.req.MaxPasses > 0 && event.Pass >= sess.req.MaxPasses {
		return sess.writeMessage(msgComplete, map[string]interface{}{"pass": event.Pass})
	}
	return nil
}

// sendFrame encodes the display image as a binary message
func (sess *session) sendFrame() error {
	frame, err := sess.codec.Encode(sess.raytracer.DisplayImage())
	if err != nil {
		return err
	}
	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sess.conn.WriteMessage(websocket.BinaryMessage, frame)
}

func (sess *session) sendStatus() error {
	fields := statsFields(sess.raytracer.Stats())
	fields["running"] = sess.raytracer.Running()
	fields["exposure"] = sess.raytracer.Exposure()
	fields["tone"] = sess.raytracer.ToneMode().String()
	return sess.writeMessage(msgStatus, fields)
}

func (sess *session) sendConsole(msg ConsoleMessage) error {
	return sess.writeMessage(msgConsole, map[string]interface{}{
		"message": msg.Message,
		"level":   msg.Level,
	})
}

// sendError reports a recoverable error to the client
func (sess *session) sendError(err error) error {
	return sess.writeMessage(msgError, map[string]interface{}{"message": err.Error()})
}

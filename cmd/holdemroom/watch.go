package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/holdemroom/internal/game"
	"github.com/lox/holdemroom/internal/replica"
	"github.com/lox/holdemroom/internal/server"
)

// WatchCmd renders a table's public view as it changes.
type WatchCmd struct {
	URL     string `kong:"default='ws://localhost:8080/ws',help='Websocket URL of the table'"`
	Holder  bool   `kong:"help='Hold card tokens and release them when the table asks'"`
	Events  bool   `kong:"help='Print table events as they arrive'"`
	NoClear bool   `kong:"help='Do not clear the screen between updates'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
}

func (c *WatchCmd) Run() error {
	logger := setupLogger("info", c.Debug)
	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if c.Holder {
		q := u.Query()
		q.Set("holder", "true")
		u.RawQuery = q.Encode()
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", u, err)
	}
	go func() {
		<-ctx.Done()
		_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = ws.Close()
	}()

	w := &watcher{out: os.Stdout, ws: ws, logger: logger, holder: c.Holder, events: c.Events, clear: !c.NoClear}
	err = w.loop()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

type watcher struct {
	out    io.Writer
	ws     *websocket.Conn
	logger *log.Logger
	holder bool
	events bool
	clear  bool

	released uint64
}

func (w *watcher) loop() error {
	for {
		var msg server.Message
		if err := w.ws.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if err := w.handle(&msg); err != nil {
			return err
		}
	}
}

func (w *watcher) handle(msg *server.Message) error {
	switch msg.Type {
	case server.MessageTypeWelcome:
		var data server.WelcomeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		w.logger.Info("Connected", "connection", data.ConnectionID, "holder", data.Holder)

	case server.MessageTypeState:
		var v replica.View
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			return fmt.Errorf("decode state: %w", err)
		}
		if w.clear {
			fmt.Fprint(w.out, "\033[H\033[2J")
		}
		fmt.Fprint(w.out, renderView(v))
		return w.maybeRelease(v)

	case server.MessageTypeEvent:
		if !w.events {
			return nil
		}
		var data struct {
			Type  game.EventType  `json:"type"`
			Event json.RawMessage `json:"event"`
		}
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		fmt.Fprintln(w.out, infoStyle.Render(fmt.Sprintf("[%s] %s", data.Type, data.Event)))

	case server.MessageTypeError:
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		w.logger.Warn("Server error", "code", data.Code, "message", data.Message)

	default:
		w.logger.Debug("Ignoring message", "type", msg.Type)
	}
	return nil
}

// maybeRelease gives the tokens back once per wait for the next deal.
func (w *watcher) maybeRelease(v replica.View) error {
	if !w.holder || v.Phase != game.PhaseWaiting || v.Version <= w.released {
		return nil
	}
	w.released = v.Version
	if err := w.ws.WriteJSON(server.Message{Type: server.MessageTypeRelease}); err != nil {
		return errors.Join(errors.New("release tokens"), err)
	}
	w.logger.Debug("Released tokens", "version", v.Version)
	return nil
}

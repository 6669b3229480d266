package api

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/debate-hub/internal/models"
	"github.com/wuwenbin0122/debate-hub/internal/screens"
)

const (
	eventSnapshot    screens.EventKind = "snapshot"
	eventWriteWait                     = 10 * time.Second
	eventBufferDepth                   = 16
)

// messageView is a message as the page script draws it, with the same
// markdown and time formatting as the server-rendered page.
type messageView struct {
	models.Message
	HTML template.HTML `json:"html"`
	Time string        `json:"time"`
}

type eventView struct {
	Kind     screens.EventKind `json:"kind"`
	Message  *messageView      `json:"message,omitempty"`
	Messages []messageView     `json:"messages"`
}

func newMessageView(m models.Message) messageView {
	return messageView{Message: m, HTML: renderMarkdown(m.Content), Time: formatTime(m.Timestamp)}
}

func newEventView(event screens.Event) eventView {
	view := eventView{Kind: event.Kind, Messages: make([]messageView, 0, len(event.Messages))}
	if event.Message != nil {
		m := newMessageView(*event.Message)
		view.Message = &m
	}
	for _, m := range event.Messages {
		view.Messages = append(view.Messages, newMessageView(m))
	}
	return view
}

var errScreenNotOpen = errors.New("conversation screen is not open in this session")

var eventUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin header and requests whose
// Origin host matches the Host header.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return parsed.Host == r.Host
}

// handleEvents streams the session's open detail screen to the browser: a
// snapshot first, then every change as it happens.
func (h *Handler) handleEvents(c *gin.Context) {
	id := models.ConversationID(c.Param("id"))
	detail := currentSession(c).Detail()
	if detail == nil || detail.Conversation().ID != id {
		writeError(c, http.StatusNotFound, "conversation not open", errScreenNotOpen)
		return
	}

	conn, err := eventUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("event websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := detail.Subscribe(eventBufferDepth)
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Warn("event websocket closed unexpectedly", zap.Error(err))
				}
				return
			}
		}
	}()

	send := func(event screens.Event) error {
		if err := conn.SetWriteDeadline(time.Now().Add(eventWriteWait)); err != nil {
			return err
		}
		return conn.WriteJSON(newEventView(event))
	}

	if err := send(screens.Event{Kind: eventSnapshot, Messages: detail.Messages()}); err != nil {
		h.logger.Warn("send snapshot failed", zap.Error(err))
		return
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := send(event); err != nil {
				h.logger.Warn("send screen event failed", zap.Error(err))
				return
			}
		}
	}
}

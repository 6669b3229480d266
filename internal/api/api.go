package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/debate-hub/internal/compose"
	"github.com/wuwenbin0122/debate-hub/internal/models"
	"github.com/wuwenbin0122/debate-hub/internal/screens"
	"github.com/wuwenbin0122/debate-hub/internal/session"
	"github.com/wuwenbin0122/debate-hub/internal/utils"
)

// Backend is the subset of the debate backend client the web front uses.
type Backend interface {
	screens.ConversationSource
	screens.MessageBackend
	CreateConversation(ctx context.Context, topic string, side models.Side) (*models.Conversation, error)
}

type Handler struct {
	backend  Backend
	sessions *session.Manager
	cookie   utils.SessionConfig
	logger   *zap.Logger
}

func NewHandler(backend Backend, sessions *session.Manager, cookie utils.SessionConfig, logger *zap.Logger) *Handler {
	if cookie.CookieName == "" {
		cookie.CookieName = "debate_session"
	}
	return &Handler{
		backend:  backend,
		sessions: sessions,
		cookie:   cookie,
		logger:   utils.OrNop(logger),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) error {
	tmpl, err := parseTemplates()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)

	pages := router.Group("/", h.sessionMiddleware)
	pages.GET("/", h.handleList)
	pages.POST("/debates", h.handleCreateDebate)
	pages.GET("/conversations/:id", h.handleDetail)
	pages.POST("/conversations/:id/messages", h.handleSubmitMessage)
	pages.GET("/ws/conversations/:id", h.handleEvents)

	apiGroup := router.Group("/api", h.sessionMiddleware)
	apiGroup.GET("/conversations", h.handleListJSON)
	apiGroup.GET("/conversations/:id", h.handleDetailJSON)

	return nil
}

type formView struct {
	Content     string
	Side        models.Side
	Length      int
	MaxLength   int
	Placeholder string
	CanSubmit   bool
}

func newFormView(variant compose.Variant, content string, side models.Side) formView {
	return formView{
		Content:     content,
		Side:        side,
		Length:      utf8.RuneCountInString(content),
		MaxLength:   variant.MaxLength,
		Placeholder: variant.Placeholder(side),
		CanSubmit:   variant.Validate(content, side) == nil,
	}
}

type listView struct {
	Conversations []models.Conversation
	Debate        formView
}

type detailView struct {
	Conversation models.Conversation
	Messages     []models.Message
	Compose      formView
}

// mountList shows a freshly loaded list screen for the session.
func (h *Handler) mountList(c *gin.Context) *screens.ConversationList {
	list := screens.NewConversationList(h.backend, h.logger)
	list.Load(c.Request.Context())
	currentSession(c).ShowList(list)
	return list
}

// mountDetail shows a freshly loaded detail screen for the session. The
// conversation comes from the list screen when the user navigated from it.
func (h *Handler) mountDetail(c *gin.Context, id models.ConversationID) *screens.ConversationDetail {
	sess := currentSession(c)

	conversation := models.Conversation{ID: id}
	if list := sess.List(); list != nil {
		if selected, ok := list.Select(id); ok {
			conversation = selected
		}
	}

	detail := screens.NewConversationDetail(conversation, h.backend, h.logger)
	detail.Load(c.Request.Context())
	sess.ShowDetail(detail)
	return detail
}

// openDetail returns the session's detail screen for id, mounting one if a
// different screen is showing.
func (h *Handler) openDetail(c *gin.Context, id models.ConversationID) *screens.ConversationDetail {
	if detail := currentSession(c).Detail(); detail != nil && detail.Conversation().ID == id {
		return detail
	}
	return h.mountDetail(c, id)
}

func (h *Handler) handleList(c *gin.Context) {
	list := h.mountList(c)
	c.HTML(http.StatusOK, "list.tmpl", listView{
		Conversations: list.Conversations(),
		Debate:        newFormView(compose.NewDebate, "", models.SideUnknown),
	})
}

func (h *Handler) handleCreateDebate(c *gin.Context) {
	form := compose.NewForm(compose.NewDebate)
	form.SetContent(c.PostForm("topic"))
	form.SetSide(models.ParseSide(c.PostForm("side")))

	var created *models.Conversation
	err := form.Submit(c.Request.Context(), func(ctx context.Context, topic string, side models.Side) error {
		conversation, err := h.backend.CreateConversation(ctx, topic, side)
		if err != nil {
			return err
		}
		created = conversation
		return nil
	})

	if err == nil && created != nil && !created.ID.IsZero() {
		c.Redirect(http.StatusSeeOther, "/conversations/"+created.ID.String())
		return
	}

	status := http.StatusOK
	switch {
	case err == nil:
		h.logger.Error("failed to create debate", zap.Error(errors.New("backend returned no conversation id")))
	case isValidationError(err):
		status = http.StatusUnprocessableEntity
	default:
		h.logger.Error("failed to create debate", zap.Error(err))
	}

	list := currentSession(c).List()
	if list == nil {
		list = h.mountList(c)
	}

	c.HTML(status, "list.tmpl", listView{
		Conversations: list.Conversations(),
		Debate:        newFormView(compose.NewDebate, form.Content(), form.Side()),
	})
}

func (h *Handler) handleDetail(c *gin.Context) {
	detail := h.mountDetail(c, models.ConversationID(c.Param("id")))
	c.HTML(http.StatusOK, "detail.tmpl", detailView{
		Conversation: detail.Conversation(),
		Messages:     detail.Messages(),
		Compose:      newFormView(compose.MessageReply, "", models.SideUnknown),
	})
}

func (h *Handler) handleSubmitMessage(c *gin.Context) {
	asJSON := wantsJSON(c)

	var content string
	if asJSON {
		var payload models.MessagePayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			writeError(c, http.StatusBadRequest, "invalid payload", err)
			return
		}
		content = payload.Message
	} else {
		content = c.PostForm("message")
	}

	detail := h.openDetail(c, models.ConversationID(c.Param("id")))

	form := compose.NewForm(compose.MessageReply)
	form.SetContent(content)

	delivered := true
	err := form.Submit(c.Request.Context(), func(ctx context.Context, text string, _ models.Side) error {
		// the screen rolls back and logs a failed post itself
		if err := detail.SubmitMessage(ctx, text); err != nil {
			delivered = false
		}
		return nil
	})

	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
		delivered = false
	}

	if asJSON {
		if err != nil {
			writeError(c, status, "message rejected", err)
			return
		}
		c.JSON(status, gin.H{
			"delivered": delivered,
			"messages":  detail.Messages(),
		})
		return
	}

	c.HTML(status, "detail.tmpl", detailView{
		Conversation: detail.Conversation(),
		Messages:     detail.Messages(),
		Compose:      newFormView(compose.MessageReply, form.Content(), models.SideUnknown),
	})
}

func (h *Handler) handleListJSON(c *gin.Context) {
	list := h.mountList(c)
	c.JSON(http.StatusOK, gin.H{
		"loading":       list.Loading(),
		"conversations": list.Conversations(),
	})
}

func (h *Handler) handleDetailJSON(c *gin.Context) {
	detail := h.mountDetail(c, models.ConversationID(c.Param("id")))

	var meta any
	if m, ok := detail.Meta(); ok {
		meta = m
	}

	c.JSON(http.StatusOK, gin.H{
		"loading":      detail.Loading(),
		"conversation": detail.Conversation(),
		"meta":         meta,
		"messages":     detail.Messages(),
	})
}

func isValidationError(err error) bool {
	return errors.Is(err, compose.ErrEmpty) ||
		errors.Is(err, compose.ErrTooLong) ||
		errors.Is(err, compose.ErrSideRequired) ||
		errors.Is(err, compose.ErrBusy)
}

func wantsJSON(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEJSON || strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}

func writeError(c *gin.Context, status int, message string, err error) {
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

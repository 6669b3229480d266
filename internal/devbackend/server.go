package devbackend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/debate-hub/internal/compose"
	"github.com/wuwenbin0122/debate-hub/internal/debate"
	"github.com/wuwenbin0122/debate-hub/internal/models"
	"github.com/wuwenbin0122/debate-hub/internal/utils"
)

// RebuttalFunc produces the bot's answer to a user message.
type RebuttalFunc func(topic string, botSide models.Side, userText string) string

// CannedRebuttal answers every message with a fixed line naming the bot's
// stance.
func CannedRebuttal(topic string, botSide models.Side, userText string) string {
	stance := "in favour of"
	if botSide == models.SideCon {
		stance = "against"
	}

	quoted := userText
	if utf8.RuneCountInString(quoted) > 60 {
		quoted = string([]rune(quoted)[:60]) + "…"
	}
	return fmt.Sprintf("You said %q, but I remain %s %q.", quoted, stance, topic)
}

// Server serves the debate backend contract over a Store.
type Server struct {
	store    Store
	rebuttal RebuttalFunc
	logger   *zap.Logger
}

func NewServer(store Store, rebuttal RebuttalFunc, logger *zap.Logger) *Server {
	return &Server{store: store, rebuttal: rebuttal, logger: utils.OrNop(logger)}
}

func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/conversations", s.handleList)
	router.POST("/conversations", s.handleCreate)
	router.GET("/conversations/:id", s.handleGet)
	router.POST("/conversations/:id/messages", s.handlePostMessage)
}

func (s *Server) handleList(c *gin.Context) {
	conversations, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, "list conversations", err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

func (s *Server) handleGet(c *gin.Context) {
	detail, err := s.store.Get(c.Request.Context(), models.ConversationID(c.Param("id")))
	if err != nil {
		s.fail(c, "get conversation", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) handlePostMessage(c *gin.Context) {
	var payload models.MessagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeDetail(c, http.StatusBadRequest, "invalid payload")
		return
	}

	text := strings.TrimSpace(payload.Message)
	if err := compose.MessageReply.Validate(text, models.SideUnknown); err != nil {
		writeDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := c.Request.Context()
	id := models.ConversationID(c.Param("id"))

	detail, err := s.store.Get(ctx, id)
	if err != nil {
		s.fail(c, "get conversation", err)
		return
	}

	if err := s.store.AppendMessage(ctx, id, models.RoleUser, text); err != nil {
		s.fail(c, "append user message", err)
		return
	}

	response := gin.H{"conversation_id": id, "status": "received"}
	if s.rebuttal != nil {
		reply := s.rebuttal(detail.Topic, debate.ComputeSide(models.RoleBot, detail.Side), text)
		if err := s.store.AppendMessage(ctx, id, models.RoleBot, reply); err != nil {
			s.fail(c, "append bot message", err)
			return
		}
		response["reply"] = reply
	}

	c.JSON(http.StatusCreated, response)
}

func (s *Server) handleCreate(c *gin.Context) {
	var payload models.NewConversationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeDetail(c, http.StatusBadRequest, "invalid payload")
		return
	}

	topic := strings.TrimSpace(payload.Topic)
	if err := compose.NewDebate.Validate(topic, payload.Side); err != nil {
		writeDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// The payload carries the creator's stance; the conversation records the
	// side the bot argues.
	conversation, err := s.store.Create(c.Request.Context(), topic, debate.Opposite(payload.Side))
	if err != nil {
		s.fail(c, "create conversation", err)
		return
	}
	c.JSON(http.StatusCreated, conversation)
}

func (s *Server) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, ErrNotFound) {
		writeDetail(c, http.StatusNotFound, "Conversation not found")
		return
	}
	s.logger.Error("store operation failed", zap.String("op", op), zap.Error(err))
	writeDetail(c, http.StatusInternalServerError, "internal error")
}

func writeDetail(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}

package handler

import (
	"net/http"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/gdugdh24/sparkchat-backend/internal/usecase/message"
	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	messageUseCase *message.MessageUseCase
}

func NewConversationHandler(messageUseCase *message.MessageUseCase) *ConversationHandler {
	return &ConversationHandler{
		messageUseCase: messageUseCase,
	}
}

// ListConversations handles GET /conversations
// @Summary List my conversations
// @Description Most recently active first, with last message and reveal level
// @Tags conversations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string][]domain.ConversationSummary
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /conversations [get]
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversations, err := h.messageUseCase.ListConversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to list conversations")
		return
	}
	if conversations == nil {
		conversations = []*domain.ConversationSummary{}
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
	})
}

// ListMessages handles GET /conversations/:id/messages
// @Summary Page through message history
// @Tags conversations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Conversation ID"
// @Param limit query int false "Page size (default 50, max 100)"
// @Param cursor query string false "nextCursor of the previous page"
// @Success 200 {object} domain.MessagePage
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /conversations/{id}/messages [get]
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var query message.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.messageUseCase.Page(c.Request.Context(), userID, c.Param("id"), query.Limit, query.Cursor)
	if err != nil {
		respondError(c, err, "failed to list messages")
		return
	}

	c.JSON(http.StatusOK, page)
}

// SendMessage handles POST /conversations/:id/messages
// @Summary Send a message
// @Tags conversations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param request body message.SendMessageRequest true "Message"
// @Success 201 {object} domain.Message
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /conversations/{id}/messages [post]
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req message.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := h.messageUseCase.Send(c.Request.Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err, "failed to send message")
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// MarkRead handles POST /conversations/:id/read
// @Summary Mark messages as read
// @Description The caller's own messages and unknown ids are skipped
// @Tags conversations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param request body message.MarkReadRequest true "Message IDs"
// @Success 200 {object} map[string]int64
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /conversations/{id}/read [post]
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req message.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.messageUseCase.MarkRead(c.Request.Context(), userID, c.Param("id"), req.MessageIDs)
	if err != nil {
		respondError(c, err, "failed to mark messages read")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated": updated,
	})
}

package message

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/dating/internal/domain"
	"github.com/simp-lee/dating/internal/pkg"
)

// MessageHandler handles REST API requests for a member's messages.
type MessageHandler struct {
	svc   domain.MessageService
	pages pkg.PageDefaults
}

// NewMessageHandler creates a new MessageHandler with the given service and
// listing defaults.
func NewMessageHandler(svc domain.MessageService, pages pkg.PageDefaults) *MessageHandler {
	return &MessageHandler{svc: svc, pages: pages}
}

// List handles GET /api/v1/users/:id/messages.
func (h *MessageHandler) List(c *gin.Context) {
	userID, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var q ListMessagesQuery
	if !pkg.BindQuery(c, &q) {
		return
	}
	pageNumber, pageSize, err := pkg.ParsePage(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	params := domain.NewMessageParams(userID)
	params.MessageContainer = domain.ParseMessageContainer(q.MessageContainer)
	params.PageNumber = pageNumber
	params.PageSize = pageSize

	page, err := h.svc.ListMessages(c.Request.Context(), params)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Paged(c, page.Meta(), pkg.MapPage(page, toMessageResponse))
}

// Thread handles GET /api/v1/users/:id/messages/thread/:recipientId.
func (h *MessageHandler) Thread(c *gin.Context) {
	userID, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	recipientID, err := pkg.ParamID(c, "recipientId")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	msgs, err := h.svc.GetThread(c.Request.Context(), userID, recipientID)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, toMessageResponses(msgs))
}

// Get handles GET /api/v1/users/:id/messages/:messageId.
func (h *MessageHandler) Get(c *gin.Context) {
	userID, messageID, ok := messagePath(c)
	if !ok {
		return
	}

	msg, err := h.svc.GetMessage(c.Request.Context(), userID, messageID)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, toMessageResponse(*msg))
}

// Send handles POST /api/v1/users/:id/messages.
func (h *MessageHandler) Send(c *gin.Context) {
	userID, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req SendMessageRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	msg, err := h.svc.SendMessage(c.Request.Context(), userID, req.RecipientID, req.Content)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, toMessageResponse(*msg))
}

// MarkRead handles POST /api/v1/users/:id/messages/:messageId/read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, messageID, ok := messagePath(c)
	if !ok {
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), userID, messageID); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// Delete handles DELETE /api/v1/users/:id/messages/:messageId.
func (h *MessageHandler) Delete(c *gin.Context) {
	userID, messageID, ok := messagePath(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// messagePath parses :id and :messageId, writing the error response on failure.
func messagePath(c *gin.Context) (userID, messageID uint, ok bool) {
	userID, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return 0, 0, false
	}
	messageID, err = pkg.ParamID(c, "messageId")
	if err != nil {
		pkg.Error(c, err)
		return 0, 0, false
	}
	return userID, messageID, true
}

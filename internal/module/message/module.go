package message

import "github.com/gin-gonic/gin"

// MessageModule implements the app.Module interface for member messages.
type MessageModule struct {
	handler *MessageHandler
}

// NewModule creates a new MessageModule with the given handler.
// Panics if h is nil.
func NewModule(h *MessageHandler) *MessageModule {
	if h == nil {
		panic("message.NewModule: handler must not be nil")
	}
	return &MessageModule{handler: h}
}

// RegisterRoutes registers message API routes under /users/:id/messages.
func (m *MessageModule) RegisterRoutes(api *gin.RouterGroup) {
	msgs := api.Group("/users/:id/messages")
	msgs.GET("", m.handler.List)
	msgs.POST("", m.handler.Send)
	msgs.GET("/thread/:recipientId", m.handler.Thread)
	msgs.GET("/:messageId", m.handler.Get)
	msgs.POST("/:messageId/read", m.handler.MarkRead)
	msgs.DELETE("/:messageId", m.handler.Delete)
}

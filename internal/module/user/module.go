package user

import "github.com/gin-gonic/gin"

// UserModule implements the app.Module interface for the member domain.
type UserModule struct {
	handler *UserHandler
}

// NewModule creates a new UserModule with the given handler.
// Panics if h is nil.
func NewModule(h *UserHandler) *UserModule {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &UserModule{handler: h}
}

// RegisterRoutes registers member API routes.
func (m *UserModule) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/users", m.handler.Register)
	api.GET("/users", m.handler.List)
	api.GET("/users/:id", m.handler.Get)
	api.PUT("/users/:id", m.handler.Update)
	api.POST("/users/:id/like/:recipientId", m.handler.Like)
	api.POST("/users/:id/photos", m.handler.AddPhoto)
	api.GET("/users/:id/photos/:photoId", m.handler.GetPhoto)
	api.POST("/users/:id/photos/:photoId/setMain", m.handler.SetMainPhoto)
}

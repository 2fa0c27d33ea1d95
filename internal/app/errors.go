package app

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/dating/internal/pkg"
)

// renderError aborts the request with the standard JSON error envelope.
func renderError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, pkg.Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

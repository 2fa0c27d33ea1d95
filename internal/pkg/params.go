package pkg

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/dating/internal/domain"
)

// ParamID parses the positive integer path parameter name.
func ParamID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 || id > uint64(^uint(0)) {
		return 0, domain.NewAppError(domain.CodeValidation, fmt.Sprintf("invalid %s: %s", name, raw), nil)
	}
	return uint(id), nil
}

// MapPage converts the items of p with fn and keeps the counters.
func MapPage[T, R any](p *domain.Page[T], fn func(T) R) *domain.Page[R] {
	items := make([]R, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return &domain.Page[R]{
		Items:        items,
		CurrentPage:  p.CurrentPage,
		ItemsPerPage: p.ItemsPerPage,
		TotalItems:   p.TotalItems,
		TotalPages:   p.TotalPages,
	}
}

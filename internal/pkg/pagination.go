package pkg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/dating/internal/domain"
	"github.com/simp-lee/dating/internal/query"
)

// Query parameter names shared by the paginated endpoints.
const (
	PageNumberParam = "pageNumber"
	PageSizeParam   = "pageSize"
)

// PageDefaults holds the page size used when the client sends none and the
// upper bound applied to client-supplied sizes.
type PageDefaults struct {
	PageSize    int
	MaxPageSize int
}

// DefaultPageDefaults returns the listing defaults of the dating API.
func DefaultPageDefaults() PageDefaults {
	return PageDefaults{
		PageSize:    domain.DefaultPageSize,
		MaxPageSize: domain.MaxPageSize,
	}
}

// ParsePage reads pageNumber and pageSize from the query string.
//
// Missing values take their defaults. Values that are not integers or are
// below 1 produce a CodeInvalidArgument error instead of being clamped.
// A pageSize above the maximum is reduced to the maximum.
func ParsePage(c *gin.Context, d PageDefaults) (pageNumber, pageSize int, err error) {
	pageNumber, err = intQuery(c, PageNumberParam, domain.DefaultPageNumber)
	if err != nil {
		return 0, 0, err
	}
	pageSize, err = intQuery(c, PageSizeParam, d.PageSize)
	if err != nil {
		return 0, 0, err
	}
	if err := query.ValidatePage(pageNumber, pageSize); err != nil {
		return 0, 0, err
	}
	if d.MaxPageSize > 0 && pageSize > d.MaxPageSize {
		pageSize = d.MaxPageSize
	}
	return pageNumber, pageSize, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.InvalidArgument(fmt.Sprintf("%s must be an integer", key))
	}
	return v, nil
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET for a 1-based page.
func Paginate(pageNumber, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(query.Offset(pageNumber, pageSize)).Limit(pageSize)
	}
}

// OrderDesc returns a GORM scope ordering by column descending, then by id
// descending so equal keys keep a stable order.
func OrderDesc(column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column + " DESC").Order("id DESC")
	}
}

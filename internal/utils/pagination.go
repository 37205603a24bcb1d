package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page    int
	Limit   int
	Offset  int
	Enabled bool
}

// GetPaginationParams extracts and validates pagination parameters from the request.
// Pagination is only enabled when the client sends page or limit.
func GetPaginationParams(c *gin.Context) PaginationParams {
	pageStr, hasPage := c.GetQuery("page")
	limitStr, hasLimit := c.GetQuery("limit")

	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	offset := (page - 1) * limit

	return PaginationParams{
		Page:    page,
		Limit:   limit,
		Offset:  offset,
		Enabled: hasPage || hasLimit,
	}
}

package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"messaging-service/internal/middleware"
)

const (
	requestIDContextKey = "request_id"

	defaultPageSize = 20
	maxPageSize     = 50
)

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func principalFromContext(c *gin.Context) string {
	return c.GetString(middleware.PrincipalKey)
}

func principalNameFromContext(c *gin.Context) string {
	if name := c.GetString(middleware.PrincipalNameKey); name != "" {
		return name
	}
	return c.GetString(middleware.PrincipalKey)
}

func auditUserID(c *gin.Context) *string {
	if id := principalFromContext(c); id != "" {
		return &id
	}
	return nil
}

// parsePagination floors page at 1 and clamps limit to [1, maxPageSize].
func parsePagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func totalPages(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func validID(c *gin.Context, param string) (string, bool) {
	id := c.Param(param)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

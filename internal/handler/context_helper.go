package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/eduflow-api/pkg/errors"
	"github.com/noah-isme/eduflow-api/pkg/response"
)

// bindJSON decodes the request body into dest and renders a validation error
// when the payload is malformed.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func queryTrim(c *gin.Context, key string) string {
	return strings.TrimSpace(c.Query(key))
}

package controllers

import (
	"errors"
	"net/http"

	"github.com/ichchha07-wish/meal-system/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail maps service errors to statuses and the common failure
// envelope. Unknown errors are logged and surfaced as a generic 500 so
// internals never leak to the caller.
func fail(c *gin.Context, log *zap.SugaredLogger, err error) {
	var (
		vErr *services.ValidationError
		nErr *services.NotFoundError
		pErr *services.PermissionError
		cErr *services.ConflictError
	)
	switch {
	case errors.As(err, &vErr):
		body := gin.H{"success": false, "error": vErr.Message}
		if vErr.Field != "" {
			body["field"] = vErr.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &nErr):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": nErr.Error()})
	case errors.As(err, &pErr):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": pErr.Message})
	case errors.As(err, &cErr):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": cErr.Message})
	default:
		log.Errorw("unexpected error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "An unexpected error occurred. Please try again."})
	}
}

func ok(c *gin.Context, status int, body gin.H) {
	body["success"] = true
	c.JSON(status, body)
}

func principal(c *gin.Context) (uint, string) {
	return c.GetUint("userID"), c.GetString("role")
}

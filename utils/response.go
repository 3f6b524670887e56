package utils

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var hideInternalErrors atomic.Bool

// HideInternalErrors stops 5xx responses from echoing the underlying error text
func HideInternalErrors(hide bool) {
	hideInternalErrors.Store(hide)
}

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response
func JSONError(c *gin.Context, status int, err error, message string) {
	JSONErrorWithFields(c, status, err, message, nil)
}

// JSONErrorWithFields sends a structured error response with extra top-level fields
// such as a machine-readable reason or the current highest bid.
func JSONErrorWithFields(c *gin.Context, status int, err error, message string, extra gin.H) {
	detail := message
	if err != nil && (status < http.StatusInternalServerError || !hideInternalErrors.Load()) {
		detail = err.Error()
	}

	body := gin.H{
		"status":  status,
		"message": message,
		"error":   detail,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

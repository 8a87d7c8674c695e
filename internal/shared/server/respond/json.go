package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, message string, data any) {
	JSON(c, http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

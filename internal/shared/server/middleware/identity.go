package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "userId"
	resumeIDKey = "resumeId"
	stepKey     = "step"
)

// Identity records the caller's user id and the target resume id, when the
// route carries them, so logs and rate limits can refer to them.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.Param("user_id"))
		if userID == "" {
			userID = strings.TrimSpace(c.Query("user_id"))
		}
		if userID == "" {
			userID = strings.TrimSpace(c.GetHeader("X-User-Id"))
		}
		if userID != "" {
			c.Set(userIDKey, userID)
		}
		if resumeID := strings.TrimSpace(c.Param("resume_id")); resumeID != "" {
			c.Set(resumeIDKey, resumeID)
		}
		c.Next()
	}
}

// SetUserID overrides the user id recorded for the request.
func SetUserID(c *gin.Context, userID string) {
	if userID = strings.TrimSpace(userID); userID != "" {
		c.Set(userIDKey, userID)
	}
}

// SetResumeID overrides the resume id recorded for the request.
func SetResumeID(c *gin.Context, resumeID string) {
	if resumeID = strings.TrimSpace(resumeID); resumeID != "" {
		c.Set(resumeIDKey, resumeID)
	}
}

// SetStep records the pipeline step a request failed in.
func SetStep(c *gin.Context, step string) {
	if step != "" {
		c.Set(stepKey, step)
	}
}

// UserIDFromContext fetches the user ID recorded for the request.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// ResumeIDFromContext fetches the resume ID recorded for the request.
func ResumeIDFromContext(c *gin.Context) string {
	return stringFromContext(c, resumeIDKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

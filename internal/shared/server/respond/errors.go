package respond

import (
	"github.com/gin-gonic/gin"

	"resume-parser/internal/shared/telemetry"
)

// Stable error codes returned in the "error" field.
const (
	CodeValidation        = "validation_error"
	CodeUnauthorized      = "unauthorized"
	CodeNotFound          = "not_found"
	CodeDownloadFailed    = "download_failed"
	CodeExtractionFailed  = "extraction_failed"
	CodeLLMUnavailable    = "llm_unavailable"
	CodeStructuringFailed = "structuring_failed"
	CodeStorage           = "storage_error"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal"
)

var messages = map[string]string{
	CodeValidation:        "Invalid request.",
	CodeUnauthorized:      "You are not allowed to access this resume.",
	CodeNotFound:          "The requested resource was not found.",
	CodeDownloadFailed:    "The resume file could not be downloaded.",
	CodeExtractionFailed:  "No text could be extracted from the resume.",
	CodeLLMUnavailable:    "The resume parsing service is temporarily unavailable.",
	CodeStructuringFailed: "The resume could not be parsed into structured data.",
	CodeStorage:           "The resume data could not be stored or read.",
	CodeRateLimited:       "Too many analysis requests. Please try again later.",
	CodeInternal:          "Unexpected server error.",
}

// Message returns the fixed client-facing sentence for code.
func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[CodeInternal]
}

// Error logs cause and sends a failure envelope. The response carries the
// fixed message for code, never the cause.
func Error(c *gin.Context, status int, code string, cause error) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if resumeID := c.GetString("resumeId"); resumeID != "" {
		fields["resume_id"] = resumeID
	}
	if step := c.GetString("step"); step != "" {
		fields["step"] = step
	}
	if cause != nil {
		fields["error"] = cause.Error()
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Message: Message(code),
		Error:   code,
	})
}

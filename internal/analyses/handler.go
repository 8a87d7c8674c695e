package analyses

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-parser/internal/extract"
	"resume-parser/internal/llm"
	"resume-parser/internal/resumes"
	"resume-parser/internal/shared/server/middleware"
	"resume-parser/internal/shared/server/respond"
)

// Handler serves the analyze endpoint.
type Handler struct {
	Processor *Processor
	Limiter   *middleware.RateLimiter
}

// NewHandler constructs a Handler. A nil limiter disables rate limiting.
func NewHandler(p *Processor, limiter *middleware.RateLimiter) *Handler {
	return &Handler{Processor: p, Limiter: limiter}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resume/analyze", h.analyze)
}

type analyzeRequest struct {
	ResumeID string `json:"resume_id"`
	FileURL  string `json:"file_url"`
	UserID   string `json:"user_id"`
}

func (r *analyzeRequest) validate() error {
	r.ResumeID = strings.TrimSpace(r.ResumeID)
	r.FileURL = strings.TrimSpace(r.FileURL)
	r.UserID = strings.TrimSpace(r.UserID)
	if err := resumes.ValidateResumeID(r.ResumeID); err != nil {
		return err
	}
	if r.FileURL == "" {
		return errors.New("file_url is required")
	}
	if r.UserID == "" {
		return errors.New("user_id is required")
	}
	return nil
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err)
		return
	}
	if err := req.validate(); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err)
		return
	}
	middleware.SetUserID(c, req.UserID)
	middleware.SetResumeID(c, req.ResumeID)

	if allowed, retryAfter := h.Limiter.Allow(req.UserID); !allowed {
		middleware.RejectRateLimited(c, retryAfter)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	details, err := h.Processor.Analyze(ctx, req.ResumeID, req.FileURL, req.UserID)
	if err != nil {
		middleware.SetStep(c, stepOf(err))
		status, code := statusFor(err)
		respond.Error(c, status, code, err)
		return
	}
	respond.OK(c, "Resume analyzed successfully", details)
}

func statusFor(err error) (int, string) {
	var extractErr *extract.ExtractionError
	var structErr *llm.StructuringError
	switch {
	case errors.As(err, &extractErr):
		return http.StatusUnprocessableEntity, respond.CodeExtractionFailed
	case errors.As(err, &structErr):
		if structErr.Kind == llm.KindTransport {
			return http.StatusBadGateway, respond.CodeLLMUnavailable
		}
		return http.StatusUnprocessableEntity, respond.CodeStructuringFailed
	}
	if status, code, ok := resumes.StatusFor(err); ok {
		return status, code
	}
	return http.StatusInternalServerError, respond.CodeInternal
}

// stepOf names the pipeline step that produced err.
func stepOf(err error) string {
	var downloadErr *resumes.DownloadError
	var extractErr *extract.ExtractionError
	var structErr *llm.StructuringError
	var storageErr *resumes.StorageError
	switch {
	case errors.Is(err, resumes.ErrUnauthorized), errors.Is(err, resumes.ErrNotFound):
		return StepAuthorize
	case errors.As(err, &downloadErr):
		return StepDownload
	case errors.As(err, &extractErr):
		return StepExtract
	case errors.As(err, &structErr):
		return StepStructure
	case errors.As(err, &storageErr):
		if storageErr.Op == "save_details" {
			return StepSave
		}
		return StepAuthorize
	}
	return ""
}

package resumes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-parser/internal/shared/server/middleware"
	"resume-parser/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the storage client.
type Handler struct {
	Svc *Storage
}

// NewHandler constructs a Handler.
func NewHandler(svc *Storage) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resume/:resume_id/details", h.details)
	rg.GET("/resume/:resume_id", h.get)
	rg.DELETE("/resume/:resume_id", h.delete)
	rg.GET("/user/:user_id/resumes", h.list)
}

func (h *Handler) details(c *gin.Context) {
	resumeID, userID, ok := resumeParams(c)
	if !ok {
		return
	}
	d, err := h.Svc.GetDetails(c.Request.Context(), resumeID, userID)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, "Resume details retrieved successfully", d)
}

func (h *Handler) get(c *gin.Context) {
	resumeID, userID, ok := resumeParams(c)
	if !ok {
		return
	}
	out, err := h.Svc.GetResumeWithDetails(c.Request.Context(), resumeID, userID)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, "Resume retrieved successfully", out)
}

func (h *Handler) delete(c *gin.Context) {
	resumeID, userID, ok := resumeParams(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteResume(c.Request.Context(), resumeID, userID); err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, "Resume deleted successfully", nil)
}

func (h *Handler) list(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, errors.New("user_id is required"))
		return
	}
	list, err := h.Svc.ListResumes(c.Request.Context(), userID)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, "Resumes retrieved successfully", list)
}

func resumeParams(c *gin.Context) (string, string, bool) {
	resumeID := strings.TrimSpace(c.Param("resume_id"))
	userID := strings.TrimSpace(c.Query("user_id"))
	if err := ValidateResumeID(resumeID); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err)
		return "", "", false
	}
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, errors.New("user_id is required"))
		return "", "", false
	}
	middleware.SetResumeID(c, resumeID)
	middleware.SetUserID(c, userID)
	return resumeID, userID, true
}

// ValidateResumeID checks that id is a UUID.
func ValidateResumeID(id string) error {
	if id == "" {
		return errors.New("resume_id is required")
	}
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return errors.New("resume_id must be a UUID")
	}
	return nil
}

// StatusFor maps storage errors to an HTTP status and error code.
func StatusFor(err error) (int, string, bool) {
	var downloadErr *DownloadError
	var storageErr *StorageError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, respond.CodeUnauthorized, true
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, respond.CodeNotFound, true
	case errors.As(err, &downloadErr):
		return http.StatusBadGateway, respond.CodeDownloadFailed, true
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError, respond.CodeStorage, true
	}
	return 0, "", false
}

// WriteError sends the failure envelope for err.
func WriteError(c *gin.Context, err error) {
	status, code, ok := StatusFor(err)
	if !ok {
		status, code = http.StatusInternalServerError, respond.CodeInternal
	}
	respond.Error(c, status, code, err)
}

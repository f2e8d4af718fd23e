package claims

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrolens/claimverify/pkg/common"
)

// Handler exposes the pipeline over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a claims HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the claim verification endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/claims/verify", h.Verify)
}

// Verify handles POST /api/v1/claims/verify.
func (h *Handler) Verify(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, common.NewInputValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.service.Verify(c.Request.Context(), req)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.ErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, common.NewInternalError("claim verification failed", err.Error()))
		return
	}

	c.JSON(http.StatusOK, result)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type overviewService interface {
	Overview(ctx context.Context) (*models.Overview, error)
}

// OverviewHandler serves the administrator dashboard counts.
type OverviewHandler struct {
	service overviewService
}

// NewOverviewHandler constructs an OverviewHandler.
func NewOverviewHandler(svc overviewService) *OverviewHandler {
	return &OverviewHandler{service: svc}
}

// Get godoc
// @Summary Catalog and session totals
// @Tags Overview
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /overview [get]
func (h *OverviewHandler) Get(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

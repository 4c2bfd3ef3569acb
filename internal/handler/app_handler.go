package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/service"
	"github.com/jengzang/mobiledna-go/pkg/response"
)

// AppHandler serves application metadata
type AppHandler struct {
	service *service.AppMetaService
}

// NewAppHandler creates a new app metadata handler
func NewAppHandler(service *service.AppMetaService) *AppHandler {
	return &AppHandler{service: service}
}

// EditAppRequest carries the fields to change
type EditAppRequest struct {
	models.AppMeta
	Overwrite bool `json:"overwrite"`
}

// GetApp returns the metadata of one app
// GET /api/v1/apps/:id
func (h *AppHandler) GetApp(c *gin.Context) {
	meta, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, meta)
}

// EditApp fills in or overwrites the metadata of one app
// PUT /api/v1/apps/:id
func (h *AppHandler) EditApp(c *gin.Context) {
	var req EditAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	meta, err := h.service.Edit(c.Request.Context(), c.Param("id"), req.AppMeta, req.Overwrite)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, meta)
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/mobiledna-go/internal/middleware"
	"github.com/jengzang/mobiledna-go/internal/service"
	"github.com/jengzang/mobiledna-go/pkg/response"
)

// AnalysisTaskHandler handles HTTP requests for analysis tasks
type AnalysisTaskHandler struct {
	service *service.AnalysisTaskService
}

// NewAnalysisTaskHandler creates a new analysis task handler
func NewAnalysisTaskHandler(service *service.AnalysisTaskService) *AnalysisTaskHandler {
	return &AnalysisTaskHandler{service: service}
}

// CreateTask starts a feature pipeline in the background
// POST /api/v1/analysis/tasks
func (h *AnalysisTaskHandler) CreateTask(c *gin.Context) {
	var req service.PipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	createdBy := c.GetString(middleware.UserKey)
	task, err := h.service.CreateTask(c.Request.Context(), req, createdBy)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Accepted(c, task)
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return id, true
}

// GetTask retrieves a task by ID
// GET /api/v1/analysis/tasks/:id
func (h *AnalysisTaskHandler) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.service.GetTask(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, task)
}

// ListTasks retrieves tasks, filtered by skill_name and status
// GET /api/v1/analysis/tasks
func (h *AnalysisTaskHandler) ListTasks(c *gin.Context) {
	limit, offset := page(c)

	tasks, err := h.service.ListTasks(c.Request.Context(), c.Query("skill_name"), c.Query("status"), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	response.List(c, tasks, limit, offset)
}

// CancelTask cancels a pending or running task
// DELETE /api/v1/analysis/tasks/:id
func (h *AnalysisTaskHandler) CancelTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.service.CancelTask(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Task cancelled successfully"})
}

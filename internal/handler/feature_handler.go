package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/mobiledna-go/internal/analysis"
	"github.com/jengzang/mobiledna-go/internal/service"
	"github.com/jengzang/mobiledna-go/pkg/response"
)

// FeatureHandler serves stored feature runs
type FeatureHandler struct {
	service *service.FeatureService
}

// NewFeatureHandler creates a new feature handler
func NewFeatureHandler(service *service.FeatureService) *FeatureHandler {
	return &FeatureHandler{service: service}
}

// subjectRow is one subject's features; missing values are null
type subjectRow struct {
	Subject string              `json:"id"`
	Values  map[string]*float64 `json:"values"`
}

// ListSkills returns the registered analyzers
// GET /api/v1/features/skills
func (h *FeatureHandler) ListSkills(c *gin.Context) {
	response.Success(c, analysis.Skills())
}

// ListRuns lists stored runs, newest first
// GET /api/v1/features/runs
func (h *FeatureHandler) ListRuns(c *gin.Context) {
	limit, offset := page(c)

	runs, err := h.service.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	response.List(c, runs, limit, offset)
}

// GetRun returns a run with its full table
// GET /api/v1/features/runs/:id
func (h *FeatureHandler) GetRun(c *gin.Context) {
	run, table, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	rows := make([]subjectRow, 0, len(table.Rows))
	for _, subject := range table.Subjects() {
		rows = append(rows, subjectRow{Subject: subject, Values: response.Nullable(table.Rows[subject])})
	}

	response.Success(c, gin.H{
		"run":     run,
		"columns": table.Columns,
		"rows":    rows,
	})
}

// SubjectFeatures returns one subject's row of a run
// GET /api/v1/features/runs/:id/subjects/:subject
func (h *FeatureHandler) SubjectFeatures(c *gin.Context) {
	subject := c.Param("subject")
	values, err := h.service.SubjectFeatures(c.Request.Context(), c.Param("id"), subject)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, subjectRow{Subject: subject, Values: response.Nullable(values)})
}

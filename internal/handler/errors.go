package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/mobiledna-go/internal/repository"
	"github.com/jengzang/mobiledna-go/internal/service"
	"github.com/jengzang/mobiledna-go/pkg/response"
)

// fail maps service errors onto status codes
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrTaskNotRunning):
		response.Error(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c, err.Error())
	}
}

// page reads limit and offset query parameters
func page(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/courses-backend/internal/repository"
	"github.com/stemsi/courses-backend/internal/response"
)

// failCourse maps a course service error to its response. Anything not
// recognised is a server failure.
func failCourse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrCourseNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, repository.ErrCourseExists):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, repository.ErrNoFieldsToUpdate):
		response.Fail(c, http.StatusBadRequest, response.ErrNoFieldsToUpdate)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

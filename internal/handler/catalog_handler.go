package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/courses-backend/internal/model"
	"github.com/stemsi/courses-backend/internal/response"
	"github.com/stemsi/courses-backend/internal/service"
	"github.com/stemsi/courses-backend/internal/validator"
)

// CatalogHandler serves catalog courses, keyed by a caller-chosen CourseID.
type CatalogHandler struct {
	courseService *service.CourseService[string]
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(courseService *service.CourseService[string]) *CatalogHandler {
	return &CatalogHandler{courseService: courseService}
}

// ListCourses godoc
// GET /api/v1/courses?semester=2
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	var filter model.CourseFilter
	if raw := strings.TrimSpace(c.Query("semester")); raw != "" {
		semester, err := parseSemester(raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"semester": "semester must be an integer"})
			return
		}
		filter.Semester = &semester
	}

	courses, err := h.courseService.List(c.Request.Context(), filter)
	if err != nil {
		failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, courses)
}

// GetCourse godoc
// GET /api/v1/courses/:courseId
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := h.courseService.Get(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, course)
}

// CreateCourse godoc
// POST /api/v1/courses
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req model.CreateCatalogCourseRequest
	if fields := validator.BindJSON(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course := req.Course()
	if err := h.courseService.Create(c.Request.Context(), course); err != nil {
		failCourse(c, err)
		return
	}

	response.Success(c, http.StatusCreated, course)
}

// ReplaceCourse godoc
// PUT /api/v1/courses/:courseId
// Every mutable field is required; the id comes from the path.
func (h *CatalogHandler) ReplaceCourse(c *gin.Context) {
	var req model.CreateCourseRequest
	if fields := validator.BindJSON(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Replace(c.Request.Context(), c.Param("courseId"), req.Fields())
	if err != nil {
		failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, course)
}

// PatchCourse godoc
// PATCH /api/v1/courses/:courseId
func (h *CatalogHandler) PatchCourse(c *gin.Context) {
	var patch model.CoursePatch
	if fields := validator.BindJSON(c, &patch); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Patch(c.Request.Context(), c.Param("courseId"), patch)
	if err != nil {
		failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, course)
}

// DeleteCourse godoc
// DELETE /api/v1/courses/:courseId
func (h *CatalogHandler) DeleteCourse(c *gin.Context) {
	if err := h.courseService.Delete(c.Request.Context(), c.Param("courseId")); err != nil {
		failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, response.Message{Message: "deleted"})
}

var errNotInteger = errors.New("not an integer")

// parseSemester accepts any numeric form with no fractional part, so "2"
// and "2.0" both select semester 2.
func parseSemester(raw string) (int, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, errNotInteger
	}
	return int(f), nil
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/courses-backend/internal/model"
	"github.com/stemsi/courses-backend/internal/response"
	"github.com/stemsi/courses-backend/internal/service"
	"github.com/stemsi/courses-backend/internal/validator"
)

// CourseHandler serves the persistent, numerically keyed courses.
type CourseHandler struct {
	courseService *service.CourseService[int64]
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService[int64]) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// CourseCreated is the data payload of a successful create.
type CourseCreated struct {
	Message  string `json:"message"`
	CourseID int64  `json:"CourseID"`
}

// ListCourses godoc
// GET /api/courses
// Lists all courses without pagination. The array is returned under "data".
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context(), model.CourseFilter{})
	if err != nil {
		failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, courses)
}

// GetCourse godoc
// GET /api/courses/:id
// The course record is returned under "data" of the response envelope.
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := parseCourseID(c)
	if !ok {
		return
	}

	course, err := h.courseService.Get(c.Request.Context(), id)
	if err != nil {
		failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, course)
}

// CreateCourse godoc
// POST /api/courses
// Creates a course; the id is assigned by the database.
// Responds 201 with {message, CourseID} under "data".
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req model.CreateCourseRequest
	if fields := validator.BindJSON(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course := &model.Course[int64]{CourseFields: req.Fields()}
	if err := h.courseService.Create(c.Request.Context(), course); err != nil {
		failCourse(c, err)
		return
	}

	response.Success(c, http.StatusCreated, CourseCreated{Message: "course created", CourseID: course.CourseID})
}

// UpdateCourse godoc
// PUT /api/courses/:id
// PATCH /api/courses/:id
// Updates only the fields present in the body.
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := parseCourseID(c)
	if !ok {
		return
	}

	var patch model.CoursePatch
	if fields := validator.BindJSON(c, &patch); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if _, err := h.courseService.Patch(c.Request.Context(), id, patch); err != nil {
		failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, response.Message{Message: "course updated"})
}

// DeleteCourse godoc
// DELETE /api/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := parseCourseID(c)
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		failCourse(c, err)
		return
	}

	response.Success(c, http.StatusOK, response.Message{Message: "course deleted"})
}

// parseCourseID reads the :id path parameter, answering 400 when it is not
// a positive integer.
func parseCourseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/service"
	"github.com/noah-isme/eduflow-api/pkg/response"
)

// CourseHandler exposes course catalogue endpoints.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// RegisterRoutes mounts the course routes on rg.
func (h *CourseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	courses := rg.Group("/courses")
	courses.GET("", h.List)
	courses.POST("", h.Create)
	courses.GET("/facets", h.Facets)
	courses.POST("/conflicts/check", h.CheckConflict)
	courses.GET("/:id", h.Get)
	courses.PUT("/:id", h.Update)
	courses.DELETE("/:id", h.Delete)
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param search query string false "Search by code, name or faculty"
// @Param department query string false "Filter by department"
// @Param faculty query string false "Filter by faculty"
// @Param semester query string false "Filter by semester"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	filter := models.CourseFilter{
		Search:     queryTrim(c, "search"),
		Department: queryTrim(c, "department"),
		Faculty:    queryTrim(c, "faculty"),
		Semester:   queryTrim(c, "semester"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "limit", 9),
	}
	courses, pagination, err := h.courses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}

// Facets godoc
// @Summary Distinct course filter values
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/facets [get]
func (h *CourseHandler) Facets(c *gin.Context) {
	facets, err := h.courses.Facets(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, facets, nil)
}

// Get godoc
// @Summary Course detail with roster and revenue
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	detail, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// CheckConflict godoc
// @Summary Check a schedule slot for room and faculty clashes
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.ConflictCheckRequest true "Slot"
// @Success 200 {object} response.Envelope
// @Router /courses/conflicts/check [post]
func (h *CourseHandler) CheckConflict(c *gin.Context) {
	var req service.ConflictCheckRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.courses.CheckConflict(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.CourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Param id path string true "Course ID"
// @Success 204
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

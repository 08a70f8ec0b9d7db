package handlers

import (
	"github.com/gin-gonic/gin"

	"registrar/internal/core/id"
	"registrar/internal/domain/enrollment"
	"registrar/internal/infrastructure/http/v1/dto"
)

// EnrollmentHandler handles enroll, drop and grade.
type EnrollmentHandler struct {
	*BaseHandler
	service *enrollment.Service
}

// NewEnrollmentHandler creates an enrollment handler.
func NewEnrollmentHandler(base *BaseHandler, service *enrollment.Service) *EnrollmentHandler {
	return &EnrollmentHandler{BaseHandler: base, service: service}
}

// Enroll handles POST /enrollments.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Enroll(c.Request.Context(), id.MustParse(req.StudentID), id.MustParse(req.CourseID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromEnrollment(e))
}

// Get handles GET /enrollments/:id.
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollmentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	e, err := h.service.Get(c.Request.Context(), enrollmentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromEnrollment(e))
}

// Drop handles DELETE /enrollments/:id.
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	enrollmentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Drop(c.Request.Context(), enrollmentID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Grade handles PUT /enrollments/:id/grade.
func (h *EnrollmentHandler) Grade(c *gin.Context) {
	enrollmentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.GradeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Grade(c.Request.Context(), enrollmentID, *req.Grade)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromEnrollment(e))
}

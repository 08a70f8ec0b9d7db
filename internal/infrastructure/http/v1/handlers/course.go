package handlers

import (
	"github.com/gin-gonic/gin"

	"registrar/internal/core/apperror"
	"registrar/internal/core/id"
	"registrar/internal/domain/course"
	"registrar/internal/domain/enrollment"
	"registrar/internal/infrastructure/http/v1/dto"
)

// CourseHandler serves course CRUD plus instructor and roster routes.
type CourseHandler struct {
	*EntityHandler[*course.Course, dto.CreateCourseRequest, dto.UpdateCourseRequest]
	courses     *course.Service
	enrollments *enrollment.Service
}

// NewCourseHandler creates a course handler.
func NewCourseHandler(base *BaseHandler, courses *course.Service, enrollments *enrollment.Service) *CourseHandler {
	crud := NewEntityHandler(base, EntityHandlerConfig[
		*course.Course,
		dto.CreateCourseRequest,
		dto.UpdateCourseRequest,
	]{
		Service:      courses.EntityService,
		DefaultOrder: "code",
		MapCreateDTO: func(req dto.CreateCourseRequest) *course.Course {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateCourseRequest, existing *course.Course) *course.Course {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(c *course.Course) any {
			return dto.FromCourse(c)
		},
	})
	return &CourseHandler{EntityHandler: crud, courses: courses, enrollments: enrollments}
}

// AssignProfessor handles PUT /courses/:id/professor.
func (h *CourseHandler) AssignProfessor(c *gin.Context) {
	courseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AssignProfessorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var professorID *id.ID
	if req.ProfessorID != nil && *req.ProfessorID != "" {
		v, err := id.Parse(*req.ProfessorID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid professorId").WithDetail("field", "professorId"))
			return
		}
		professorID = &v
	}

	updated, err := h.courses.AssignProfessor(c.Request.Context(), courseID, professorID, req.Version)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCourse(updated))
}

// Enrollments handles GET /courses/:id/enrollments.
func (h *CourseHandler) Enrollments(c *gin.Context) {
	courseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	f, ok := h.ListFilter(c, "enrolled_at")
	if !ok {
		return
	}

	res, err := h.enrollments.ListByCourse(c.Request.Context(), courseID, f)
	if err != nil {
		h.Error(c, err)
		return
	}
	respondList(c, res, func(e *enrollment.Enrollment) any { return dto.FromEnrollment(e) })
}

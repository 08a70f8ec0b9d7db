package handlers

import (
	"github.com/gin-gonic/gin"

	"registrar/internal/core/security"
	"registrar/internal/domain/enrollment"
	"registrar/internal/domain/student"
	"registrar/internal/infrastructure/http/v1/dto"
	"registrar/internal/infrastructure/http/v1/middleware"
)

// StudentHandler serves student CRUD plus enrollment and transcript routes.
type StudentHandler struct {
	*EntityHandler[*student.Student, dto.CreateStudentRequest, dto.UpdateStudentRequest]
	students    *student.Service
	enrollments *enrollment.Service
	policies    middleware.Authorizer
}

// NewStudentHandler creates a student handler.
func NewStudentHandler(
	base *BaseHandler,
	students *student.Service,
	enrollments *enrollment.Service,
	policies middleware.Authorizer,
) *StudentHandler {
	crud := NewEntityHandler(base, EntityHandlerConfig[
		*student.Student,
		dto.CreateStudentRequest,
		dto.UpdateStudentRequest,
	]{
		Service:      students.EntityService,
		DefaultOrder: "last_name",
		MapCreateDTO: func(req dto.CreateStudentRequest) *student.Student {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateStudentRequest, existing *student.Student) *student.Student {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(s *student.Student) any {
			return dto.FromStudent(s)
		},
	})
	return &StudentHandler{EntityHandler: crud, students: students, enrollments: enrollments, policies: policies}
}

// authorizeOwner loads the student and checks owner_or_staff against its
// linked user.
func (h *StudentHandler) authorizeOwner(c *gin.Context) (*student.Student, bool) {
	studentID, ok := h.ParseID(c, "id")
	if !ok {
		return nil, false
	}
	st, err := h.students.GetByID(c.Request.Context(), studentID)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}

	resource := map[string]any{}
	if st.UserID != nil {
		resource["owner"] = st.UserID.String()
	}
	if err := h.policies.Authorize(c.Request.Context(), security.PolicyOwnerOrStaff, resource); err != nil {
		h.Error(c, err)
		return nil, false
	}
	return st, true
}

// Enrollments handles GET /students/:id/enrollments.
func (h *StudentHandler) Enrollments(c *gin.Context) {
	st, ok := h.authorizeOwner(c)
	if !ok {
		return
	}
	f, ok := h.ListFilter(c, "enrolled_at")
	if !ok {
		return
	}

	res, err := h.enrollments.ListByStudent(c.Request.Context(), st.ID, f)
	if err != nil {
		h.Error(c, err)
		return
	}
	respondList(c, res, func(e *enrollment.Enrollment) any { return dto.FromEnrollment(e) })
}

// Transcript handles GET /students/:id/transcript.
func (h *StudentHandler) Transcript(c *gin.Context) {
	st, ok := h.authorizeOwner(c)
	if !ok {
		return
	}

	t, err := h.enrollments.Transcript(c.Request.Context(), st.ID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

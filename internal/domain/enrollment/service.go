package enrollment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"registrar/internal/core/apperror"
	"registrar/internal/core/id"
	"registrar/internal/core/types"
	"registrar/internal/core/uow"
	"registrar/internal/domain"
	"registrar/internal/domain/course"
	"registrar/internal/domain/filter"
	"registrar/internal/domain/student"
	"registrar/pkg/logger"
)

// Service enrolls students, drops and grades enrollments.
type Service struct {
	reader   domain.Reader[*Enrollment]
	units    domain.UnitOfWorkFactory
	courses  domain.Reader[*course.Course]
	students domain.Reader[*student.Student]
	now      func() time.Time
}

// NewService creates an enrollment service.
func NewService(
	reader domain.Reader[*Enrollment],
	units domain.UnitOfWorkFactory,
	courses domain.Reader[*course.Course],
	students domain.Reader[*student.Student],
) *Service {
	return &Service{
		reader:   reader,
		units:    units,
		courses:  courses,
		students: students,
		now:      time.Now,
	}
}

func byCourse(courseID id.ID) filter.Item {
	return filter.Item{Field: "course_id", Operator: filter.Equal, Value: courseID}
}

func byStudent(studentID id.ID) filter.Item {
	return filter.Item{Field: "student_id", Operator: filter.Equal, Value: studentID}
}

func (s *Service) count(ctx context.Context, items ...filter.Item) (int64, error) {
	res, err := s.reader.List(ctx, domain.ListFilter{AdvancedFilters: items, Limit: 1})
	if err != nil {
		return 0, err
	}
	return res.TotalCount, nil
}

// Enroll seats a student in a course. The course must have a free seat and
// the student must not already hold one.
func (s *Service) Enroll(ctx context.Context, studentID, courseID id.ID) (*Enrollment, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return nil, err
	}
	c, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	existing, err := s.count(ctx, byStudent(studentID), byCourse(courseID))
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if existing > 0 {
		return nil, apperror.NewAlreadyEnrolled(studentID.String(), courseID.String())
	}

	seats, err := s.count(ctx, byCourse(courseID))
	if err != nil {
		return nil, fmt.Errorf("count seats: %w", err)
	}
	if seats >= int64(c.Capacity) {
		return nil, apperror.NewCourseFull(courseID.String(), c.Capacity)
	}

	e := NewEnrollment(studentID, courseID, s.now())
	if err := e.Validate(ctx); err != nil {
		return nil, err
	}
	if _, err := domain.Commit(ctx, s.units, func(u *uow.UnitOfWork) { u.Insert(e) }); err != nil {
		return nil, fmt.Errorf("enroll: %w", err)
	}

	logger.Info(ctx, "student enrolled",
		"student_id", studentID,
		"course_id", courseID,
		"seats_taken", seats+1)
	return e, nil
}

// Get returns one enrollment.
func (s *Service) Get(ctx context.Context, enrollmentID id.ID) (*Enrollment, error) {
	return s.reader.GetByID(ctx, enrollmentID)
}

// Drop removes an enrollment.
func (s *Service) Drop(ctx context.Context, enrollmentID id.ID) error {
	e, err := s.reader.GetByID(ctx, enrollmentID)
	if err != nil {
		return err
	}
	if _, err := domain.Commit(ctx, s.units, func(u *uow.UnitOfWork) { u.Delete(e) }); err != nil {
		return fmt.Errorf("drop enrollment: %w", err)
	}
	logger.Info(ctx, "enrollment dropped",
		"enrollment_id", enrollmentID,
		"student_id", e.StudentID,
		"course_id", e.CourseID)
	return nil
}

// Grade records a grade on an enrollment.
func (s *Service) Grade(ctx context.Context, enrollmentID id.ID, grade types.Grade) (*Enrollment, error) {
	e, err := s.reader.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := e.SetGrade(grade, s.now()); err != nil {
		return nil, err
	}
	if _, err := domain.Commit(ctx, s.units, func(u *uow.UnitOfWork) { u.Update(e) }); err != nil {
		return nil, fmt.Errorf("grade enrollment: %w", err)
	}
	return e, nil
}

// ListByCourse lists a course's enrollments.
func (s *Service) ListByCourse(ctx context.Context, courseID id.ID, f domain.ListFilter) (domain.ListResult[*Enrollment], error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return domain.ListResult[*Enrollment]{}, err
	}
	f = f.Normalize()
	f.AdvancedFilters = append(f.AdvancedFilters, byCourse(courseID))
	return s.reader.List(ctx, f)
}

// ListByStudent lists a student's enrollments.
func (s *Service) ListByStudent(ctx context.Context, studentID id.ID, f domain.ListFilter) (domain.ListResult[*Enrollment], error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return domain.ListResult[*Enrollment]{}, err
	}
	f = f.Normalize()
	f.AdvancedFilters = append(f.AdvancedFilters, byStudent(studentID))
	return s.reader.List(ctx, f)
}

// CountByCourse implements course.EnrollmentCounter.
func (s *Service) CountByCourse(ctx context.Context, courseID id.ID) (int64, error) {
	return s.count(ctx, byCourse(courseID))
}

// Transcript builds the student's graded record.
func (s *Service) Transcript(ctx context.Context, studentID id.ID) (*Transcript, error) {
	st, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	res, err := s.reader.List(ctx, domain.ListFilter{
		AdvancedFilters: []filter.Item{byStudent(studentID)},
		OrderBy:         "enrolled_at",
		Limit:           domain.MaxLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	t := &Transcript{
		StudentID:     st.ID,
		StudentNumber: st.StudentNumber,
		StudentName:   st.FullName(),
		Entries:       make([]TranscriptEntry, 0, len(res.Items)),
	}

	var (
		grades   []types.Grade
		weighted = decimal.Zero
	)
	for _, e := range res.Items {
		entry := TranscriptEntry{CourseID: e.CourseID, Grade: e.Grade, EnrolledAt: e.EnrolledAt}

		// Deleted courses keep their transcript lines.
		if c, err := s.courses.List(ctx, domain.ListFilter{IDs: []id.ID{e.CourseID}, IncludeDeleted: true, Limit: 1}); err == nil && len(c.Items) == 1 {
			entry.CourseCode = c.Items[0].Code
			entry.Title = c.Items[0].Title
			entry.Credits = c.Items[0].Credits
		}

		t.CreditsAttempted += entry.Credits
		if e.Grade != nil {
			grades = append(grades, *e.Grade)
			t.CreditsGraded += entry.Credits
			weighted = weighted.Add(e.Grade.Mul(decimal.NewFromInt(int64(entry.Credits))))
		}
		t.Entries = append(t.Entries, entry)
	}

	if avg, ok := types.AverageGrade(grades); ok {
		t.Average = &avg
	}
	if t.CreditsGraded > 0 {
		w := weighted.DivRound(decimal.NewFromInt(int64(t.CreditsGraded)), types.GradeScale)
		t.Weighted = &w
	}
	return t, nil
}

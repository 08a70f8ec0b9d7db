package app

import (
	"context"
	"fmt"

	appctx "registrar/internal/core/context"
	"registrar/internal/core/id"
	"registrar/internal/domain/auth"
	"registrar/internal/domain/course"
	"registrar/internal/domain/professor"
	"registrar/internal/domain/student"
	"registrar/pkg/logger"
)

// SeedAdmin creates the first admin account unless the email is taken.
// It runs without a caller, so the rows carry the system actor (id.Nil).
func SeedAdmin(ctx context.Context, c *Container, email, password string) (id.ID, error) {
	if u, err := c.Backend.Readers.Users.FindBy(ctx, "email", email); err == nil {
		logger.Info(ctx, "admin user already exists", "user_id", u.ID)
		return u.ID, nil
	}

	u, err := c.Auth.Register(ctx, auth.RegisterRequest{
		Email:     email,
		Password:  password,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      appctx.RoleAdmin,
	})
	if err != nil {
		return id.Nil(), fmt.Errorf("register admin: %w", err)
	}
	return u.ID, nil
}

// SeedDemo fills an empty database with a few professors, courses and
// students, created as actor.
func SeedDemo(ctx context.Context, c *Container, actor id.ID) error {
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: actor, Role: appctx.RoleAdmin, IsAdmin: true})

	existing, err := c.Courses.List(ctx, c.defaultFilter())
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}
	if existing.TotalCount > 0 {
		logger.Info(ctx, "demo data already present", "courses", existing.TotalCount)
		return nil
	}

	turing := professor.NewProfessor("Alan", "Turing", "turing@registrar.local", "Computer Science")
	noether := professor.NewProfessor("Emmy", "Noether", "noether@registrar.local", "Mathematics")
	for _, p := range []*professor.Professor{turing, noether} {
		if err := c.Professors.Create(ctx, p); err != nil {
			return fmt.Errorf("create professor %s: %w", p.Email, err)
		}
	}

	courses := []*course.Course{
		course.NewCourse("CS101", "Introduction to Computing", 4, 30),
		course.NewCourse("CS201", "Algorithms", 4, 25),
		course.NewCourse("MATH210", "Abstract Algebra", 3, 20),
	}
	courses[0].ProfessorID = &turing.ID
	courses[1].ProfessorID = &turing.ID
	courses[2].ProfessorID = &noether.ID
	for _, co := range courses {
		if err := c.Courses.Create(ctx, co); err != nil {
			return fmt.Errorf("create course %s: %w", co.Code, err)
		}
	}

	for _, s := range []*student.Student{
		student.NewStudent("Ada", "Lovelace", "ada@registrar.local"),
		student.NewStudent("Grace", "Hopper", "grace@registrar.local"),
		student.NewStudent("Katherine", "Johnson", "katherine@registrar.local"),
	} {
		if err := c.Students.Create(ctx, s); err != nil {
			return fmt.Errorf("create student %s: %w", s.Email, err)
		}
		if _, err := c.Enrollments.Enroll(ctx, s.ID, courses[0].ID); err != nil {
			return fmt.Errorf("enroll %s: %w", s.Email, err)
		}
	}

	logger.Info(ctx, "demo data seeded", "professors", 2, "courses", len(courses), "students", 3)
	return nil
}

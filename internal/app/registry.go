// Package app wires storage, the save pipeline and the domain services
// together. Both cmd/server and cmd/seed build their graph here.
package app

import (
	"registrar/internal/domain/auth"
	"registrar/internal/domain/course"
	"registrar/internal/domain/enrollment"
	"registrar/internal/domain/professor"
	"registrar/internal/domain/student"
	"registrar/internal/metadata"
)

// Tables maps entity names to PostgreSQL tables.
var Tables = map[string]string{
	course.EntityName:       "courses",
	student.EntityName:      "students",
	professor.EntityName:    "professors",
	enrollment.EntityName:   "enrollments",
	auth.UserEntity:         "users",
	auth.RefreshTokenEntity: "refresh_tokens",
}

// NewRegistry describes every persisted entity.
func NewRegistry() *metadata.Registry {
	r := metadata.NewRegistry()
	r.Register(metadata.Describe[*course.Course](Tables[course.EntityName], "Course"))
	r.Register(metadata.Describe[*student.Student](Tables[student.EntityName], "Student"))
	r.Register(metadata.Describe[*professor.Professor](Tables[professor.EntityName], "Professor"))
	r.Register(metadata.Describe[*enrollment.Enrollment](Tables[enrollment.EntityName], "Enrollment"))
	r.Register(metadata.Describe[*auth.User](Tables[auth.UserEntity], "User"))
	r.Register(metadata.Describe[*auth.RefreshToken](Tables[auth.RefreshTokenEntity], "Refresh token"))
	return r
}

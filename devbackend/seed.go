package devbackend

import (
	"fmt"

	"github.com/jrsteele09/go-school-gateway/schools"
	"github.com/jrsteele09/go-school-gateway/users"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "password123"

// Seed loads a small demo data set: one active school, one inactive school and
// an account for each role that can sign in to the gateway.
func Seed(s *Server) error {
	demoSchools := []schools.School{
		{ID: "sch-greenwood", Name: "Greenwood High", Code: "GWH", Subdomain: "greenwood", IsActive: true},
		{ID: "sch-oakridge", Name: "Oakridge Academy", Code: "OKA", Subdomain: "oakridge", IsActive: false},
	}
	for _, school := range demoSchools {
		if err := s.AddSchool(school); err != nil {
			return fmt.Errorf("[devbackend Seed] %w", err)
		}
	}

	demoUsers := []users.User{
		{ID: "usr-root", Name: "Platform Admin", Email: "admin@example.com", Role: users.RoleSuperAdmin},
		{ID: "usr-head", Name: "Grace Hopper", Email: "head@greenwood.example.com", Role: users.RoleSchoolAdmin, SchoolID: "sch-greenwood"},
		{ID: "usr-teacher", Name: "Alan Turing", Email: "teacher@greenwood.example.com", Role: users.RoleTeacher, SchoolID: "sch-greenwood"},
		{ID: "usr-student", Name: "Ada Lovelace", Email: "student@greenwood.example.com", Role: users.RoleStudent, SchoolID: "sch-greenwood"},
	}
	for _, u := range demoUsers {
		if err := s.AddUser(u, DemoPassword); err != nil {
			return fmt.Errorf("[devbackend Seed] %w", err)
		}
	}
	return nil
}

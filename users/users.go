package users

import (
	"github.com/jrsteele09/go-school-gateway/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a user role either at system or school level
type RoleType string

const (
	// System-level roles
	RoleSuperAdmin RoleType = "super_admin" // Can manage all schools; never routed to a subdomain

	// School-level roles
	RoleSchoolAdmin RoleType = "school_admin"
	RoleTeacher     RoleType = "teacher"
	RoleStudent     RoleType = "student"
	RoleParent      RoleType = "parent"
)

// User is the safe projection of a backend user that is stored in the session.
// It never carries credentials.
type User struct {
	ID       string   `json:"id" validate:"required"`
	Name     string   `json:"name"`
	Email    string   `json:"email" validate:"required,email"`
	Role     RoleType `json:"role" validate:"required"`
	SchoolID string   `json:"schoolId,omitempty"`
	Avatar   string   `json:"avatar,omitempty"`
}

// Validate checks the user against its schema.
func (u *User) Validate() error {
	return validation.Struct(u)
}

// IsSuperAdmin returns true if the user has super admin privileges
func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role == RoleSuperAdmin
}

// BelongsTo reports whether the user is scoped to the given school.
// Super admins belong to every school.
func (u *User) BelongsTo(schoolID string) bool {
	if u.IsSuperAdmin() {
		return true
	}
	return schoolID != "" && u.SchoolID == schoolID
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

package schools

import (
	"github.com/jrsteele09/go-school-gateway/internal/validation"
)

// School is a tenant: one school account reachable under its own subdomain.
// A school is only a valid routing target while IsActive is true.
type School struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Code      string `json:"code,omitempty"`
	Subdomain string `json:"subdomain" validate:"required,hostname_rfc1123"`
	Logo      string `json:"logo,omitempty"`
	IsActive  bool   `json:"isActive"`
}

// Validate checks the school against its schema.
func (s *School) Validate() error {
	return validation.Struct(s)
}

// Same reports whether two records describe the same routing target.
func (s *School) Same(other *School) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.ID == other.ID && s.Subdomain == other.Subdomain && s.IsActive == other.IsActive
}

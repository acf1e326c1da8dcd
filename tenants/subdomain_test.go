package tenants_test

import (
	"testing"

	"github.com/jrsteele09/go-school-gateway/tenants"
	"github.com/stretchr/testify/require"
)

func TestDomains_ExtractSubdomain(t *testing.T) {
	domains := tenants.Domains{Root: "example.com", Preview: "vercel.app", Reserved: []string{"www", "app"}}

	tests := []struct {
		host string
		want string
	}{
		{"tenantA.localhost:3000", "tenantA"},
		{"tenantA.localhost", "tenantA"},
		{"localhost:3000", ""},
		{"127.0.0.1:3000", ""},
		{"[::1]:3000", ""},
		{"app.example.com", ""},
		{"www.example.com", ""},
		{"example.com", ""},
		{"example.com:443", ""},
		{"EXAMPLE.com", ""},
		{"tenantA.example.com", "tenantA"},
		{"tenantA.example.com:8080", "tenantA"},
		{"tenantA---preview.vercel.app", "tenantA"},
		{"---preview.vercel.app", ""},
		{"tenantA.other.org", ""},
		{"badexample.com", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			require.Equal(t, tt.want, domains.ExtractSubdomain(tt.host))
		})
	}
}

func TestDomains_ExtractSubdomain_RootWithPort(t *testing.T) {
	domains := tenants.Domains{Root: "school.test:3000"}
	require.Equal(t, "riverside", domains.ExtractSubdomain("riverside.school.test:3000"))
	require.Equal(t, "", domains.ExtractSubdomain("school.test:3000"))
	// Without reserved labels every prefix is a school.
	require.Equal(t, "app", domains.ExtractSubdomain("app.school.test"))
}

func TestDomains_SchoolURL(t *testing.T) {
	domains := tenants.Domains{Root: "localhost:3000"}
	require.Equal(t, "http://riverside.localhost:3000/dashboard", domains.SchoolURL("http", "riverside", "/dashboard"))
	require.Equal(t, "https://riverside.localhost:3000/dashboard", domains.SchoolURL("https", "riverside", "dashboard"))
}

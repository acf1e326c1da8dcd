package tenants

import (
	"net"
	"strings"

	"github.com/jrsteele09/go-school-gateway/internal/config"
)

// Domains describes the hosts the application answers on.
type Domains struct {
	Root     string   // e.g. "example.com" or "localhost:3000"
	Preview  string   // preview deployments: <subdomain>---<branch>.<Preview>
	Reserved []string // labels under Root that belong to the root domain itself
}

func DomainsFromConfig(cfg config.TenantConfig) Domains {
	return Domains{
		Root:     cfg.GetRootDomain(),
		Preview:  cfg.GetPreviewDomain(),
		Reserved: cfg.GetReservedSubdomains(),
	}
}

// ExtractSubdomain returns the school subdomain a host targets, or "" for a request
// to the root domain.
func (d Domains) ExtractSubdomain(host string) string {
	hostname := stripPort(host)
	if hostname == "" {
		return ""
	}
	lower := strings.ToLower(hostname)

	if isLoopback(lower) {
		if strings.HasSuffix(lower, ".localhost") {
			return strings.SplitN(hostname, ".", 2)[0]
		}
		return ""
	}

	if preview := strings.ToLower(d.Preview); preview != "" && strings.HasSuffix(lower, "."+preview) {
		if idx := strings.Index(hostname, "---"); idx > 0 {
			return hostname[:idx]
		}
	}

	root := strings.ToLower(stripPort(d.Root))
	if root == "" || lower == root || lower == "www."+root {
		return ""
	}
	if !strings.HasSuffix(lower, "."+root) {
		return ""
	}

	sub := hostname[:len(hostname)-len(root)-1]
	for _, reserved := range d.Reserved {
		if strings.EqualFold(sub, reserved) {
			return ""
		}
	}
	return sub
}

// SchoolURL builds an absolute URL on a school's subdomain.
func (d Domains) SchoolURL(scheme, subdomain, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return scheme + "://" + subdomain + "." + d.Root + path
}

func stripPort(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}

func isLoopback(hostname string) bool {
	switch hostname {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return strings.HasSuffix(hostname, ".localhost")
}

// Package urls canonicalizes product page URLs.
package urls

import (
	"net"
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// Normalize trims s and makes it fetchable: a scheme-less host gets https,
// the host is lowercased and default ports are dropped. Strings that do not
// look like URLs are returned trimmed.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if !strings.Contains(s, "://") && strings.Contains(s, ".") && !strings.ContainsAny(s, " \t") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}
	u.Host = strings.ToLower(u.Host)
	if u.Scheme == "http" && u.Port() == "80" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" && u.Port() == "443" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}
	return u.String()
}

// RetailerDomain returns the registrable domain of a product URL, e.g.
// "https://www.walmart.com/ip/123" -> "walmart.com". It returns "" when the
// URL has no usable host.
func RetailerDomain(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if !strings.Contains(host, ".") || net.ParseIP(host) != nil {
		return ""
	}

	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return ""
	}
	return domain
}

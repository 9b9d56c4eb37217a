package config

import (
	"net/url"
	"strings"
)

// PostgresDSN is DBURL with lib/pq binary parameters applied.
func (c Config) PostgresDSN() string {
	return PostgresDSN(c.DBURL, c.DBBinaryParameters)
}

// PostgresDSN sets binary_parameters=yes on a URL-style DSN unless the URL
// already carries the option. Keyword DSNs are returned as given.
func PostgresDSN(raw string, binaryParameters bool) string {
	u, ok := parseDBURL(raw)
	if !binaryParameters || !ok {
		return raw
	}
	q := u.Query()
	if _, set := q["binary_parameters"]; set {
		return raw
	}
	q.Set("binary_parameters", "yes")
	u.RawQuery = q.Encode()
	return u.String()
}

// DBName reports the database a DSN points at, for logs and span attributes.
func DBName(raw string) string {
	if u, ok := parseDBURL(raw); ok {
		if name := strings.Trim(u.Path, "/ "); name != "" {
			return name
		}
	}
	for _, field := range strings.Fields(raw) {
		if value, found := strings.CutPrefix(field, "dbname="); found {
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}

func parseDBURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	return u, true
}

package postgres

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	pq "github.com/lib/pq"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// IsConnString reports whether s looks like a PostgreSQL URL.
func IsConnString(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// dsnParams splits a key=value DSN into lower-cased keys.
func dsnParams(connStr string) map[string]string {
	params := map[string]string{}
	for _, part := range strings.Fields(connStr) {
		k, v, ok := strings.Cut(part, "=")
		if ok {
			params[strings.ToLower(k)] = v
		}
	}
	return params
}

func hasParam(connStr, name string) bool {
	if IsConnString(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		for k := range u.Query() {
			if strings.EqualFold(k, name) {
				return true
			}
		}
		return false
	}
	_, ok := dsnParams(connStr)[name]
	return ok
}

// withSearchPath pins the session to the application schema unless the caller chose one.
func withSearchPath(connStr, schema string) string {
	if hasParam(connStr, "search_path") {
		return connStr
	}
	if IsConnString(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return connStr
		}
		q := u.Query()
		q.Set("search_path", schema)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return strings.TrimSpace(connStr) + " search_path=" + schema
}

// ValidateConnString checks that connStr parses as a PostgreSQL URL or DSN and carries no password.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if IsConnString(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
		if _, set := u.User.Password(); set {
			return ErrEmbeddedCredentials
		}
		if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		return nil
	}

	if _, ok := dsnParams(connStr)["password"]; ok {
		return ErrEmbeddedCredentials
	}
	return nil
}

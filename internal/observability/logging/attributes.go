package logging

import (
	"log/slog"
	"net/url"
	"regexp"
)

// RedactedURL wraps a url.URL for logging without exposing credentials
type RedactedURL struct {
	url *url.URL
}

// LogValue implements slog.LogValuer to avoid revealing passwords
func (u RedactedURL) LogValue() slog.Value {
	return slog.StringValue(u.url.Redacted())
}

// RedactURL returns a safely loggable URL value
func RedactURL(url *url.URL) RedactedURL {
	return RedactedURL{url: url}
}

// RedactedMongoURI is a string containing a MongoDB URI for safe logging
type RedactedMongoURI string

var mongoCredentials = regexp.MustCompile(`(?P<User>//[^:@/]+):[^@/]+@`)

// LogValue implements slog.LogValuer to avoid revealing passwords in connection strings
func (s RedactedMongoURI) LogValue() slog.Value {
	if mongoCredentials.MatchString(string(s)) {
		return slog.StringValue(mongoCredentials.ReplaceAllString(string(s), `${User}:xxxxx@`))
	}
	return slog.StringValue(string(s))
}

// RedactMongoURI returns a safely loggable MongoDB connection string
func RedactMongoURI(s string) slog.LogValuer {
	return RedactedMongoURI(s)
}

// RedactedRedisAddr is a redis address string for safe logging; go-redis
// addresses may carry a user:password pair in URL form
type RedactedRedisAddr string

// LogValue implements slog.LogValuer
func (s RedactedRedisAddr) LogValue() slog.Value {
	u, err := url.Parse(string(s))
	if err != nil || u.User == nil {
		return slog.StringValue(string(s))
	}
	return slog.StringValue(u.Redacted())
}

// RedactRedisAddr returns a safely loggable redis address
func RedactRedisAddr(s string) slog.LogValuer {
	return RedactedRedisAddr(s)
}

// Package redact scrubs configured secrets from strings and log attributes.
package redact

import (
	"log/slog"
	"strings"
)

// Placeholder is written in place of every secret occurrence.
const Placeholder = "[REDACTED]"

// Redactor replaces configured secrets in strings. It is immutable after
// construction and safe for concurrent use.
type Redactor struct {
	secrets []string
}

// New returns a Redactor for the given secrets. Empty values are ignored.
func New(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, s := range secrets {
		if s == "" {
			continue
		}
		r.secrets = append(r.secrets, s)
	}
	return r
}

// Redact returns input with every secret replaced by Placeholder.
func (r *Redactor) Redact(input string) string {
	if r == nil {
		return input
	}
	out := input
	for _, secret := range r.secrets {
		out = strings.ReplaceAll(out, secret, Placeholder)
	}
	return out
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook that scrubs string
// and error attribute values.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if r == nil || len(r.secrets) == 0 {
		return a
	}
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.Redact(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, r.Redact(err.Error()))
		}
	}
	return a
}

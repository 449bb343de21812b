// Package server decides which browser origins may open a WebSocket.
package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/samber/lo"
)

const wildcardOrigin = "*"

type originPolicy struct {
	log      *slog.Logger
	allowAll bool
	allowed  map[string]struct{}
}

func newOriginPolicy(log *slog.Logger, origins []string) originPolicy {
	normalized, allowAll := normalizeOrigins(log, origins)
	return originPolicy{
		log:      log,
		allowAll: allowAll,
		allowed: lo.SliceToMap(normalized, func(o string) (string, struct{}) {
			return o, struct{}{}
		}),
	}
}

// normalizeOrigins canonicalizes the configured origins, dropping blanks and
// logging the ones that do not parse. A "*" entry allows every origin.
func normalizeOrigins(log *slog.Logger, origins []string) ([]string, bool) {
	allowAll := false
	normalized := lo.FilterMap(origins, func(raw string, _ int) (string, bool) {
		raw = strings.TrimSpace(raw)
		switch raw {
		case "":
			return "", false
		case wildcardOrigin:
			allowAll = true
			return "", false
		}
		origin, ok := normalizeOrigin(raw)
		if !ok {
			log.Warn("Ignoring invalid origin in configuration", "origin", raw)
		}
		return origin, ok
	})
	return normalized, allowAll
}

// normalizeOrigin reduces an origin to lower-case scheme://host[:port].
func normalizeOrigin(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), true
}

// allows reports whether the request may upgrade. A missing Origin header
// only passes under the wildcard.
func (p originPolicy) allows(r *http.Request) bool {
	if p.allowAll {
		return true
	}
	origin, ok := normalizeOrigin(r.Header.Get("Origin"))
	if !ok {
		return false
	}
	_, ok = p.allowed[origin]
	return ok
}

// checkOrigin is the upgrader hook; refusals are logged.
func (p originPolicy) checkOrigin(r *http.Request) bool {
	if p.allows(r) {
		return true
	}
	p.log.Warn("Blocked WebSocket connection from disallowed origin",
		"origin", r.Header.Get("Origin"), "addr", r.RemoteAddr)
	return false
}

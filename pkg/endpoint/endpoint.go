// Package endpoint builds platform REST URLs step by step.
//
//	endpoint.Latest().Application(appID).Commands().URL()
//	// https://discord.com/api/v10/applications/<appID>/commands
//
// An Endpoint is an immutable value; every step returns a new one, so a
// partially built root can be shared between goroutines.
package endpoint

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultBase is the platform API root without a version.
	DefaultBase = "https://discord.com/api"
	// LatestVersion is the API version used when none is configured.
	LatestVersion = "v10"
)

// SupportedVersions lists the API versions the builder accepts.
var SupportedVersions = []string{"v6", "v8", "v9", "v10"}

// IsSupportedVersion reports whether v is one of SupportedVersions.
func IsSupportedVersion(v string) bool {
	for _, s := range SupportedVersions {
		if s == v {
			return true
		}
	}
	return false
}

// Endpoint is a URL under construction.
type Endpoint struct {
	base     string
	version  string
	segments []string
}

// New returns a root endpoint for the given base and version.
func New(base, version string) (Endpoint, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBase
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return Endpoint{}, fmt.Errorf("invalid api base %q: %w", base, err)
	}
	if version == "" {
		version = LatestVersion
	}
	if !IsSupportedVersion(version) {
		return Endpoint{}, fmt.Errorf("unsupported api version %q", version)
	}
	return Endpoint{base: base, version: version}, nil
}

// Latest returns the default endpoint root.
func Latest() Endpoint {
	return Endpoint{base: DefaultBase, version: LatestVersion}
}

func (e Endpoint) with(segments ...string) Endpoint {
	next := make([]string, 0, len(e.segments)+len(segments))
	next = append(next, e.segments...)
	for _, s := range segments {
		next = append(next, url.PathEscape(s))
	}
	return Endpoint{base: e.base, version: e.version, segments: next}
}

// Application appends applications/{id}.
func (e Endpoint) Application(id string) Endpoint { return e.with("applications", id) }

// Guild appends guilds/{id}.
func (e Endpoint) Guild(id string) Endpoint { return e.with("guilds", id) }

// Commands appends commands.
func (e Endpoint) Commands() Endpoint { return e.with("commands") }

// Command appends commands/{id}.
func (e Endpoint) Command(id string) Endpoint { return e.with("commands", id) }

// Permissions appends permissions.
func (e Endpoint) Permissions() Endpoint { return e.with("permissions") }

// Interaction appends interactions/{id}/{token}.
func (e Endpoint) Interaction(id, token string) Endpoint {
	return e.with("interactions", id, token)
}

// Callback appends callback.
func (e Endpoint) Callback() Endpoint { return e.with("callback") }

// Webhook appends webhooks/{appID}/{token}.
func (e Endpoint) Webhook(appID, token string) Endpoint {
	return e.with("webhooks", appID, token)
}

// Messages appends messages.
func (e Endpoint) Messages() Endpoint { return e.with("messages") }

// Original appends @original.
func (e Endpoint) Original() Endpoint { return e.with("@original") }

// Message appends messages/{id}.
func (e Endpoint) Message(id string) Endpoint { return e.with("messages", id) }

// Version returns the API version of the endpoint.
func (e Endpoint) Version() string { return e.version }

// URL renders the endpoint.
func (e Endpoint) URL() string {
	parts := make([]string, 0, len(e.segments)+2)
	parts = append(parts, e.base, e.version)
	parts = append(parts, e.segments...)
	return strings.Join(parts, "/")
}

func (e Endpoint) String() string { return e.URL() }

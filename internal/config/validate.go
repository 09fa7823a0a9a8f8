// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"net/url"

	"github.com/cockroachdb/errors"

	"github.com/kauffinger/relay/internal/util"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrAmbiguousTransport indicates a server that sets both or neither of
	// url and command.
	ErrAmbiguousTransport = errors.New("server must set exactly one of url and command")

	// ErrInvalidURL indicates a server url that is not an absolute http(s)
	// URL.
	ErrInvalidURL = errors.New("url must be absolute http or https")

	// ErrInsecureAPIKey indicates an api_key configured for a plain-http
	// server on a non-loopback host. Bearer tokens must not cross the
	// network unencrypted.
	ErrInsecureAPIKey = errors.New("api_key over plain http requires a loopback host")

	// ErrUnknownDefault indicates default_server names no configured server.
	ErrUnknownDefault = errors.New("default_server names no configured server")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	if cfg.DefaultServer != "" {
		if _, ok := cfg.Servers[cfg.DefaultServer]; !ok {
			errs = append(errs, errors.Wrapf(ErrUnknownDefault, "%q", cfg.DefaultServer))
		}
	}

	for name, srv := range cfg.Servers {
		for _, err := range validateServer(srv) {
			errs = append(errs, errors.Wrapf(err, "server %q", name))
		}
	}

	return errs
}

func validateServer(srv Server) []error {
	var errs []error

	hasURL := srv.URL != ""
	hasCommand := srv.Command != ""
	if hasURL == hasCommand {
		errs = append(errs, ErrAmbiguousTransport)
	}

	switch srv.EffectiveTransport() {
	case TransportHTTP:
		if !hasURL {
			break
		}
		u, err := url.Parse(srv.URL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, errors.Wrapf(ErrInvalidURL, "%q", srv.URL))
			break
		}
		if srv.APIKey != "" && u.Scheme == "http" && !util.IsLoopback(u.Host) {
			errs = append(errs, errors.Wrapf(ErrInsecureAPIKey, "%q", srv.URL))
		}
	case TransportCommand:
		// Nothing beyond the exactly-one rule: the command's existence is a
		// runtime concern.
	default:
		errs = append(errs, errors.Newf("unknown transport %q", srv.Transport))
	}

	if srv.Timeout < 0 {
		errs = append(errs, errors.New("timeout must be >= 0"))
	}
	if srv.RateLimit < 0 {
		errs = append(errs, errors.New("rate_limit must be >= 0"))
	}

	return errs
}

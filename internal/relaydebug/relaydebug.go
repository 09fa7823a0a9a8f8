// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package relaydebug provides a mechanism to configure debugging parameters
// via the RELAYDEBUG environment variable.
//
// The value of RELAYDEBUG is a comma-separated list of key=value pairs.
// For example:
//
//	RELAYDEBUG=wirelog=1
package relaydebug

import (
	"fmt"
	"os"
	"strings"
)

const debugEnvKey = "RELAYDEBUG"

var debugParams map[string]string

func init() {
	var err error
	debugParams, err = parseParams(os.Getenv(debugEnvKey))
	if err != nil {
		panic(err)
	}
}

// Value returns the value of the debugging parameter with the given key.
// It returns an empty string if the key is not set.
func Value(key string) string {
	return debugParams[key]
}

func parseParams(envValue string) (map[string]string, error) {
	if envValue == "" {
		return nil, nil
	}

	params := make(map[string]string)
	for part := range strings.SplitSeq(envValue, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("RELAYDEBUG: invalid format: %q", part)
		}
		params[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return params, nil
}

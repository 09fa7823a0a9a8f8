// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package json routes this module's JSON encoding through a single point, so
// the implementation can be swapped without touching call sites. It currently
// delegates to github.com/segmentio/encoding/json, which is wire-compatible
// with encoding/json.
package json

import "github.com/segmentio/encoding/json"

func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

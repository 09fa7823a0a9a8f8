// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	internaljson "github.com/kauffinger/relay/internal/json"
)

// remarshal marshals from to JSON, and then unmarshals into to, which must be
// a pointer type. It is how the untyped result maps returned by a [Transport]
// become the typed structs of the client layer.
func remarshal(from, to any) error {
	data, err := internaljson.Marshal(from)
	if err != nil {
		return err
	}
	return internaljson.Unmarshal(data, to)
}

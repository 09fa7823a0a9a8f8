// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Field presence bits for event.set.
const (
	fieldEvent = 1 << iota
	fieldData
	fieldID
	fieldRetry
)

// An event is one Server-Sent-Events frame: the fields accumulated between
// blank-line separators. Only the four standard field names are retained;
// repeated fields are last-write-wins. set records which fields were present,
// so an explicitly empty value is distinguishable from an absent one.
type event struct {
	name  string // the "event" field
	id    string
	retry string
	data  []byte
	set   uint8
}

func (e event) empty() bool { return e.set == 0 }

// scanEvents iterates over the SSE frames in r, in order. It makes a single
// forward pass: a blank line (after trimming) flushes the current frame, a
// trailing unterminated frame is flushed at EOF, and lines without a colon or
// with an unrecognized field name are dropped. The iterator yields a non-nil
// error exactly once, if reading r fails.
func scanEvents(r io.Reader) iter.Seq2[event, error] {
	return func(yield func(event, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(nil, 1<<20)

		var cur event
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				if !cur.empty() {
					if !yield(cur, nil) {
						return
					}
					cur = event{}
				}
				continue
			}
			field, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			field = strings.TrimSpace(field)
			// Per the SSE spec, at most one leading space is stripped from
			// the value.
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				cur.name = value
				cur.set |= fieldEvent
			case "data":
				cur.data = []byte(value)
				cur.set |= fieldData
			case "id":
				cur.id = value
				cur.set |= fieldID
			case "retry":
				cur.retry = value
				cur.set |= fieldRetry
			}
		}
		if err := scanner.Err(); err != nil {
			yield(event{}, fmt.Errorf("reading SSE stream: %w", err))
			return
		}
		if !cur.empty() {
			yield(cur, nil)
		}
	}
}

// writeEvent writes evt to w in wire format, including the terminating blank
// line. It is the inverse of [scanEvents] for single-line data payloads.
func writeEvent(w io.Writer, evt event) (int, error) {
	var b strings.Builder
	if evt.set&fieldEvent != 0 {
		fmt.Fprintf(&b, "event: %s\n", evt.name)
	}
	if evt.set&fieldID != 0 {
		fmt.Fprintf(&b, "id: %s\n", evt.id)
	}
	if evt.set&fieldRetry != 0 {
		fmt.Fprintf(&b, "retry: %s\n", evt.retry)
	}
	if evt.set&fieldData != 0 {
		fmt.Fprintf(&b, "data: %s\n", evt.data)
	}
	b.WriteString("\n")
	return w.Write([]byte(b.String()))
}

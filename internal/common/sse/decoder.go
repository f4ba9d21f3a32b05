// Package sse decodes text/event-stream bodies into a single structured payload.
//
// One line scanner feeds a Strategy; the strategy decides which lines matter and
// what the final payload is. Decoding never fails: a stream that yields nothing
// parseable becomes a {"raw": ...} payload.
package sse

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	eventPrefix = "event:"
	dataPrefix  = "data:"

	// ResponseEvent is the event type carrying the agent's answer object.
	ResponseEvent = "response"

	maxLineSize = 32 << 20
)

// Strategy consumes stream lines and produces the decoded payload.
type Strategy interface {
	// Line receives one line without its terminator.
	Line(line string)
	// Result is called once at end of input with the full decoded text.
	Result(original string) any
}

// Decode reads r to EOF, feeding each line to s. Lines end at CRLF, LF or a
// bare CR. Invalid UTF-8 is replaced with U+FFFD rather than rejected. A read
// error ends the stream early; whatever was read so far is still handed to the
// strategy.
func Decode(r io.Reader, s Strategy) any {
	var original strings.Builder
	scanner := bufio.NewScanner(io.TeeReader(transform.NewReader(r, unicode.UTF8.NewDecoder()), &original))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLines)

	for scanner.Scan() {
		s.Line(scanner.Text())
	}
	return s.Result(original.String())
}

// DecodeString decodes an already-buffered stream body.
func DecodeString(text string, s Strategy) any {
	return Decode(strings.NewReader(text), s)
}

// scanLines is bufio.ScanLines with a bare CR also ending a line. A CR at the
// end of the buffer waits for more input so a split CRLF stays one terminator.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// RawPayload wraps text that could not be decoded into a structured value.
func RawPayload(text string) map[string]any {
	return map[string]any{"raw": text}
}

func parseJSON(text string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	return v, true
}

// lastResponse keeps the last well-formed "response" event of a multi-event stream.
type lastResponse struct {
	eventType string
	dataLines []string
	last      any
	found     bool
}

// NewLastResponse returns the strategy used for agent run streams, where many
// events arrive and only the final "response" event holds the answer. Later
// response events overwrite earlier ones; malformed ones are skipped.
func NewLastResponse() Strategy {
	return &lastResponse{}
}

func (l *lastResponse) Line(line string) {
	if strings.TrimSpace(line) == "" {
		l.flush()
		return
	}
	switch {
	case strings.HasPrefix(line, eventPrefix):
		l.eventType = strings.TrimSpace(line[len(eventPrefix):])
	case strings.HasPrefix(line, dataPrefix):
		l.dataLines = append(l.dataLines, strings.TrimPrefix(line[len(dataPrefix):], " "))
	}
}

func (l *lastResponse) flush() {
	if l.eventType == ResponseEvent && len(l.dataLines) > 0 {
		if v, ok := parseJSON(strings.Join(l.dataLines, "\n")); ok {
			l.last = v
			l.found = v != nil
		}
	}
	l.eventType = ""
	l.dataLines = nil
}

func (l *lastResponse) Result(original string) any {
	// trailing event without a terminating blank line
	l.flush()
	if !l.found {
		return RawPayload(original)
	}
	return l.last
}

// dataBlob concatenates every "data: " line into one JSON document.
type dataBlob struct {
	chunks strings.Builder
}

// NewDataBlob returns the strategy for single-document streams: the payload is
// split across data lines and only makes sense once they are concatenated.
func NewDataBlob() Strategy {
	return &dataBlob{}
}

func (d *dataBlob) Line(line string) {
	if strings.HasPrefix(line, dataPrefix+" ") {
		d.chunks.WriteString(line[len(dataPrefix)+1:])
	}
}

func (d *dataBlob) Result(string) any {
	text := d.chunks.String()
	if v, ok := parseJSON(text); ok {
		return v
	}
	return RawPayload(text)
}

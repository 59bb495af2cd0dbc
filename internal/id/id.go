// Package id generates opaque string identifiers.
//
// Database rows use integer keys assigned by the store; these ids are for
// things that never hit a primary key column, like token ids and request ids.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// requestIDAlphabet avoids look-alike characters so ids can be read off a log line.
const requestIDAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// Generate creates a prefixed NanoID, e.g. "tok-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// RequestID returns a short id for correlating the log lines of one request.
func RequestID() (string, error) {
	rid, err := gonanoid.Generate(requestIDAlphabet, 12)
	if err != nil {
		return "", fmt.Errorf("generate request id: %w", err)
	}
	return rid, nil
}

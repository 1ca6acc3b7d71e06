package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Sum returns the hex sha256 of an uploaded workbook. It identifies the
// source of a snapshot so identical uploads can be recognised.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matcher compares workbook bytes against the checksum of the loaded snapshot.
type Matcher struct {
	expected string
}

func NewMatcher(expected string) *Matcher {
	return &Matcher{expected: expected}
}

// Match reports whether data hashes to the expected checksum.
func (m *Matcher) Match(data []byte) (bool, error) {
	if m.expected == "" {
		return false, errors.New("expected checksum is not set")
	}
	return Sum(data) == m.expected, nil
}

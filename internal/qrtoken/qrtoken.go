// Package qrtoken mints and parses the QR tokens printed on attendee
// badges. A token has the form REG-<conferenceID>-<attendeeID>-<suffix>
// where the suffix is ten characters drawn from [A-Z0-9]. The token is
// both the scan payload at the door and the proof of possession a
// client must present to reverse a check-in.
package qrtoken

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SuffixLen is the number of random characters appended to a token.
const SuffixLen = 10

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ErrMalformed is returned by Parse when the input does not match the
// REG-<conf>-<att>-<suffix> shape.
var ErrMalformed = errors.New("qrtoken: malformed token")

// Generator produces token suffixes. The default implementation draws
// from crypto/rand; tests inject a deterministic one.
type Generator interface {
	Suffix() (string, error)
}

// RandomGenerator is the production Generator.
type RandomGenerator struct{}

// Suffix returns SuffixLen characters of crypto-grade randomness from
// the token alphabet.
func (RandomGenerator) Suffix() (string, error) {
	buf := make([]byte, SuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, SuffixLen)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}

// New assembles a full token for the given conference and attendee
// using the supplied generator.
func New(g Generator, conferenceID, attendeeID uint64) (string, error) {
	suffix, err := g.Suffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("REG-%d-%d-%s", conferenceID, attendeeID, suffix), nil
}

// Token is the decoded form of a QR token.
type Token struct {
	ConferenceID uint64
	AttendeeID   uint64
	Suffix       string
}

// Parse splits a raw token into its parts. It validates shape only;
// whether the token actually exists is a repository question.
func Parse(raw string) (Token, error) {
	parts := strings.Split(raw, "-")
	if len(parts) != 4 || parts[0] != "REG" {
		return Token{}, ErrMalformed
	}
	conf, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return Token{}, ErrMalformed
	}
	att, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return Token{}, ErrMalformed
	}
	suffix := parts[3]
	if len(suffix) != SuffixLen {
		return Token{}, ErrMalformed
	}
	for i := 0; i < len(suffix); i++ {
		ch := suffix[i]
		if (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
			return Token{}, ErrMalformed
		}
	}
	return Token{ConferenceID: conf, AttendeeID: att, Suffix: suffix}, nil
}

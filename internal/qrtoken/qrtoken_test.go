package qrtoken

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenPattern = regexp.MustCompile(`^REG-\d+-\d+-[A-Z0-9]{10}$`)

type fixedGenerator struct{ suffix string }

func (g fixedGenerator) Suffix() (string, error) { return g.suffix, nil }

func TestNewMatchesDocumentedFormat(t *testing.T) {
	g := RandomGenerator{}
	for i := 0; i < 100; i++ {
		tok, err := New(g, 3, 7)
		require.NoError(t, err)
		assert.Regexp(t, tokenPattern, tok)
	}
}

func TestNewUsesInjectedSuffix(t *testing.T) {
	tok, err := New(fixedGenerator{suffix: "ABCDE12345"}, 3, 7)
	require.NoError(t, err)
	assert.Equal(t, "REG-3-7-ABCDE12345", tok)
}

func TestRandomSuffixesDiffer(t *testing.T) {
	g := RandomGenerator{}
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s, err := g.Suffix()
		require.NoError(t, err)
		require.Len(t, s, SuffixLen)
		seen[s] = true
	}
	// 36^10 possibilities; any collision in a thousand draws means the
	// generator is broken.
	assert.Len(t, seen, 1000)
}

func TestParseRoundTrip(t *testing.T) {
	tok, err := New(fixedGenerator{suffix: "ZZ99AA00BB"}, 42, 1001)
	require.NoError(t, err)

	parsed, err := Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), parsed.ConferenceID)
	assert.Equal(t, uint64(1001), parsed.AttendeeID)
	assert.Equal(t, "ZZ99AA00BB", parsed.Suffix)
}

func TestParseRejectsMalformedTokens(t *testing.T) {
	bad := []string{
		"",
		"REG-3-7",
		"REG-3-7-short",
		"REG-3-7-abcde12345",  // lowercase suffix
		"REG-3-7-ABCDE1234!",  // invalid character
		"REG-x-7-ABCDE12345",  // non-numeric conference
		"REG-3-y-ABCDE12345",  // non-numeric attendee
		"TKT-3-7-ABCDE12345",  // wrong prefix
		"REG-3-7-ABCDE12345-", // trailing part
	}
	for _, raw := range bad {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

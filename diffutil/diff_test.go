// backend/diffutil/diff_test.go
package diffutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedProducesMarkersAndHeaders(t *testing.T) {
	prev := "alpha\nbravo\ncharlie\n"
	next := "alpha\nbravo changed\ncharlie\n"

	diff, err := Unified(prev, next, "1", "2")
	require.NoError(t, err)

	assert.Contains(t, diff, "--- version_1")
	assert.Contains(t, diff, "+++ version_2")
	assert.Contains(t, diff, "-bravo\n")
	assert.Contains(t, diff, "+bravo changed\n")
}

func TestUnifiedIsDeterministic(t *testing.T) {
	prev := "one\ntwo\nthree\nfour\nfive\n"
	next := "one\ntwo\n3\nfour\nfive\nsix\n"

	first, err := Unified(prev, next, "1", "2")
	require.NoError(t, err)
	second, err := Unified(prev, next, "1", "2")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestUnifiedIdenticalContentIsEmpty(t *testing.T) {
	content := "same\nlines\n"
	diff, err := Unified(content, content, "1", "2")
	require.NoError(t, err)
	assert.True(t, IsEmpty(diff))
}

func TestUnifiedLineEndingOnlyEditIsEmpty(t *testing.T) {
	prev := "first\r\nsecond\r\n"
	next := "first\nsecond\n"

	diff, err := Unified(prev, next, "1", "2")
	require.NoError(t, err)
	assert.True(t, IsEmpty(diff), "CRLF vs LF should not count as a change")
}

func TestNormalizeLineEndings(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n", NormalizeLineEndings("a\r\nb\rc\n"))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("  \n\t"))
	assert.False(t, IsEmpty("--- version_1\n"))
}

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailsift/internal/app/errors"
)

func Test_Codec_RoundTripBehavior(t *testing.T) {
	errSub, err := NewSubstring("error")
	require.NoError(t, err)
	errSub.HighlightColorKey = "red"

	warnRe, err := NewRegex(`level=warn`)
	require.NoError(t, err)
	warnRe.Enabled = false

	noise, err := NewSubstring("healthcheck")
	require.NoError(t, err)

	root := NewAnd(NewOr(errSub, warnRe), NewNor(noise))

	data, err := Marshal(root)
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)

	lines := []string{
		"ERROR db down",
		"level=warn retrying",
		"error healthcheck failed",
		"info all good",
		"",
	}

	for _, line := range lines {
		assert.Equal(t, root.Matches(line), restored.Matches(line), "line %q", line)
	}
}

func Test_Codec_PreservesMetadata(t *testing.T) {
	sub, err := NewSubstring("x")
	require.NoError(t, err)
	sub.HighlightColorKey = "amber"
	sub.Enabled = false

	data, err := Marshal(sub)
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, KindSubstring, restored.Kind)
	assert.Equal(t, "amber", restored.HighlightColorKey)
	assert.False(t, restored.Enabled)
}

func Test_Codec_NilRootMarshalsAsTrue(t *testing.T) {
	data, err := Marshal(nil)
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, KindTrue, restored.Kind)
	assert.True(t, restored.Matches("anything"))
}

func Test_Codec_RejectsUnknownKind(t *testing.T) {
	_, err := Unmarshal([]byte("kind: xor\nenabled: true\n"))

	assert.ErrorIs(t, err, errors.ErrUnknownFilterKind)
}

func Test_Codec_RejectsEmptySubstring(t *testing.T) {
	_, err := Unmarshal([]byte("kind: substring\nenabled: true\n"))

	assert.ErrorIs(t, err, errors.ErrEmptyFilterValue)
}

func Test_Codec_RejectsBadPattern(t *testing.T) {
	_, err := Unmarshal([]byte("kind: regex\nvalue: ']('\nenabled: true\n"))

	assert.ErrorIs(t, err, errors.ErrInvalidPattern)
}

func Test_Codec_RejectsBadChildWithoutPartialTree(t *testing.T) {
	doc := `
kind: and
enabled: true
children:
  - kind: substring
    value: ok
    enabled: true
  - kind: regex
    value: '](('
    enabled: true
`

	n, err := Unmarshal([]byte(doc))

	assert.Nil(t, n)
	assert.ErrorIs(t, err, errors.ErrInvalidPattern)
}

func Test_Codec_RejectsMalformedYAML(t *testing.T) {
	_, err := Unmarshal([]byte("kind: [unclosed"))

	assert.ErrorIs(t, err, errors.ErrMalformedFilterDoc)
}

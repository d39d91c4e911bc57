package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailsift/internal/app/errors"
	"tailsift/internal/config"
)

func Test_BuildFilter_NothingConfiguredIsNil(t *testing.T) {
	root, err := BuildFilter(config.DefaultConfig(), &Options{})

	require.NoError(t, err)
	assert.Nil(t, root)
	assert.True(t, root.Matches("anything"))
}

func Test_BuildFilter_ContainsTermsAreOrCombined(t *testing.T) {
	opts := &Options{Contains: []string{"error", "warn"}}

	root, err := BuildFilter(config.DefaultConfig(), opts)
	require.NoError(t, err)

	assert.True(t, root.Matches("an ERROR happened"))
	assert.True(t, root.Matches("warn: slow"))
	assert.False(t, root.Matches("info: fine"))
}

func Test_BuildFilter_ExcludesAreNorCombined(t *testing.T) {
	opts := &Options{
		Contains: []string{"error"},
		Excludes: []string{"healthcheck"},
	}

	root, err := BuildFilter(config.DefaultConfig(), opts)
	require.NoError(t, err)

	assert.True(t, root.Matches("error: db down"))
	assert.False(t, root.Matches("error: healthcheck failed"))
	assert.False(t, root.Matches("all quiet"))
}

func Test_BuildFilter_RegexpTerm(t *testing.T) {
	opts := &Options{Regexps: []string{`status=5\d\d`}}

	root, err := BuildFilter(config.DefaultConfig(), opts)
	require.NoError(t, err)

	assert.True(t, root.Matches("GET /x status=503"))
	assert.False(t, root.Matches("GET /x status=200"))
}

func Test_BuildFilter_BadRegexpRejected(t *testing.T) {
	opts := &Options{Regexps: []string{`](`}}

	_, err := BuildFilter(config.DefaultConfig(), opts)

	assert.ErrorIs(t, err, errors.ErrInvalidPattern)
}

func Test_BuildFilter_FromPersistedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.yaml")
	doc := `
kind: or
enabled: true
children:
  - kind: substring
    value: error
    enabled: true
  - kind: substring
    value: fatal
    enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg := config.DefaultConfig()
	cfg.Filter.Path = path

	root, err := BuildFilter(cfg, &Options{})
	require.NoError(t, err)

	assert.True(t, root.Matches("FATAL: out of memory"))
	assert.False(t, root.Matches("warn: slow"))
}

func Test_BuildFilter_FileCombinesWithFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.yaml")
	doc := "kind: substring\nvalue: error\nenabled: true\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg := config.DefaultConfig()
	cfg.Filter.Path = path

	root, err := BuildFilter(cfg, &Options{Excludes: []string{"healthcheck"}})
	require.NoError(t, err)

	assert.True(t, root.Matches("error: it broke"))
	assert.False(t, root.Matches("error: healthcheck"))
}

func Test_BuildFilter_MissingFileRejected(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Filter.Path = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := BuildFilter(cfg, &Options{})

	assert.Error(t, err)
}

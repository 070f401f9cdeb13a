package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var renameFiles = []string{
	"src/a.test.js",
	"src/b.test.js",
	"src/c.js",
	"src/reducers/user.js",
	"src/actions/user.js",
}

func TestMatchRenamesExact(t *testing.T) {
	pairs, err := MatchRenames(renameFiles, "./src/c.js", "lib/c.js", false)
	require.NoError(t, err)
	assert.Equal(t, []RenamePair{{From: "src/c.js", To: "lib/c.js"}}, pairs)
}

func TestMatchRenamesIntoDirectory(t *testing.T) {
	pairs, err := MatchRenames(renameFiles, "src/c.js", "lib/", false)
	require.NoError(t, err)
	assert.Equal(t, []RenamePair{{From: "src/c.js", To: "lib/c.js"}}, pairs)
}

func TestMatchRenamesRegex(t *testing.T) {
	pairs, err := MatchRenames(renameFiles, `(.*)\.test\.js`, "$1.spec.js", true)
	require.NoError(t, err)
	assert.Equal(t, []RenamePair{
		{From: "src/a.test.js", To: "src/a.spec.js"},
		{From: "src/b.test.js", To: "src/b.spec.js"},
	}, pairs)
}

func TestMatchRenamesRegexSwapsGroups(t *testing.T) {
	pairs, err := MatchRenames(renameFiles, `(reducers|actions)/([^/]*)\.js`, "$2/$1.js", true)
	require.NoError(t, err)
	assert.Equal(t, []RenamePair{
		{From: "src/reducers/user.js", To: "src/user/reducers.js"},
		{From: "src/actions/user.js", To: "src/user/actions.js"},
	}, pairs)
}

func TestMatchRenamesRegexReplacesFirstMatchOnly(t *testing.T) {
	pairs, err := MatchRenames([]string{"a/a/a.js"}, `a/`, "b/", true)
	require.NoError(t, err)
	assert.Equal(t, []RenamePair{{From: "a/a/a.js", To: "b/a/a.js"}}, pairs)
}

func TestMatchRenamesNoMatch(t *testing.T) {
	_, err := MatchRenames(renameFiles, "src/missing.js", "x.js", false)
	assert.ErrorIs(t, err, ErrNoMatchingFiles)

	_, err = MatchRenames(renameFiles, `\.ts$`, "x", true)
	assert.ErrorIs(t, err, ErrNoMatchingFiles)

	_, err = MatchRenames(renameFiles, `(`, "x", true)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatchingFiles)
}

func TestMatchRenamesDropsNoops(t *testing.T) {
	pairs, err := MatchRenames(renameFiles, `src/c\.js`, "src/c.js", true)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestFormatRenameList(t *testing.T) {
	got := FormatRenameList([]string{"a.js", "src/bb.js"})
	assert.Equal(t, "a.js      -> a.js\nsrc/bb.js -> src/bb.js\n", got)

	pairs, err := ParseRenameList(strings.NewReader(got))
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestParseRenameList(t *testing.T) {
	input := "# old -> new\na.js   -> b.js\n\n  c.js -> c.js\nd.js->e/d.js\njust a note\n./f.js -> ./g.js\n"
	pairs, err := ParseRenameList(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []RenamePair{
		{From: "a.js", To: "b.js"},
		{From: "d.js", To: "e/d.js"},
		{From: "f.js", To: "g.js"},
	}, pairs)
}

func TestParseRenameListIncomplete(t *testing.T) {
	_, err := ParseRenameList(strings.NewReader("a.js -> b.js\nc.js ->\n"))
	assert.ErrorContains(t, err, "line 2")
}

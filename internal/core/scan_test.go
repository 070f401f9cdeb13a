package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scanProject = `
-- package.json --
{}
-- a.js --
import { b } from './b'
import missing from './missing'
-- b.js --
import self from './b'
-- c/d.js --
const b = require('../b.js')
const lodash = require('lodash')
-- c/e.js --
export { default } from '..'
-- index.js --
export * from './b.js'
`

func TestFindReferences(t *testing.T) {
	p := newProject(t, scanProject)

	refs, err := FindReferences(context.Background(), p, "b.js")
	require.NoError(t, err)

	var got []string
	for _, r := range refs {
		got = append(got, p.Rel(r.File)+" "+r.Specifier.Value+" "+string(r.Probe))
	}
	assert.Equal(t, []string{
		"a.js ./b extension",
		"c/d.js ../b.js exact",
		"index.js ./b.js exact",
	}, got)
}

func TestFindReferencesIndex(t *testing.T) {
	p := newProject(t, scanProject)

	refs, err := FindReferences(context.Background(), p, "./index.js")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "c/e.js", p.Rel(refs[0].File))
	assert.Equal(t, ProbeIndex, refs[0].Probe)
	assert.Equal(t, 1, refs[0].Specifier.Line)
}

func TestFindReferencesMissingFile(t *testing.T) {
	p := newProject(t, scanProject)
	_, err := FindReferences(context.Background(), p, "nope.js")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanReferencesCountsUnresolved(t *testing.T) {
	p := newProject(t, scanProject)
	target := filepath.Join(p.Root, "b.js")

	result, err := scanReferences(context.Background(), p, target, scanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, result.scanned)
	assert.Equal(t, 1, result.unresolved) // './missing'; bare names are not counted
	assert.Len(t, result.refs, 4)          // includes b.js importing itself
}

func TestScanReferencesPresentAndAbsent(t *testing.T) {
	p := newProject(t, scanProject)
	ghost := filepath.Join(p.Root, "missing.js")

	result, err := scanReferences(context.Background(), p, ghost, scanOptions{present: []string{ghost}})
	require.NoError(t, err)
	require.Len(t, result.refs, 1)
	assert.Equal(t, "a.js", p.Rel(result.refs[0].File))
	assert.Equal(t, 0, result.unresolved)

	b := filepath.Join(p.Root, "b.js")
	result, err = scanReferences(context.Background(), p, b, scanOptions{absent: []string{b}})
	require.NoError(t, err)
	assert.Empty(t, result.refs)
	assert.Equal(t, 5, result.unresolved)
}

func TestIndexQueries(t *testing.T) {
	ctx := context.Background()
	ix, err := openIndex(ctx)
	require.NoError(t, err)
	defer ix.Close()

	err = ix.insertFiles(ctx, []indexedFile{
		{path: "/p/a.js", refs: []Reference{
			{File: "/p/a.js", Specifier: Specifier{Value: "./b", Offset: 10, Line: 1, Kind: KindDeclaration}, Target: "/p/b.js", Probe: ProbeExtension},
			{File: "/p/a.js", Specifier: Specifier{Value: "./x", Offset: 40, Line: 2, Kind: KindLiteral}},
			{File: "/p/a.js", Specifier: Specifier{Value: "react", Offset: 60, Line: 3, Kind: KindDeclaration}},
		}},
		{path: "/p/c.js", refs: []Reference{
			{File: "/p/c.js", Specifier: Specifier{Value: "./b.js", Offset: 5, Line: 1, Kind: KindLiteral}, Target: "/p/b.js", Probe: ProbeExact},
		}},
	})
	require.NoError(t, err)

	refs, err := ix.referencesTo(ctx, "/p/b.js")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, Reference{
		File:      "/p/a.js",
		Specifier: Specifier{Value: "./b", Offset: 10, Line: 1, Kind: KindDeclaration},
		Target:    "/p/b.js",
		Probe:     ProbeExtension,
	}, refs[0])
	assert.Equal(t, "/p/c.js", refs[1].File)
	assert.Equal(t, KindLiteral, refs[1].Specifier.Kind)

	n, err := ix.unresolvedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverProbeOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extensions = []string{"js", "jsx"}
	res := newResolver(cfg, []string{
		"/proj/a.js",
		"/proj/b.js",
		"/proj/b/index.js",
		"/proj/c.jsx",
		"/proj/lib/index.js",
		"/proj/lib/util.js",
	})

	tests := []struct {
		from, spec string
		target     string
		probe      Probe
	}{
		{"/proj/a.js", "./b.js", "/proj/b.js", ProbeExact},
		{"/proj/a.js", "./b", "/proj/b.js", ProbeExtension},
		{"/proj/a.js", "./b/", "/proj/b/index.js", ProbeIndex},
		{"/proj/a.js", "./c", "/proj/c.jsx", ProbeExtension},
		{"/proj/a.js", "./lib", "/proj/lib/index.js", ProbeIndex},
		{"/proj/lib/util.js", ".", "/proj/lib/index.js", ProbeIndex},
		{"/proj/lib/util.js", "../a", "/proj/a.js", ProbeExtension},
		{"/proj/lib/util.js", "./index", "/proj/lib/index.js", ProbeExtension},
	}
	for _, tt := range tests {
		target, probe, ok := res.resolve(tt.from, tt.spec)
		require.True(t, ok, "%s from %s", tt.spec, tt.from)
		assert.Equal(t, tt.target, target, tt.spec)
		assert.Equal(t, tt.probe, probe, tt.spec)
	}
}

func TestResolverUnresolved(t *testing.T) {
	res := newResolver(DefaultConfig(), []string{"/proj/a.js", "/proj/c.jsx"})
	for _, spec := range []string{"lodash", "@scope/pkg", "./missing", "./c", "/abs/a.js"} {
		_, _, ok := res.resolve("/proj/a.js", spec)
		assert.False(t, ok, spec)
	}
}

func TestResolverAddRemove(t *testing.T) {
	res := newResolver(DefaultConfig(), nil)
	_, _, ok := res.resolve("/proj/a.js", "./b")
	assert.False(t, ok)
	res.add("/proj/b.js")
	target, _, ok := res.resolve("/proj/a.js", "./b")
	assert.True(t, ok)
	assert.Equal(t, "/proj/b.js", target)
	res.remove("/proj/b.js")
	_, _, ok = res.resolve("/proj/a.js", "./b")
	assert.False(t, ok)
}

func TestIsRelativeSpecifier(t *testing.T) {
	for _, spec := range []string{".", "..", "./a", "../a", "./"} {
		assert.True(t, IsRelativeSpecifier(spec), spec)
	}
	for _, spec := range []string{"react", "@scope/pkg", "/abs", ".hidden", "..a", ""} {
		assert.False(t, IsRelativeSpecifier(spec), spec)
	}
}

func TestRelativeSpecifier(t *testing.T) {
	tests := []struct{ fromDir, target, want string }{
		{"/p/src", "/p/src/a.js", "./a.js"},
		{"/p/src/ui", "/p/lib/h.js", "../../lib/h.js"},
		{"/p", "/p/nested/a.js", "./nested/a.js"},
		{"/p", "/p", "."},
		{"/p/a", "/p", ".."},
		{"/p/a/b", "/p", "../.."},
	}
	for _, tt := range tests {
		got, err := RelativeSpecifier(tt.fromDir, tt.target)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.fromDir, tt.target)
	}
}

func TestResolve(t *testing.T) {
	p := newProject(t, `
-- package.json --
{}
-- a.js --
import lib from './lib'
-- lib/index.js --
export default 1
`)
	ctx := context.Background()

	res, err := Resolve(ctx, p, "a.js", "./lib")
	require.NoError(t, err)
	assert.True(t, res.Relative)
	assert.True(t, res.Resolved)
	assert.Equal(t, "lib/index.js", res.Target)
	assert.Equal(t, ProbeIndex, res.Probe)

	res, err = Resolve(ctx, p, "./a.js", "react")
	require.NoError(t, err)
	assert.Equal(t, "a.js", res.From)
	assert.False(t, res.Relative)
	assert.False(t, res.Resolved)

	_, err = Resolve(ctx, p, "missing.js", "./lib")
	assert.Error(t, err)
}

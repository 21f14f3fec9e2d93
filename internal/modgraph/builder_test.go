package modgraph

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bundlegen/internal/ctxlog"
)

func testContext() context.Context {
	return ctxlog.Discard(context.Background())
}

func file(src string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(src)}
}

func TestBuilder_EntriesSharingBaseName(t *testing.T) {
	fsys := fstest.MapFS{
		"src/pages/home/index.js": file(`import 'c';`),
		"src/pages/blog/index.js": file(`import 'd';`),
	}
	b, err := NewBuilder(0)
	require.NoError(t, err)

	g, err := b.Build(testContext(), fsys, []string{"src/pages/home/index.js", "src/pages/blog/index.js"})
	require.NoError(t, err)
	home, err := g.Reachable("src/pages/home/index.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, home)
	blog, err := g.Reachable("src/pages/blog/index.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, blog)
}

func TestBuilder_Build(t *testing.T) {
	fsys := fstest.MapFS{
		"src/pages/home/index.js":  file(`import c from 'c'; import './shared';`),
		"src/pages/home/about.js":  file(`const c = require('c'); import '../../lib/a';`),
		"src/pages/home/shared.js": file(`import 'lodash/fp'; import './missing';`),
		"src/lib/a.js":             file(`import './b';`),
		"src/lib/b.js":             file(`import './a';`),
	}

	b, err := NewBuilder(16)
	require.NoError(t, err)
	g, err := b.Build(testContext(), fsys, []string{"src/pages/home/index.js", "src/pages/home/about.js"})
	require.NoError(t, err)

	index, err := g.Reachable("src/pages/home/index.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "lodash", "src/pages/home/shared.js"}, index)

	about, err := g.Reachable("src/pages/home/about.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "src/lib/a.js", "src/lib/b.js"}, about)

	// a <-> b is a cycle; it is tolerated and reported.
	assert.Error(t, g.DetectCycles())

	deps, err := g.dependents("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/pages/home/about.js", "src/pages/home/index.js"}, deps)
}

func TestBuilder_MissingRoot(t *testing.T) {
	b, err := NewBuilder(0)
	require.NoError(t, err)
	_, err = b.Build(testContext(), fstest.MapFS{}, []string{"src/nope.js"})
	require.ErrorIs(t, err, ErrAnalyze)
}

func TestBuilder_SyntaxError(t *testing.T) {
	fsys := fstest.MapFS{"src/index.js": file(`import from from;;; {`)}
	b, err := NewBuilder(0)
	require.NoError(t, err)
	_, err = b.Build(testContext(), fsys, []string{"src/index.js"})
	require.ErrorIs(t, err, ErrAnalyze)
	assert.Contains(t, err.Error(), "src/index.js")
}

func TestBuilder_IgnoresCommentsAndStrings(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "comment marker inside a string",
			src:  "const pattern = 'assets/*.png';\nimport c from 'c';\n/* note */",
			want: []string{"c"},
		},
		{
			name: "trailing line comment",
			src:  "init(); // was: require('moment')\nimport 'react';",
			want: []string{"react"},
		},
		{
			name: "block comment",
			src:  "/* import 'jquery' */ import 'react';",
			want: []string{"react"},
		},
		{
			name: "template literal",
			src:  "const s = `import 'fake' ${1} /*`;\nimport c from 'c';\nconst t = `*/`;",
			want: []string{"c"},
		},
		{
			name: "string that looks like an import",
			src:  "const doc = \"require('moment')\"; import 'react';",
			want: []string{"react"},
		},
		{
			name: "dynamic import and require",
			src:  "import('lazy'); const x = require('lodash/fp');",
			want: []string{"lazy", "lodash"},
		},
		{
			name: "jsx in a .js file",
			src:  "import React from 'react';\nexport const App = () => <div className=\"x\">hi</div>;",
			want: []string{"react"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fsys := fstest.MapFS{"src/index.js": file(tc.src)}
			b, err := NewBuilder(0)
			require.NoError(t, err)

			g, err := b.Build(testContext(), fsys, []string{"src/index.js"})
			require.NoError(t, err)
			got, err := g.Reachable("src/index.js")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuilder_NonScriptImportsAreLeaves(t *testing.T) {
	fsys := fstest.MapFS{
		"src/index.js":   file(`import './style.less'; import logo from './logo.png'; import data from './data.json';`),
		"src/style.less": file(`@import "./other.less"; body { color: red; }`),
		"src/logo.png":   file("\x89PNG"),
		"src/data.json":  file(`{"a": 1}`),
	}
	b, err := NewBuilder(0)
	require.NoError(t, err)

	g, err := b.Build(testContext(), fsys, []string{"src/index.js"})
	require.NoError(t, err)
	got, err := g.Reachable("src/index.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/data.json", "src/logo.png", "src/style.less"}, got)
}

func TestBuilder_CacheReusesSources(t *testing.T) {
	fsys := fstest.MapFS{"src/index.js": file(`import 'react';`)}
	b, err := NewBuilder(4)
	require.NoError(t, err)

	_, err = b.Build(testContext(), fsys, []string{"src/index.js"})
	require.NoError(t, err)
	assert.Equal(t, 1, b.sources.Len())

	_, err = b.Build(testContext(), fsys, []string{"src/index.js"})
	require.NoError(t, err)
	assert.Equal(t, 1, b.sources.Len())
}

func TestGraph_AddEdge(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")

	require.NoError(t, g.AddEdge("a", "b"))
	assert.Error(t, g.AddEdge("a", "a"))
	assert.Error(t, g.AddEdge("a", "missing"))

	deps, err := g.dependencies("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, deps)

	_, err = g.Reachable("missing")
	assert.Error(t, err)
	assert.NoError(t, g.DetectCycles())
}

func TestGraph_Closure(t *testing.T) {
	g := New()
	for _, id := range []string{"root", "x", "y"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("x", "root"))
	require.NoError(t, g.AddEdge("y", "x"))

	set, err := g.Closure("root")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"x": {}, "y": {}}, set)
}

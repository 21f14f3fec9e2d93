package fsutil

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	fsys := fstest.MapFS{
		"pages/home/index.html":       {},
		"pages/home/nested/about.HTM": {},
		"pages/home/index.js":         {},
		"pages/shop/cart.html":        {},
		"pages/shop/assets/cart.css":  {},
	}

	got, err := FindFilesByExtension(fsys, "pages/home", ".html", ".htm")
	require.NoError(t, err)
	assert.Equal(t, []string{"pages/home/index.html", "pages/home/nested/about.HTM"}, got)
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	_, err := FindFilesByExtension(fstest.MapFS{}, "nope", ".html")
	require.Error(t, err)
}

func TestSubDirs(t *testing.T) {
	fsys := fstest.MapFS{
		"pages/home/index.html": {},
		"pages/shop/cart.html":  {},
		"pages/.git/HEAD":       {},
		"pages/readme.md":       {},
	}
	got, err := SubDirs(fsys, "pages")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"home", "shop"}, got)
}

func TestTrimExt(t *testing.T) {
	assert.Equal(t, "index", TrimExt("pages/home/index.html"))
	assert.Equal(t, "about.page", TrimExt("about.page.htm"))
}

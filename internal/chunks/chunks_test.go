package chunks

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_LibrariesThenCommon(t *testing.T) {
	libs := []LibraryClosure{
		{Name: "vendor", Modules: []string{"src/a.js", "src/b.js"}},
	}
	entryKeys := []string{"home/bundle.index", "home/bundle.about"}
	deps := map[string][]string{
		"home/bundle.index": {"c", "src/a.js"},
		"home/bundle.about": {"c", "src/a.js", "src/pages/home/only-about.js"},
	}

	got := Plan(libs, entryKeys, deps, nil)

	want := []ChunkGroup{
		{Key: "vendor", Members: []string{"src/a.js", "src/b.js"}, Scope: Scope{AllBundles: true}, Library: true},
		{Key: CommonKey, Members: []string{"c"}, Scope: Scope{Entries: []string{"home/bundle.about", "home/bundle.index"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_DeclaredOrderIsKept(t *testing.T) {
	libs := []LibraryClosure{
		{Name: "zeta", Modules: []string{"src/z.js"}},
		{Name: "alpha", Modules: []string{"src/a.js"}},
	}
	got := Plan(libs, nil, nil, nil)
	require.Len(t, got, 3)
	assert.Equal(t, CommonKey, got[2].Key)
	assert.Equal(t, []string{"zeta", "alpha"}, LibraryKeys(got))
}

func TestPlan_EarlierLibraryClaimsSharedModule(t *testing.T) {
	libs := []LibraryClosure{
		{Name: "vendor", Modules: []string{"src/a.js", "src/util.js"}},
		{Name: "widgets", Modules: []string{"src/w.js", "src/util.js"}},
	}
	got := Plan(libs, nil, nil, nil)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"src/a.js", "src/util.js"}, got[0].Members)
	assert.Equal(t, []string{"src/w.js"}, got[1].Members)
}

func TestPlan_ExcludedModulesStayOutOfCommon(t *testing.T) {
	deps := map[string][]string{
		"home/bundle.index": {"c", "jquery", "src/pages/home/about.js"},
		"home/bundle.about": {"c", "jquery"},
		"blog/bundle.post":  {"src/pages/home/about.js"},
	}
	exclude := []string{"jquery", "src/pages/home/about.js"}

	got := Plan(nil, []string{"home/bundle.index", "home/bundle.about", "blog/bundle.post"}, deps, exclude)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"c"}, got[0].Members)
}

func TestPlan_NoLibraries(t *testing.T) {
	got := Plan(nil, []string{"m/bundle.p"}, map[string][]string{"m/bundle.p": {"x"}}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, CommonKey, got[0].Key)
	assert.Empty(t, got[0].Members)
}

func TestCommonModules(t *testing.T) {
	testCases := []struct {
		name    string
		deps    map[string][]string
		claimed map[string]struct{}
		want    []string
	}{
		{
			name: "shared by two entries",
			deps: map[string][]string{"a": {"x", "y"}, "b": {"y", "z"}},
			want: []string{"y"},
		},
		{
			name: "duplicates within one entry count once",
			deps: map[string][]string{"a": {"x", "x"}, "b": {"z"}},
			want: []string{},
		},
		{
			name:    "claimed modules are excluded",
			deps:    map[string][]string{"a": {"x", "y"}, "b": {"x", "y"}, "c": {"y"}},
			claimed: map[string]struct{}{"x": {}},
			want:    []string{"y"},
		},
		{
			name: "no entries",
			want: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CommonModules(tc.deps, tc.claimed))
		})
	}
}

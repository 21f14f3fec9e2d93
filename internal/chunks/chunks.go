// Package chunks plans the shared chunk groups: one per declared library, then
// the implicit common group holding modules that several pages share.
package chunks

import (
	"sort"

	"github.com/vk/bundlegen/internal/manifest"
)

// CommonKey is the key of the implicit common chunk group.
const CommonKey = manifest.CommonChunkName

// Scope tells the bundler which entries a group extracts from.
type Scope struct {
	// AllBundles extracts the members once, globally, whatever references them.
	AllBundles bool `json:"allBundles,omitempty" yaml:"allBundles,omitempty"`
	// Entries restricts extraction to these entry keys.
	Entries []string `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// ChunkGroup is one shared chunk.
type ChunkGroup struct {
	Key     string   `json:"key" yaml:"key"`
	Members []string `json:"members" yaml:"members"`
	Scope   Scope    `json:"scope" yaml:"scope"`
	Library bool     `json:"library" yaml:"library"`
}

// LibraryClosure is a declared library together with every module it pulls in:
// its own files plus their transitive imports.
type LibraryClosure struct {
	Name    string
	Modules []string
}

// Plan returns the library groups in declared order followed by the common
// group. Library membership is fixed before the common group is computed, and a
// module claimed by an earlier library is not repeated by a later one. deps
// maps each page entry key to the modules reachable from it. Modules in exclude
// never join the common group: externals resolved to a runtime global, and
// page scripts, which stay last in their own entry.
func Plan(libraries []LibraryClosure, entryKeys []string, deps map[string][]string, exclude []string) []ChunkGroup {
	groups := make([]ChunkGroup, 0, len(libraries)+1)
	claimed := make(map[string]struct{})
	for _, lib := range libraries {
		members := make([]string, 0, len(lib.Modules))
		for _, m := range lib.Modules {
			if _, taken := claimed[m]; taken {
				continue
			}
			claimed[m] = struct{}{}
			members = append(members, m)
		}
		groups = append(groups, ChunkGroup{
			Key:     lib.Name,
			Members: members,
			Scope:   Scope{AllBundles: true},
			Library: true,
		})
	}

	skip := make(map[string]struct{}, len(claimed)+len(exclude))
	for m := range claimed {
		skip[m] = struct{}{}
	}
	for _, m := range exclude {
		skip[m] = struct{}{}
	}

	scope := append([]string(nil), entryKeys...)
	sort.Strings(scope)
	groups = append(groups, ChunkGroup{
		Key:     CommonKey,
		Members: CommonModules(deps, skip),
		Scope:   Scope{Entries: scope},
	})
	return groups
}

// CommonModules returns, sorted, the modules that appear in the dependency sets
// of two or more entries and are not in claimed.
func CommonModules(deps map[string][]string, claimed map[string]struct{}) []string {
	counts := make(map[string]int)
	for _, modules := range deps {
		seen := make(map[string]struct{}, len(modules))
		for _, m := range modules {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			counts[m]++
		}
	}

	common := []string{}
	for m, n := range counts {
		if n < 2 {
			continue
		}
		if _, ok := claimed[m]; ok {
			continue
		}
		common = append(common, m)
	}
	sort.Strings(common)
	return common
}

// LibraryKeys returns the keys of the library groups in plan order.
func LibraryKeys(groups []ChunkGroup) []string {
	var keys []string
	for _, g := range groups {
		if g.Library {
			keys = append(keys, g.Key)
		}
	}
	return keys
}

package watcher

import "testing"

func TestRelevant(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/repo/package.json", true},
		{"/repo/pnpm-workspace.yaml", true},
		{"/repo/plugins/a/manifest.v3.yaml", true},
		{"/repo/plugins/a/manifest.yaml", true},
		{"/repo/.kb/plugins/a/manifest.json", true},
		{"/repo/node_modules/x/manifest.yaml", false},
		{"/repo/.kb/node_modules/x/manifest.yaml", true},
		{"/repo/dist/manifest.yaml", false},
		{"/repo/.git/config", false},
		{"/repo/src/notes.txt", false},
	}
	for _, c := range cases {
		if got := relevant(c.path); got != c.want {
			t.Errorf("relevant(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestIsManifestFile(t *testing.T) {
	for _, base := range []string{"manifest.yaml", "manifest.v2.ts", "manifest.v3.json", "manifest.js"} {
		if !isManifestFile(base) {
			t.Errorf("isManifestFile(%q) = false, want true", base)
		}
	}
	if isManifestFile("README.md") {
		t.Error("isManifestFile(README.md) = true, want false")
	}
}

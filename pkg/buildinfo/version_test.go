package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFill(t *testing.T) {
	v, c, d := Version, Commit, Date
	defer func() { Version, Commit, Date = v, c, d }()

	Version, Commit, Date = "dev", "none", "unknown"
	fill(&debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2025-01-01T00:00:00Z"},
		},
	})
	if Version != "v0.3.0" || Commit != "abc123" || Date != "2025-01-01T00:00:00Z" {
		t.Errorf("fill = %s %s %s", Version, Commit, Date)
	}

	Version, Commit = "v1.0.0", "fromldflags"
	fill(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "other"}},
	})
	if Version != "v1.0.0" || Commit != "fromldflags" {
		t.Errorf("ldflags values overwritten: %s %s", Version, Commit)
	}
}

func TestCacheScope(t *testing.T) {
	v, c := Version, Commit
	defer func() { Version, Commit = v, c }()

	Version, Commit = "dev", "abc"
	if got := CacheScope(); got != "dev-abc:" {
		t.Errorf("CacheScope = %q", got)
	}
	Version = "v0.3.0"
	if got := CacheScope(); got != "v0.3.0:" {
		t.Errorf("CacheScope = %q", got)
	}
	if !strings.Contains(Template(), "v0.3.0") {
		t.Errorf("Template = %q", Template())
	}
}

package buildinfo

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestGetEmbedded(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})
	assert.Equal(t, Info{Version: "v0.3.1", Commit: "abc123", Date: "2026-01-02T03:04:05Z"}, Get())
}

func TestGetLinkerWins(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		Main:     debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	})
	oldV, oldC := Version, Commit
	Version, Commit = "v1.0.0", "fff"
	t.Cleanup(func() { Version, Commit = oldV, oldC })

	i := Get()
	assert.Equal(t, "v1.0.0", i.Version)
	assert.Equal(t, "fff", i.Commit)
}

func TestGetNoBuildInfo(t *testing.T) {
	stubBuildInfo(t, nil)
	assert.Equal(t, Info{Version: Version, Commit: Commit, Date: Date}, Get())
	assert.Contains(t, Get().String(), "commit: "+Commit)
}

func TestTemplate(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, "{{.Name}} dev (none, unknown)\n", Template())
}

package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	orig := []string{Version, GitCommit, BuildTime}
	t.Cleanup(func() { Version, GitCommit, BuildTime = orig[0], orig[1], orig[2] })

	Version, GitCommit, BuildTime = "v0.3.0", "abc1234", "2026-10-01T00:00:00Z"

	info := Get()
	assert.Equal(t, BuildInfo{
		Version:   "v0.3.0",
		Commit:    "abc1234",
		BuildTime: "2026-10-01T00:00:00Z",
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}, info)
	assert.Contains(t, info.String(), "graphonauts v0.3.0 (commit abc1234")
}

func TestGet_Fallbacks(t *testing.T) {
	orig := []string{GitCommit, BuildTime}
	t.Cleanup(func() { GitCommit, BuildTime = orig[0], orig[1] })

	GitCommit, BuildTime = "", ""

	info := Get()
	assert.NotEmpty(t, info.Commit)
	assert.NotEmpty(t, info.BuildTime)
}

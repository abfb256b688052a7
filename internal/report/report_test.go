package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/backmassage/dirlaunch/internal/config"
	"github.com/backmassage/dirlaunch/internal/launch"
	"github.com/backmassage/dirlaunch/internal/pipeline"
)

func TestNew(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Wait = true
	stats := pipeline.RunStats{Total: 5, Excluded: 3, Attempted: 2, Launched: 1, Failed: 1}
	results := []launch.Result{
		{Path: "gray8bit/d.txt", PID: 41, Started: true, Waited: true, ExitCode: 0, Duration: 1500 * time.Millisecond},
		{Path: "gray8bit/e", ExitCode: -1, Err: &os.PathError{Op: "fork/exec", Path: "x", Err: os.ErrNotExist}},
	}

	r := New("01JTEST", time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC), &cfg, stats, results)

	assert.Equal(t, "wait", r.Mode)
	assert.Equal(t, []string{".Arc", ".Rlc", ".pgm"}, r.Exclude)
	assert.Equal(t, 3, r.Totals.Excluded)
	require.Len(t, r.Launches, 2)
	require.NotNil(t, r.Launches[0].ExitCode)
	assert.Equal(t, 0, *r.Launches[0].ExitCode)
	assert.Equal(t, "1.5s", r.Launches[0].Duration)
	assert.Nil(t, r.Launches[1].ExitCode)
	assert.Equal(t, "not found", r.Launches[1].Failure)
}

func TestWrite(t *testing.T) {
	cfg := config.DefaultConfig()
	path := filepath.Join(t.TempDir(), "reports", "run.yaml")
	r := New("01JTEST", time.Now(), &cfg, pipeline.RunStats{Total: 1, Attempted: 1, Launched: 1},
		[]launch.Result{{Path: "gray8bit/a.huf", PID: 7, Started: true, ExitCode: -1}})

	require.NoError(t, Write(path, r))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "run_id: 01JTEST")
	assert.Contains(t, string(raw), "mode: detach")
	assert.NotContains(t, string(raw), "exit_code", "detached launches have no exit code")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Len(t, doc["launches"], 1)
}

func TestWrite_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := Write(filepath.Join(blocker, "run.yaml"), Report{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report:")
}

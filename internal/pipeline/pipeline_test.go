package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/dirlaunch/internal/config"
	"github.com/backmassage/dirlaunch/internal/launch"
	"github.com/backmassage/dirlaunch/internal/logging"
)

// --- SplitExt / Discover tests ---

func TestSplitExt(t *testing.T) {
	tests := []struct {
		name     string
		wantBase string
		wantExt  string
	}{
		{"d.txt", "d", ".txt"},
		{"e", "e", ""},
		{"lena.gray.pgm", "lena.gray", ".pgm"},
		{"a.", "a", "."},
		{".pgm", ".pgm", ""},
		{"..hidden", "..hidden", ""},
		{".a.b", ".a", ".b"},
		{"b.Arc", "b", ".Arc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, ext := SplitExt(tt.name)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestDiscover_JoinsPathsAndSizes(t *testing.T) {
	dir := t.TempDir()
	touchSize(t, dir, "d.txt", 10)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	entries, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byName := map[string]Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.Equal(t, filepath.Join(dir, "d.txt"), byName["d.txt"].Path)
	assert.Equal(t, ".txt", byName["d.txt"].Ext)
	assert.EqualValues(t, 10, byName["d.txt"].Size)
	assert.True(t, byName["sub"].IsDir)
}

func TestDiscover_MissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "gray8bit"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrListDir)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

// --- Run tests ---

func TestRun_ExcludesLegacyExtensions(t *testing.T) {
	dir := fixture(t, "a.pgm", "b.Arc", "c.Rlc", "d.txt", "e")
	cfg := testConfig(dir)
	st := &fakeStarter{}

	stats, results, err := Run(context.Background(), &cfg, quietLogger(), st)
	require.NoError(t, err)

	assert.ElementsMatch(t, [][]string{
		{"decode", filepath.Join(dir, "d.txt")},
		{"decode", filepath.Join(dir, "e")},
	}, st.calls)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.Excluded)
	assert.Equal(t, 2, stats.Attempted)
	assert.Equal(t, stats.Total-stats.Excluded, stats.Attempted)
	assert.Equal(t, 2, stats.Launched)
	assert.Zero(t, stats.Failed)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Started)
		assert.False(t, r.Waited)
		assert.Equal(t, -1, r.ExitCode)
	}
	assert.Equal(t, 2, st.released(), "detached handles are released")
}

func TestRun_ExclusionIsCaseSensitive(t *testing.T) {
	dir := fixture(t, "a.PGM", "b.arc", "c.Rlc")
	cfg := testConfig(dir)
	st := &fakeStarter{}

	stats, _, err := Run(context.Background(), &cfg, quietLogger(), st)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Attempted)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.PGM"), filepath.Join(dir, "b.arc")}, st.args())
}

func TestRun_EmptyDirectory(t *testing.T) {
	cfg := testConfig(t.TempDir())
	st := &fakeStarter{}

	stats, results, err := Run(context.Background(), &cfg, quietLogger(), st)
	require.NoError(t, err)
	assert.Empty(t, st.calls)
	assert.Empty(t, results)
	assert.Zero(t, stats.Total)
}

func TestRun_MissingDirectoryLaunchesNothing(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "gray8bit"))
	st := &fakeStarter{}

	_, results, err := Run(context.Background(), &cfg, quietLogger(), st)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrListDir)
	assert.Empty(t, st.calls)
	assert.Nil(t, results)
}

func TestRun_SameArgumentsOnRepeat(t *testing.T) {
	dir := fixture(t, "x.huf", "y.huf", "z.pgm", "w")
	cfg := testConfig(dir)

	first, second := &fakeStarter{}, &fakeStarter{}
	_, _, err := Run(context.Background(), &cfg, quietLogger(), first)
	require.NoError(t, err)
	_, _, err = Run(context.Background(), &cfg, quietLogger(), second)
	require.NoError(t, err)

	assert.Equal(t, sorted(first.args()), sorted(second.args()))
}

func TestRun_Directories(t *testing.T) {
	dir := fixture(t, "img.huf")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old.Arc"), 0o755))

	cfg := testConfig(dir)
	st := &fakeStarter{}
	stats, _, err := Run(context.Background(), &cfg, quietLogger(), st)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "img.huf"), filepath.Join(dir, "nested")}, st.args())
	assert.Equal(t, 1, stats.Excluded)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, stats.Total-stats.Excluded, stats.Attempted)

	cfg.SkipDirs = true
	st = &fakeStarter{}
	stats, _, err = Run(context.Background(), &cfg, quietLogger(), st)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "img.huf")}, st.args())
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Excluded)
}

func TestDecide(t *testing.T) {
	cfg := config.DefaultConfig()
	tests := []struct {
		name     string
		entry    Entry
		skipDirs bool
		want     Decision
	}{
		{"file", Entry{Name: "d.txt", Ext: ".txt"}, false, DecideLaunch},
		{"excluded file", Entry{Name: "a.pgm", Ext: ".pgm"}, false, DecideExcluded},
		{"directory", Entry{Name: "sub", IsDir: true}, false, DecideLaunch},
		{"directory skipped", Entry{Name: "sub", IsDir: true}, true, DecideSkipDir},
		{"excluded directory", Entry{Name: "x.Rlc", Ext: ".Rlc", IsDir: true}, true, DecideExcluded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.SkipDirs = tt.skipDirs
			assert.Equal(t, tt.want, Decide(&cfg, tt.entry))
		})
	}
}

func TestRun_ContinuesPastLaunchFailure(t *testing.T) {
	dir := fixture(t, "a.huf", "b.huf", "c.huf")
	cfg := testConfig(dir)
	st := &fakeStarter{fail: map[string]error{filepath.Join(dir, "a.huf"): fs.ErrPermission}}

	stats, results, err := Run(context.Background(), &cfg, quietLogger(), st)
	require.NoError(t, err)

	assert.Len(t, st.calls, 3)
	assert.Equal(t, 3, stats.Attempted)
	assert.Equal(t, 2, stats.Launched)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.StartFailures())

	var failed []launch.Result
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, filepath.Join(dir, "a.huf"), failed[0].Path)
	assert.Equal(t, launch.FailurePermission, launch.Classify(failed[0].Err))
}

func TestRun_FailFastStopsBatch(t *testing.T) {
	dir := fixture(t, "a.huf", "b.huf", "c.pgm", "d.huf")
	cfg := testConfig(dir)
	cfg.FailFast = true
	st := &fakeStarter{failAll: errors.New("fork: resource temporarily unavailable")}

	stats, results, err := Run(context.Background(), &cfg, quietLogger(), st)
	require.NoError(t, err)

	assert.Len(t, st.calls, 1)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Excluded)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, stats.Total, stats.Excluded+stats.Skipped+stats.Attempted)
}

func TestRun_WaitCollectsExitCodes(t *testing.T) {
	dir := fixture(t, "ok.huf", "bad.huf", "skip.Rlc")
	cfg := testConfig(dir)
	cfg.Wait = true
	st := &fakeStarter{exit: map[string]int{filepath.Join(dir, "bad.huf"): 2}}

	stats, results, err := Run(context.Background(), &cfg, quietLogger(), st)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Launched)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, st.released())
	require.Len(t, results, 2)

	codes := map[string]int{}
	for _, r := range results {
		assert.True(t, r.Waited)
		assert.Positive(t, r.PID)
		codes[filepath.Base(r.Path)] = r.ExitCode
	}
	assert.Equal(t, map[string]int{"ok.huf": 0, "bad.huf": 2}, codes)
}

func TestRun_DryRunStartsNothing(t *testing.T) {
	dir := fixture(t, "a.huf", "b.pgm")
	cfg := testConfig(dir)
	cfg.DryRun = true
	st := &fakeStarter{}

	stats, results, err := Run(context.Background(), &cfg, quietLogger(), st)
	require.NoError(t, err)

	assert.Empty(t, st.calls)
	assert.Equal(t, 1, stats.Launched)
	require.Len(t, results, 1)
	assert.False(t, results[0].Started)
	assert.Equal(t, filepath.Join(dir, "a.huf"), results[0].Path)
}

func TestRun_CancelledBeforeLaunch(t *testing.T) {
	dir := fixture(t, "a.huf", "b.huf", "c.pgm")
	cfg := testConfig(dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := &fakeStarter{}

	stats, _, err := Run(ctx, &cfg, quietLogger(), st)
	require.NoError(t, err)
	assert.Empty(t, st.calls)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 1, stats.Excluded)
}

func TestRun_RealProcesses(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	bin := t.TempDir()
	script := filepath.Join(bin, "decode.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ntouch \"$1.done\"\n"), 0o755))

	dir := fixture(t, "a.huf", "b.huf", "c.pgm")
	cfg := testConfig(dir)
	cfg.Executable = script
	cfg.Wait = true

	stats, results, err := Run(context.Background(), &cfg, quietLogger(), launch.NewExecStarter(true))
	require.NoError(t, err)
	assert.Zero(t, stats.Failed)
	require.Len(t, results, 2)

	for _, name := range []string{"a.huf", "b.huf"} {
		assert.FileExists(t, filepath.Join(dir, name+".done"))
	}
	assert.NoFileExists(t, filepath.Join(dir, "c.pgm.done"))
}

// --- Preview tests ---

func TestPreview(t *testing.T) {
	dir := fixture(t, "a.pgm", "d.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	cfg := testConfig(dir)

	var buf bytes.Buffer
	require.NoError(t, Preview(&cfg, quietLogger(), &buf))

	out := buf.String()
	assert.Contains(t, out, "excluded")
	assert.Contains(t, out, "decode "+filepath.Join(dir, "d.txt"))
	assert.Contains(t, out, "decode "+filepath.Join(dir, "sub"))

	cfg.SkipDirs = true
	buf.Reset()
	require.NoError(t, Preview(&cfg, quietLogger(), &buf))
	assert.NotContains(t, buf.String(), "decode "+filepath.Join(dir, "sub"))

	cfg.Directory = filepath.Join(dir, "missing")
	assert.ErrorIs(t, Preview(&cfg, quietLogger(), &buf), ErrListDir)
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

// --- Helpers ---

type fakeStarter struct {
	mu      sync.Mutex
	calls   [][]string
	fail    map[string]error
	failAll error
	exit    map[string]int
	handles []*fakeHandle
}

func (f *fakeStarter) Start(_ context.Context, name string, args []string) (launch.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.failAll != nil {
		return nil, f.failAll
	}
	if err := f.fail[args[0]]; err != nil {
		return nil, err
	}
	h := &fakeHandle{pid: 1000 + len(f.calls), exit: f.exit[args[0]]}
	f.handles = append(f.handles, h)
	return h, nil
}

func (f *fakeStarter) args() []string {
	var out []string
	for _, c := range f.calls {
		out = append(out, c[1:]...)
	}
	return out
}

func (f *fakeStarter) released() int {
	n := 0
	for _, h := range f.handles {
		if h.released {
			n++
		}
	}
	return n
}

type fakeHandle struct {
	pid      int
	exit     int
	released bool
}

func (h *fakeHandle) PID() int { return h.pid }

func (h *fakeHandle) Wait() launch.Result {
	return launch.Result{PID: h.pid, Started: true, Waited: true, ExitCode: h.exit, Duration: time.Millisecond}
}

func (h *fakeHandle) Release() error {
	h.released = true
	return nil
}

func testConfig(dir string) config.Config {
	cfg := config.DefaultConfig()
	cfg.Directory = dir
	cfg.Executable = "decode"
	cfg.ColorMode = config.ColorNever
	return cfg
}

func quietLogger() *logging.Logger {
	return logging.New(io.Discard, io.Discard, nil, true, true)
}

func fixture(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		touchSize(t, dir, n, 0)
	}
	return dir
}

func touchSize(t *testing.T, dir, name string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644))
}

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

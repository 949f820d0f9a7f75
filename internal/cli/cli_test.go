package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Florex0Real/linux-system-manager/internal/command"
	"github.com/Florex0Real/linux-system-manager/internal/errors"
)

type result struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes lsm with args against a config that keeps sampling short
// and logging off. The user's own config is never read.
func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("cpu_window: 50ms\nlog_level: off\n"), 0o644))

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	code, ok := errors.GetExitCode(err)
	require.True(t, ok, "expected an exit error, got %v", err)
	return code
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("bb"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.md"), []byte("a"), 0o600))
	return dir
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.0", "abc123", "2026-01-01")
	t.Cleanup(func() { SetVersionInfo("dev", "none", "unknown") })

	res := runCLI(t, "version", "--short")
	require.NoError(t, res.err)
	assert.Equal(t, "1.2.0\n", res.stdout)

	res = runCLI(t, "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "lsm v1.2.0")
	assert.Contains(t, res.stdout, "commit: abc123")
}

func TestVersionIgnoresBrokenConfig(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", "/nonexistent/lsm.yaml", "version", "--short"})
	require.NoError(t, cmd.Execute())
	assert.NotEmpty(t, out.String())
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"dev", "dev"},
		{"1.0.0", "v1.0.0"},
		{"v1.0.0", "v1.0.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatVersion(tt.in))
	}
}

func TestMissingExplicitConfig(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "ps"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfig), "got %v", err)
}

func TestSnapshotJSON(t *testing.T) {
	dir := fixtureDir(t)
	t.Setenv("LSM_START_DIR", dir)

	res := runCLI(t, "snapshot", "--limit", "3")
	require.NoError(t, res.err)

	var got struct {
		Seq       uint64          `json:"seq"`
		Metrics   json.RawMessage `json:"metrics"`
		Processes struct {
			Value []map[string]any `json:"value"`
		} `json:"processes"`
		Directory struct {
			Path    string `json:"path"`
			Entries struct {
				Value []struct {
					Name string `json:"name"`
				} `json:"value"`
			} `json:"entries"`
		} `json:"directory"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))

	assert.Equal(t, uint64(1), got.Seq)
	assert.NotEmpty(t, got.Metrics)
	assert.LessOrEqual(t, len(got.Processes.Value), 3)
	assert.Equal(t, dir, got.Directory.Path)

	var names []string
	for _, e := range got.Directory.Entries.Value {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"src", "A.md", "b.txt"}, names)
}

func TestSnapshotYAML(t *testing.T) {
	res := runCLI(t, "snapshot", "--format", "yaml", "--limit", "1")
	require.NoError(t, res.err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &got))
	assert.Contains(t, got, "metrics")
	assert.Contains(t, got, "processes")
	assert.Contains(t, got, "directory")
}

func TestSnapshotUnknownFormat(t *testing.T) {
	res := runCLI(t, "snapshot", "--format", "xml")
	require.Error(t, res.err)
	assert.True(t, errors.IsCode(res.err, errors.ErrCodeConfig))
}

func TestLsTable(t *testing.T) {
	dir := fixtureDir(t)

	res := runCLI(t, "ls", dir)
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, dir, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "TYPE"))
	assert.Contains(t, lines[2], "src")
	assert.Contains(t, lines[2], "DIR")
	assert.Contains(t, lines[3], "A.md")
	assert.Contains(t, lines[3], "600")
	assert.Contains(t, lines[4], "b.txt")
}

func TestLsJSONWithLimit(t *testing.T) {
	dir := fixtureDir(t)

	res := runCLI(t, "ls", dir, "--format", "json", "--limit", "2")
	require.NoError(t, res.err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "src", entries[0]["name"])
	assert.Equal(t, true, entries[0]["is_dir"])
}

func TestLsMissingDirectory(t *testing.T) {
	res := runCLI(t, "ls", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, res.err)
	assert.True(t, errors.IsCode(res.err, errors.ErrCodeNotFound), "got %v", res.err)
}

func TestPs(t *testing.T) {
	res := runCLI(t, "ps", "--limit", "3")
	require.NoError(t, res.err)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "PID"))
	assert.LessOrEqual(t, len(lines), 4)

	res = runCLI(t, "ps", "--limit", "2", "--format", "json")
	require.NoError(t, res.err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &records))
	assert.LessOrEqual(t, len(records), 2)
}

func TestExec(t *testing.T) {
	res := runCLI(t, "exec", "echo hello; echo oops >&2")
	require.NoError(t, res.err)
	assert.Equal(t, "hello\n", res.stdout)
	assert.Equal(t, "oops\n", res.stderr)
}

func TestExecJoinsArgs(t *testing.T) {
	res := runCLI(t, "exec", "--", "echo", "a", "b")
	require.NoError(t, res.err)
	assert.Equal(t, "a b\n", res.stdout)
}

func TestExecPropagatesExitCode(t *testing.T) {
	res := runCLI(t, "exec", "exit 3")
	assert.Equal(t, 3, exitCode(t, res.err))
}

func TestExecTimeout(t *testing.T) {
	start := time.Now()
	res := runCLI(t, "exec", "--timeout", "200ms", "--", "sleep", "20")

	assert.Equal(t, timedOutExitCode, exitCode(t, res.err))
	assert.Contains(t, res.stderr, "Command timed out")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		name string
		res  command.Result
		want int
	}{
		{"exit code", command.Result{ExitCode: 2}, 2},
		{"timed out", command.Result{ExitCode: -1, TimedOut: true}, timedOutExitCode},
		{"sigterm", command.Result{ExitCode: -15}, 143},
		{"failed to start", command.Result{ExitCode: -1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitStatus(tt.res))
		})
	}
}

func TestParsePid(t *testing.T) {
	tests := []struct {
		in      string
		want    int32
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"99999999999", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePid(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKillWithYes(t *testing.T) {
	child := exec.Command("sleep", "30")
	require.NoError(t, child.Start())
	t.Cleanup(func() { _ = child.Process.Kill() })

	pid := child.Process.Pid
	res := runCLI(t, "kill", "--yes", strconv.Itoa(pid))
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "terminated")

	done := make(chan error, 1)
	go func() { done <- child.Wait() }()
	select {
	case err := <-done:
		assert.Error(t, err, "sleep should die from SIGTERM")
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit")
	}
}

func TestKillMissingProcess(t *testing.T) {
	res := runCLI(t, "kill", "--yes", "1073741823")
	require.Error(t, res.err)
	assert.True(t, errors.IsCode(res.err, errors.ErrCodeNotFound), "got %v", res.err)
}

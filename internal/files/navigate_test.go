package files

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/", "/"},
		{"/usr", "/"},
		{"/usr/local/bin", "/usr/local"},
		{"/usr/local/", "/usr"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Parent(tt.in), tt.in)
	}
}

func TestChild(t *testing.T) {
	got, err := Child("/usr", "local")
	require.NoError(t, err)
	assert.Equal(t, "/usr/local", got)

	got, err = Child("/", "etc")
	require.NoError(t, err)
	assert.Equal(t, "/etc", got)

	got, err = Child("/tmp", "a..b")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a..b", got)

	for _, bad := range []string{"", ".", "..", "a/b", "../etc"} {
		_, err := Child("/usr", bad)
		assert.Error(t, err, "name %q", bad)
	}
}

func TestHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester", Home())

	t.Setenv("HOME", "")
	assert.Equal(t, "/", Home())
}

func TestResolve(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/home/tester", Resolve(""))
	assert.Equal(t, "/home/tester", Resolve("~"))
	assert.Equal(t, "/home/tester/src", Resolve("~/src"))
	assert.Equal(t, "/etc", Resolve("/etc/"))
	assert.True(t, filepath.IsAbs(Resolve("relative")))
}

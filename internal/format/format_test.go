package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Florex0Real/linux-system-manager/internal/files"
	"github.com/Florex0Real/linux-system-manager/internal/metrics"
)

func TestUptime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00:00"},
		{-time.Second, "0:00:00"},
		{90 * time.Second, "0:01:30"},
		{25*time.Hour + 3*time.Minute + 4*time.Second + 500*time.Millisecond, "1 day, 1:03:04"},
		{72*time.Hour + 5*time.Hour, "3 days, 5:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Uptime(tt.in), tt.in.String())
	}
}

func TestBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░", Bar(0, 10))
	assert.Equal(t, "█████░░░░░", Bar(50, 10))
	assert.Equal(t, "██████████", Bar(100, 10))
	assert.Equal(t, "██████████", Bar(150, 10))
	assert.Equal(t, "░░░░░░░░░░", Bar(-5, 10))
	assert.Equal(t, BarWidth, len([]rune(Bar(33, 0))))
}

func TestPercentBar(t *testing.T) {
	assert.Equal(t, "50.0% [██████████░░░░░░░░░░]", PercentBar(50))
}

func TestEntrySize(t *testing.T) {
	assert.Equal(t, "-", EntrySize(files.Entry{IsDir: true, Size: files.DirSize}))
	assert.Equal(t, "1.0 KiB", EntrySize(files.Entry{Size: 1024}))
	assert.Equal(t, "DIR", EntryKind(files.Entry{IsDir: true}))
	assert.Equal(t, "FILE", EntryKind(files.Entry{}))
}

func TestFrequency(t *testing.T) {
	assert.Equal(t, "N/A", Frequency(metrics.Frequency{}))
	assert.Equal(t, "2400 MHz", Frequency(metrics.Frequency{MHz: 2400, Known: true}))
}

func TestBytesAndRate(t *testing.T) {
	assert.Equal(t, "0 B", Bytes(0))
	assert.Equal(t, "1.5 KiB/s", Rate(1536))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "…", Truncate("abc", 1))
	assert.Equal(t, "abc", Truncate("abc", 0))
}

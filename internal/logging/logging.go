// Package logging configures the gommon loggers shared by every lsm component
// and by the echo server.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"
)

const header = `${time_rfc3339} ${level} [${prefix}] ${short_file}:${line}`

var (
	mu     sync.Mutex
	level  = log.INFO
	output io.Writer = os.Stderr
)

// ParseLevel maps a config string to a gommon level.
func ParseLevel(s string) (log.Lvl, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off", "none":
		return log.OFF, nil
	}
	return log.INFO, fmt.Errorf("unknown log level %q", s)
}

// Configure sets the level and output used by loggers created afterwards.
func Configure(lvl log.Lvl, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	level = lvl
	if w != nil {
		output = w
	}
}

// New returns a logger for one component.
func New(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	l := log.New(prefix)
	l.SetHeader(header)
	l.SetLevel(level)
	l.SetOutput(output)
	return l
}

// Discard returns a logger that writes nowhere. Used by tests and by the TUI
// when no log file is configured.
func Discard(prefix string) *log.Logger {
	l := log.New(prefix)
	l.SetOutput(io.Discard)
	l.SetLevel(log.OFF)
	return l
}

package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Florex0Real/linux-system-manager/internal/command"
	lsmerrors "github.com/Florex0Real/linux-system-manager/internal/errors"
	"github.com/Florex0Real/linux-system-manager/internal/logging"
	"github.com/Florex0Real/linux-system-manager/internal/metrics"
	"github.com/Florex0Real/linux-system-manager/internal/process"
	"github.com/Florex0Real/linux-system-manager/internal/scheduler"
)

type stubMetrics struct{}

func (stubMetrics) SampleAll(context.Context) metrics.Snapshot {
	return metrics.Snapshot{
		Identity: metrics.Ok(metrics.Identity{Hostname: "testhost", Kernel: "6.1.0"}),
		CPU:      metrics.Ok(metrics.CpuUsage{UsagePct: 12.5, Cores: 4}),
		Memory:   metrics.Ok(metrics.MemUsage{Total: 1 << 30, Used: 1 << 29, UsagePct: 50}),
		Disk:     metrics.Ok(metrics.DiskUsage{Path: "/", Total: 100, Used: 10, UsedPercent: 10}),
		Network:  metrics.Ok(metrics.NetUsage{BytesSent: 10, BytesRecv: 20}),
		Thermal:  metrics.Unavailable[[]metrics.Temperature]("thermal", assert.AnError),
	}
}

type stubProcesses struct {
	gotLimit int
}

func (p *stubProcesses) List(_ context.Context, limit int) ([]process.Record, error) {
	p.gotLimit = limit
	return []process.Record{
		{Pid: 42, Name: "<script>", CpuPct: 9.5, MemPct: 1.2, Status: "running"},
		{Pid: 7, Name: "sshd", CpuPct: 0.1, Status: "sleep"},
	}, nil
}

type fixture struct {
	server    *Server
	sched     *scheduler.Scheduler
	processes *stubProcesses
	dir       string
	killed    []int32

	mu  sync.Mutex
	now time.Time
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// publish moves the clock past the interval and collects, so subscribers
// get a new snapshot.
func (f *fixture) publish() *scheduler.Snapshot {
	f.mu.Lock()
	f.now = f.now.Add(2 * time.Hour)
	f.mu.Unlock()
	return f.sched.Collect(context.Background())
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	f := &fixture{processes: &stubProcesses{}, dir: dir, now: time.Now()}
	logger := logging.Discard("web")
	f.sched = scheduler.New(scheduler.Params{
		Interval:     time.Hour,
		ProcessLimit: DefaultProcessLimit,
		Path:         dir,
		Metrics:      stubMetrics{},
		Processes:    f.processes,
		Logger:       logger,
		Now:          f.clock,
	})
	f.server = NewServer(Params{
		Scheduler:      f.sched,
		Processes:      f.processes,
		Runner:         command.NewRunner("", logger),
		CommandTimeout: 5 * time.Second,
		Logger:         logger,
		Terminate: func(_ context.Context, pid int32) error {
			switch pid {
			case 1:
				return lsmerrors.New(lsmerrors.ErrCodePermission, "not allowed", "")
			case 99999:
				return lsmerrors.New(lsmerrors.ErrCodeNotFound, "no process", "")
			}
			f.killed = append(f.killed, pid)
			return nil
		},
	})
	return f
}

func (f *fixture) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRootRendersDashboard(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `sse-connect="/api/metrics/sse"`)
	assert.Contains(t, rec.Body.String(), title)
}

func TestSnapshotBeforeFirstCollect(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/snapshot", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSnapshotReturnsLatest(t *testing.T) {
	f := newFixture(t)
	snap := f.sched.Collect(context.Background())

	rec := f.do(http.MethodGet, "/api/snapshot", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Seq     uint64 `json:"seq"`
		Metrics struct {
			Identity struct {
				Value struct {
					Hostname string `json:"hostname"`
				} `json:"value"`
			} `json:"identity"`
			Thermal struct {
				Error string `json:"error"`
			} `json:"thermal"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, snap.Seq, body.Seq)
	assert.Equal(t, "testhost", body.Metrics.Identity.Value.Hostname)
	assert.Contains(t, body.Metrics.Thermal.Error, "thermal unavailable")
}

func TestProcessesDefaultAndExplicitLimit(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/processes", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DefaultProcessLimit, f.processes.gotLimit)

	var records []process.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 2)

	rec = f.do(http.MethodGet, "/api/processes?limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, f.processes.gotLimit)

	rec = f.do(http.MethodGet, "/api/processes?limit=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTerminate(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/processes/1234/terminate", http.StatusNoContent},
		{"/api/processes/99999/terminate", http.StatusNotFound},
		{"/api/processes/1/terminate", http.StatusForbidden},
		{"/api/processes/abc/terminate", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := f.do(http.MethodPost, tt.target, "", "")
		assert.Equal(t, tt.want, rec.Code, tt.target)
	}
	assert.Equal(t, []int32{1234}, f.killed)
}

func TestFiles(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/files?path="+f.dir, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body directoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, f.dir, body.Path)
	assert.Equal(t, filepath.Dir(f.dir), body.Parent)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "sub", body.Entries[0].Name)
	assert.Equal(t, "notes.txt", body.Entries[1].Name)

	rec = f.do(http.MethodGet, "/api/files?path="+filepath.Join(f.dir, "missing"), "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommand(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/command", "application/json", `{"command":"echo hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res command.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Success)

	rec = f.do(http.MethodPost, "/api/command", "application/json", `{"command":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommandHTMLEscapesOutput(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"command": {`printf '%s\n' '<b>'`}}.Encode()
	rec := f.do(http.MethodPost, "/api/command/html", "application/x-www-form-urlencoded", form)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "&lt;b&gt;\n")
	assert.NotContains(t, body, "<b>")
	assert.Contains(t, body, "[exit 0]")
}

func TestCommandOutputMarksTimeout(t *testing.T) {
	var buf strings.Builder
	res := command.Result{ExitCode: -1, TimedOut: true}
	require.NoError(t, CommandOutput("sleep 60", res, 10*time.Second).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "[timed out after 10s]")
	assert.NotContains(t, buf.String(), "[exit -1]")

	buf.Reset()
	res = command.Result{ExitCode: 2, Stderr: "boom"}
	require.NoError(t, CommandOutput("false", res, 10*time.Second).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "[exit 2]")
	assert.Contains(t, buf.String(), `<span class="error">boom</span>`)
}

func TestCommandHTMLTimeout(t *testing.T) {
	f := newFixture(t)
	f.server.commandTimeout = 100 * time.Millisecond

	form := url.Values{"command": {"sleep 20"}}.Encode()
	rec := f.do(http.MethodPost, "/api/command/html", "application/x-www-form-urlencoded", form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[timed out after 100ms]")
}

func TestCrossOriginMutationsAreRefused(t *testing.T) {
	f := newFixture(t)

	targets := []struct {
		path, contentType, body string
	}{
		{"/api/command", "application/json", `{"command":"touch /tmp/x"}`},
		{"/api/command/html", "application/x-www-form-urlencoded", "command=id"},
		{"/api/processes/1234/terminate", "", ""},
	}
	headers := []map[string]string{
		{"Sec-Fetch-Site": "cross-site"},
		{"Origin": "http://evil.example"},
	}
	for _, tt := range targets {
		for _, h := range headers {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			for k, v := range h {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			f.server.Handler().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code, "%s with %v", tt.path, h)
		}
	}
	assert.Empty(t, f.killed)
}

func TestSameOriginMutationsAreAllowed(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/processes/1234/terminate", nil)
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/processes/1235/terminate", nil)
	req.Header.Set("Origin", "http://"+req.Host)
	rec = httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, []int32{1234, 1235}, f.killed)
}

func TestMetricsDisplayEscapesProcessNames(t *testing.T) {
	f := newFixture(t)
	snap := f.sched.Collect(context.Background())

	var buf strings.Builder
	require.NoError(t, MetricsDisplay(snap).Render(context.Background(), &buf))
	html := buf.String()

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "testhost")
	assert.Contains(t, html, "thermal unavailable")
	assert.Contains(t, html, "notes.txt")
}

func TestSSEStreamsSnapshots(t *testing.T) {
	f := newFixture(t)
	f.sched.Collect(context.Background())
	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/metrics/sse", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			events = append(events, strings.TrimPrefix(line, "event: "))
		}
		if strings.HasPrefix(line, "data: ") && len(events) == 2 {
			assert.Contains(t, line, "testhost")
			break
		}
	}
	assert.Equal(t, []string{"connected", "metrics"}, events)
}

func TestWebsocketStreamsSnapshots(t *testing.T) {
	f := newFixture(t)
	first := f.sched.Collect(context.Background())

	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg struct {
		Seq uint64 `json:"seq"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, first.Seq, msg.Seq)

	// The handler subscribes after upgrading; keep publishing until a newer
	// snapshot arrives.
	got := make(chan uint64, 1)
	go func() {
		var next struct {
			Seq uint64 `json:"seq"`
		}
		if err := conn.ReadJSON(&next); err == nil {
			got <- next.Seq
		}
	}()
	deadline := time.After(5 * time.Second)
	for {
		f.publish()
		select {
		case seq := <-got:
			assert.Greater(t, seq, first.Seq)
			return
		case <-deadline:
			t.Fatal("no websocket update")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestSSEWaitsForScheduler(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/metrics/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	require.Equal(t, "event: connected", <-lines)
	// Give the handler time to misbehave before checking it did not collect.
	time.Sleep(100 * time.Millisecond)
	assert.Nil(t, f.sched.Latest(), "a stream must not trigger a collection")

	f.sched.Collect(context.Background())
	for line := range lines {
		if strings.HasPrefix(line, "data: ") && strings.Contains(line, "testhost") {
			assert.Contains(t, line, "Snapshot #1 ")
			return
		}
	}
	t.Fatal("stream ended without a snapshot")
}

func TestWebsocketRejectsForeignOrigin(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// racingSource publishes a snapshot between Subscribe and Latest, so the
// same snapshot is both the latest and waiting on the channel.
type racingSource struct {
	snaps []*scheduler.Snapshot
	ch    chan *scheduler.Snapshot
}

func (r *racingSource) Latest() *scheduler.Snapshot { return r.snaps[0] }

func (r *racingSource) Subscribe() (<-chan *scheduler.Snapshot, func()) {
	r.ch = make(chan *scheduler.Snapshot, len(r.snaps))
	for _, s := range r.snaps {
		r.ch <- s
	}
	close(r.ch)
	return r.ch, func() {}
}

func (r *racingSource) Run(context.Context) {}

func TestFollowSendsEachSnapshotOnce(t *testing.T) {
	first := &scheduler.Snapshot{Seq: 4}
	second := &scheduler.Snapshot{Seq: 5}
	src := &racingSource{snaps: []*scheduler.Snapshot{first, first, second, first}}
	s := NewServer(Params{Scheduler: src, Logger: logging.Discard("web")})

	var got []uint64
	err := s.follow(context.Background(), nil, func(snap *scheduler.Snapshot) error {
		got = append(got, snap.Seq)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 5}, got)
}

func TestFollowStopsOnSendError(t *testing.T) {
	src := &racingSource{snaps: []*scheduler.Snapshot{{Seq: 1}, {Seq: 2}}}
	s := NewServer(Params{Scheduler: src, Logger: logging.Discard("web")})

	calls := 0
	err := s.follow(context.Background(), nil, func(*scheduler.Snapshot) error {
		calls++
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

// Package web serves the dashboard and a JSON API over the shared scheduler.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/Florex0Real/linux-system-manager/internal/command"
	"github.com/Florex0Real/linux-system-manager/internal/process"
	"github.com/Florex0Real/linux-system-manager/internal/scheduler"
)

const DefaultProcessLimit = 50

// Source is the part of the scheduler the server reads from. Handlers never
// collect; Run is the only writer.
type Source interface {
	Latest() *scheduler.Snapshot
	Subscribe() (<-chan *scheduler.Snapshot, func())
	Run(ctx context.Context)
}

type Params struct {
	Scheduler      Source
	Processes      scheduler.ProcessSource
	Runner         *command.Runner
	CommandTimeout time.Duration
	ProcessLimit   int
	Logger         *log.Logger
	// Terminate defaults to process.Terminate.
	Terminate func(ctx context.Context, pid int32) error
}

type Server struct {
	echo           *echo.Echo
	sched          Source
	processes      scheduler.ProcessSource
	runner         *command.Runner
	commandTimeout time.Duration
	processLimit   int
	terminate      func(ctx context.Context, pid int32) error
	logger         *log.Logger
}

func NewServer(p Params) *Server {
	s := &Server{
		echo:           echo.New(),
		sched:          p.Scheduler,
		processes:      p.Processes,
		runner:         p.Runner,
		commandTimeout: p.CommandTimeout,
		processLimit:   p.ProcessLimit,
		terminate:      p.Terminate,
		logger:         p.Logger,
	}
	if s.processLimit <= 0 {
		s.processLimit = DefaultProcessLimit
	}
	if s.terminate == nil {
		s.terminate = process.Terminate
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	if s.logger != nil {
		e.Logger = s.logger
	}
	e.Use(middleware.Recover())
	e.Use(sameOrigin())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Debugf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.GET("/", s.rootHandler)
	e.GET("/api/snapshot", s.snapshotHandler)
	e.GET("/api/metrics/sse", s.apiMetricsSSEHandler)
	e.GET("/api/ws", s.wsHandler)
	e.GET("/api/processes", s.processesHandler)
	e.POST("/api/processes/:pid/terminate", s.terminateHandler)
	e.GET("/api/files", s.filesHandler)
	e.POST("/api/command", s.commandHandler)
	e.POST("/api/command/html", s.commandHTMLHandler)
	return s
}

// sameOrigin refuses state-changing requests that a browser marks as coming
// from another site. Requests without Sec-Fetch-Site or Origin, such as
// curl, are let through.
func sameOrigin() echo.MiddlewareFunc {
	cop := http.NewCrossOriginProtection()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := cop.Check(c.Request()); err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "cross-origin request refused").SetInternal(err)
			}
			return next(c)
		}
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start collects in the background and serves on addr until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.sched.Run(runCtx)

	errCh := make(chan error, 1)
	go func() {
		s.echo.Logger.Infof("listening on %s", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

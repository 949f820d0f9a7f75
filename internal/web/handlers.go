package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	lsmerrors "github.com/Florex0Real/linux-system-manager/internal/errors"
	"github.com/Florex0Real/linux-system-manager/internal/files"
	"github.com/Florex0Real/linux-system-manager/internal/scheduler"
)

const title = "Linux System Manager"

type commandRequest struct {
	Command string `json:"command" form:"command"`
}

type directoryResponse struct {
	Path    string        `json:"path"`
	Parent  string        `json:"parent"`
	Entries []files.Entry `json:"entries"`
}

func (s *Server) rootHandler(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return Index(title).Render(c.Request().Context(), c.Response().Writer)
}

func (s *Server) snapshotHandler(c echo.Context) error {
	snap := s.sched.Latest()
	if snap == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no snapshot collected yet")
	}
	return c.JSON(http.StatusOK, snap)
}

func (s *Server) apiMetricsSSEHandler(c echo.Context) error {
	c.Logger().Infof("SSE request received from %s", c.Request().RemoteAddr)

	// Set headers for SSE
	resp := c.Response()
	resp.Header().Set("Content-Type", "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	fmt.Fprintf(resp.Writer, "event: connected\ndata: Connected to metrics stream\n\n")
	resp.Flush()

	err := s.follow(c.Request().Context(), nil, func(snap *scheduler.Snapshot) error {
		return s.sendMetricsUpdate(c, snap)
	})
	if err != nil {
		c.Logger().Debugf("error sending metrics update: %v", err)
	}
	c.Logger().Info("Client disconnected")
	return nil
}

func (s *Server) sendMetricsUpdate(c echo.Context, snap *scheduler.Snapshot) error {
	var buf strings.Builder
	if err := MetricsDisplay(snap).Render(c.Request().Context(), &buf); err != nil {
		return err
	}
	htmlContent := strings.ReplaceAll(buf.String(), "\n", " ")

	resp := c.Response()
	if _, err := fmt.Fprintf(resp.Writer, "event: metrics\ndata: %s\n\n", htmlContent); err != nil {
		return err
	}
	resp.Flush()
	return nil
}

func (s *Server) processesHandler(c echo.Context) error {
	limit := s.processLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
		}
		limit = n
	}
	records, err := s.processes.List(c.Request().Context(), limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) terminateHandler(c echo.Context) error {
	pid, err := strconv.ParseInt(c.Param("pid"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid pid %q", c.Param("pid")))
	}
	if err := s.terminate(c.Request().Context(), int32(pid)); err != nil {
		return httpError(err)
	}
	c.Logger().Infof("sent SIGTERM to %d", pid)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) filesHandler(c echo.Context) error {
	path := files.Resolve(c.QueryParam("path"))
	entries, err := files.List(path)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, directoryResponse{
		Path:    path,
		Parent:  files.Parent(path),
		Entries: entries,
	})
}

func (s *Server) commandHandler(c echo.Context) error {
	var req commandRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Command) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "command is required")
	}
	res := s.runner.Run(c.Request().Context(), req.Command, s.commandTimeout)
	return c.JSON(http.StatusOK, res)
}

func (s *Server) commandHTMLHandler(c echo.Context) error {
	var req commandRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res := s.runner.Run(c.Request().Context(), req.Command, s.commandTimeout)
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return CommandOutput(req.Command, res, s.commandTimeout).
		Render(c.Request().Context(), c.Response().Writer)
}

func httpError(err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, lsmerrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, lsmerrors.ErrPermission):
		status = http.StatusForbidden
	case errors.Is(err, lsmerrors.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	return echo.NewHTTPError(status, err.Error()).SetInternal(err)
}

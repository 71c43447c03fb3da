package rest

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/servo-mc/servo/internal/domain/server"
	"github.com/servo-mc/servo/internal/logger"
	"github.com/servo-mc/servo/internal/registry"
	"github.com/servo-mc/servo/internal/service/downloader"
	"github.com/servo-mc/servo/internal/service/servers"
)

// Service abstracts the server operations the transport layer depends on.
type Service interface {
	Get(ctx context.Context, name string) (*server.Config, error)
	List(ctx context.Context) ([]*server.Config, error)
	Describe(ctx context.Context, name string) (*servers.Status, error)
	NeedsRefresh(ctx context.Context, cfg *server.Config) bool
	Refresh(ctx context.Context, cfg *server.Config, progress downloader.ProgressFunc) error
	Launch(ctx context.Context, cfg *server.Config, stdio servers.Stdio) (*servers.Process, error)
}

// Handler serves the server endpoints.
type Handler struct {
	// service provides the server operations.
	service Service
	// stdio is handed to every launched server.
	stdio servers.Stdio
	// background tracks asynchronous refresh-and-launch jobs.
	background sync.WaitGroup
}

// NewHandler wires the provided service into HTTP handlers.
func NewHandler(service Service, stdio servers.Stdio) *Handler {
	return &Handler{
		service: service,
		stdio:   stdio,
	}
}

// ServerView is the JSON shape of one server.
type ServerView struct {
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	Kind            string   `json:"kind"`
	ExtraJavaArgs   []string `json:"extra_java_args"`
	ExtraServerArgs []string `json:"extra_server_args"`
	CachedBuild     *int     `json:"cached_build,omitempty"`
	Running         bool     `json:"running"`
	PID             int      `json:"pid,omitempty"`
}

// LaunchView is the JSON shape of a launch result.
type LaunchView struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	PID     int    `json:"pid,omitempty"`
}

// Launch statuses.
const (
	StatusLaunched   = "launched"
	StatusRefreshing = "refreshing"
)

// GetServer handles GET /server/:name.
func (h *Handler) GetServer(c *gin.Context) {
	status, err := h.service.Describe(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)

		return
	}

	view := toServerView(status.Config)
	view.CachedBuild = status.CachedBuild
	view.Running = status.Running
	view.PID = status.PID

	succeed(c, http.StatusOK, view)
}

// ListServers handles GET /server.
func (h *Handler) ListServers(c *gin.Context) {
	configs, err := h.service.List(c.Request.Context())
	if err != nil {
		fail(c, err)

		return
	}

	views := make([]ServerView, 0, len(configs))
	for _, cfg := range configs {
		views = append(views, toServerView(cfg))
	}

	succeed(c, http.StatusOK, views)
}

// StartServer handles GET /server/:name/start.
func (h *Handler) StartServer(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	cfg, err := h.service.Get(ctx, name)
	if err != nil {
		fail(c, err)

		return
	}

	if h.service.NeedsRefresh(ctx, cfg) {
		// The job outlives the request.
		background := context.WithoutCancel(ctx)

		h.background.Go(func() {
			h.refreshAndLaunch(background, cfg)
		})

		succeed(c, http.StatusAccepted, LaunchView{Name: name, Status: StatusRefreshing})

		return
	}

	process, err := h.service.Launch(ctx, cfg, h.stdio)
	if err != nil {
		fail(c, err)

		return
	}

	h.reap(ctx, process)

	succeed(c, http.StatusOK, LaunchView{
		Name:    name,
		Status:  StatusLaunched,
		Version: process.Version.String(),
		PID:     process.PID,
	})
}

// Wait blocks until every background job has finished.
func (h *Handler) Wait() {
	h.background.Wait()
}

func (h *Handler) refreshAndLaunch(ctx context.Context, cfg *server.Config) {
	if err := h.service.Refresh(ctx, cfg, nil); err != nil {
		logger.ErrorKV(ctx, "Background refresh failed", "name", cfg.Name, "error", err)

		return
	}

	process, err := h.service.Launch(ctx, cfg, h.stdio)
	if err != nil {
		logger.ErrorKV(ctx, "Background launch failed", "name", cfg.Name, "error", err)

		return
	}

	h.reap(ctx, process)
}

// reap waits for the process in the background so it never lingers as a zombie.
func (h *Handler) reap(ctx context.Context, process *servers.Process) {
	ctx = context.WithoutCancel(ctx)

	go func() {
		err := process.Wait()
		logger.InfoKV(ctx, "Server exited", "name", process.Name, "pid", process.PID, "error", err)
	}()
}

func toServerView(cfg *server.Config) ServerView {
	return ServerView{
		Name:            cfg.Name,
		Version:         cfg.Version.String(),
		Kind:            cfg.Kind.Name(),
		ExtraJavaArgs:   cfg.ExtraJavaArgs,
		ExtraServerArgs: cfg.ExtraServerArgs,
	}
}

func succeed(c *gin.Context, status int, payload any) {
	c.JSON(status, gin.H{"success": true, "payload": payload})
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if isNotFound(err) {
		status = http.StatusNotFound
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{"success": false, "payload": err.Error()})
}

func isNotFound(err error) bool {
	return errors.Is(err, servers.ErrServerNotFound) ||
		errors.Is(err, servers.ErrVersionMismatch) ||
		errors.Is(err, registry.ErrNotFound)
}

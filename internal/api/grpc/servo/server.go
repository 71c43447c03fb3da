package servo

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

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
	Refresh(ctx context.Context, cfg *server.Config, progress downloader.ProgressFunc) error
	Launch(ctx context.Context, cfg *server.Config, stdio servers.Stdio) (*servers.Process, error)
}

// Server implements servo.v1.ServerService.
type Server struct {
	// service provides the server operations.
	service Service
	// stdio is handed to every launched server.
	stdio servers.Stdio
}

var _ ServerServiceServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service, stdio servers.Stdio) *Server {
	return &Server{
		service: service,
		stdio:   stdio,
	}
}

// GetServer describes one server.
func (s *Server) GetServer(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "server name is required")
	}

	st, err := s.service.Describe(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	fields := configFields(st.Config)
	fields["running"] = st.Running

	if st.CachedBuild != nil {
		fields["cached_build"] = *st.CachedBuild
	}

	if st.PID > 0 {
		fields["pid"] = st.PID
	}

	return newStruct(fields)
}

// ListServers describes every server.
func (s *Server) ListServers(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	configs, err := s.service.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(configs))}

	for _, cfg := range configs {
		item, err := newStruct(configFields(cfg))
		if err != nil {
			return nil, err
		}

		list.Values = append(list.Values, structpb.NewStructValue(item))
	}

	return list, nil
}

// StartServer refreshes the artifact when stale and launches the server.
// Unlike the REST endpoint the refresh happens before the reply.
func (s *Server) StartServer(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "server name is required")
	}

	cfg, err := s.service.Get(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	if err = s.service.Refresh(ctx, cfg, nil); err != nil {
		return nil, toStatus(err)
	}

	process, err := s.service.Launch(ctx, cfg, s.stdio)
	if err != nil {
		return nil, toStatus(err)
	}

	background := context.WithoutCancel(ctx)

	go func() {
		err := process.Wait()
		logger.InfoKV(background, "Server exited", "name", process.Name, "pid", process.PID, "error", err)
	}()

	return newStruct(map[string]any{
		"name":    process.Name,
		"status":  "launched",
		"version": process.Version.String(),
		"pid":     process.PID,
	})
}

func configFields(cfg *server.Config) map[string]any {
	return map[string]any{
		"name":              cfg.Name,
		"version":           cfg.Version.String(),
		"kind":              cfg.Kind.Name(),
		"extra_java_args":   toAnyList(cfg.ExtraJavaArgs),
		"extra_server_args": toAnyList(cfg.ExtraServerArgs),
	}
}

func toAnyList(values []string) []any {
	list := make([]any, 0, len(values))
	for _, value := range values {
		list = append(list, value)
	}

	return list
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	result, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode reply: %v", err))
	}

	return result, nil
}

// toStatus maps domain errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, servers.ErrServerNotFound),
		errors.Is(err, servers.ErrVersionMismatch),
		errors.Is(err, registry.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

package integration

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpcapi "github.com/servo-mc/servo/internal/api/grpc/servo"
	"github.com/servo-mc/servo/internal/api/rest"
	"github.com/servo-mc/servo/internal/service/servers"
)

// listen reserves a loopback listener.
func listen(t *testing.T) net.Listener {
	t.Helper()

	lc := net.ListenConfig{}

	lis, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	return lis
}

// TestAPIs_ServeTheSameServers runs both APIs over TCP against one environment.
//
//nolint:paralleltest // gin mode is process-wide.
func TestAPIs_ServeTheSameServers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	env := newEnvironment(t)
	ctx, cancel := context.WithCancel(context.Background())

	env.registry.SetBuilds("paper", "1.12.2", 1620)

	_, err := env.app.Servers.Create(ctx, "myserver", "1.12.2", servers.CreateOptions{})
	require.NoError(t, err)

	httpListener := listen(t)
	grpcListener := listen(t)
	errs := make(chan error, 2)
	handler := rest.NewHandler(env.app.Servers, servers.Stdio{})

	go func() {
		errs <- rest.Serve(ctx, httpListener, handler, rest.RouterOptions{
			Metrics:  env.app.Metrics.Handler(),
			Recorder: env.app.Metrics,
		})
	}()

	go func() {
		errs <- grpcapi.Serve(ctx, grpcListener, grpcapi.NewServer(env.app.Servers, servers.Stdio{}), env.app.Metrics)
	}()

	client, err := grpcapi.Dial(ctx, grpcListener.Addr().String(), grpcapi.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = client.Close()
	}()

	// REST: the server is listed.
	request, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"http://"+httpListener.Addr().String()+"/server", http.NoBody)
	require.NoError(t, err)

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)

	var body struct {
		Success bool              `json:"success"`
		Payload []rest.ServerView `json:"payload"`
	}

	require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
	require.NoError(t, response.Body.Close())
	require.True(t, body.Success)
	require.Len(t, body.Payload, 1)
	require.Equal(t, "myserver", body.Payload[0].Name)

	// gRPC: start downloads the artifact and launches.
	reply, err := client.StartServer(ctx, "myserver")
	require.NoError(t, err)
	require.Equal(t, "1.12.2-1620", reply.AsMap()["version"])
	require.Equal(t, 1, env.registry.TotalDownloads())

	described, err := client.GetServer(ctx, "myserver")
	require.NoError(t, err)
	require.InDelta(t, 1620, described.AsMap()["cached_build"], 0)

	_, err = client.GetServer(ctx, "ghost")
	require.Equal(t, codes.NotFound, status.Code(err))

	cancel()

	for range 2 {
		select {
		case err := <-errs:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("API did not stop")
		}
	}
}

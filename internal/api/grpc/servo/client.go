package servo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DefaultCallTimeout bounds calls that only read state.
const DefaultCallTimeout = 10 * time.Second

// Client calls servo.v1.ServerService.
type Client struct {
	// conn is the underlying gRPC connection.
	conn *grpc.ClientConn

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// dialOptions are appended to the insecure transport credentials.
	dialOptions []grpc.DialOption
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithDialOptions appends grpc.DialOption values used to build the connection.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial creates a client for the server at address.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{
		callTimeout: DefaultCallTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	dialOptions := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, client.dialOptions...)

	conn, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("dial servo server: %w", err)
	}

	client.conn = conn

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetServer describes one server.
func (c *Client) GetServer(ctx context.Context, name string) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, GetServerMethod, wrapperspb.String(name), out); err != nil {
		return nil, fmt.Errorf("get server %s: %w", name, err)
	}

	return out, nil
}

// ListServers describes every server.
func (c *Client) ListServers(ctx context.Context) (*structpb.ListValue, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	out := new(structpb.ListValue)
	if err := c.conn.Invoke(callCtx, ListServersMethod, &emptypb.Empty{}, out); err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}

	return out, nil
}

// StartServer launches a server. The call may include an artifact download,
// so it is bounded by ctx only.
func (c *Client) StartServer(ctx context.Context, name string) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, StartServerMethod, wrapperspb.String(name), out); err != nil {
		return nil, fmt.Errorf("start server %s: %w", name, err)
	}

	return out, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

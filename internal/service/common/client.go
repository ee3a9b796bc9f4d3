//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	api "github.com/oshokin/radio-bridge/internal/api/grpc/channel"
	"github.com/oshokin/radio-bridge/internal/config"
	"github.com/oshokin/radio-bridge/internal/version"
)

// Client wraps the MethodChannel gRPC client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the bridge.
	conn *grpc.ClientConn
	// api is the MethodChannel client.
	api api.MethodChannelClient
	// actor is sent with every call when set.
	actor *Actor

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
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

// WithActor identifies the caller on every call.
func WithActor(actor *Actor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errUnexpectedResult is returned when the bridge answers with an unexpected value type.
	errUnexpectedResult = errors.New("unexpected result type")
)

// Dial establishes a gRPC connection to the bridge.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUserAgent(version.UserAgent("radio-bridgectl")))
	if err != nil {
		return nil, fmt.Errorf("dial radio bridge: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewMethodChannelClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Call invokes channel/method and returns the decoded result.
func (c *Client) Call(ctx context.Context, channel, method string, arguments map[string]any) (any, error) {
	request, err := api.NewRequest(channel, method, arguments)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.Invoke(c.actor.outgoing(callCtx), request)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", channel, method, err)
	}

	return response.AsInterface(), nil
}

// RadioInfo returns the radio_info map of the handset.
func (c *Client) RadioInfo(ctx context.Context) (map[string]any, error) {
	return c.callMap(ctx, api.ChannelRadioInfo, api.MethodGetRadioInfo, nil)
}

// OpenTestingMenu opens the first testing menu route the handset accepts.
func (c *Client) OpenTestingMenu(ctx context.Context) error {
	return c.callAck(ctx, api.ChannelRadioInfo, api.MethodOpenTestingMenu, nil)
}

// PerformanceData returns the performance map of the handset.
func (c *Client) PerformanceData(ctx context.Context) (map[string]any, error) {
	return c.callMap(ctx, api.ChannelPerformance, api.MethodGetPerformanceData, nil)
}

// ApplyOptimization sets one optimization toggle.
func (c *Client) ApplyOptimization(ctx context.Context, setting string, enabled bool) error {
	return c.callAck(ctx, api.ChannelOptimization, api.MethodApplyOptimization, map[string]any{
		api.ArgSetting: setting,
		api.ArgValue:   enabled,
	})
}

// OptimizeAll turns every optimization toggle on.
func (c *Client) OptimizeAll(ctx context.Context) error {
	return c.callAck(ctx, api.ChannelOptimization, api.MethodOptimizeAll, nil)
}

// ResetOptimizations turns every optimization toggle off.
func (c *Client) ResetOptimizations(ctx context.Context) error {
	return c.callAck(ctx, api.ChannelOptimization, api.MethodResetOptimizations, nil)
}

// Optimizations returns the optimization toggles.
func (c *Client) Optimizations(ctx context.Context) (map[string]any, error) {
	return c.callMap(ctx, api.ChannelOptimization, api.MethodGetOptimizations, nil)
}

// StabilityMetrics returns the stability summary map.
func (c *Client) StabilityMetrics(ctx context.Context) (map[string]any, error) {
	return c.callMap(ctx, api.ChannelStability, api.MethodGetStabilityMetrics, nil)
}

// EnableStabilityMode starts a new stability session.
func (c *Client) EnableStabilityMode(ctx context.Context) error {
	return c.callAck(ctx, api.ChannelStability, api.MethodEnableStabilityMode, nil)
}

// DisableStabilityMode ends the stability session.
func (c *Client) DisableStabilityMode(ctx context.Context) error {
	return c.callAck(ctx, api.ChannelStability, api.MethodDisableStabilityMode, nil)
}

// RecordEvent reports a stability event; value is used by signal quality samples.
func (c *Client) RecordEvent(ctx context.Context, event string, value float64) error {
	return c.callAck(ctx, api.ChannelStability, api.MethodRecordEvent, map[string]any{
		api.ArgEvent: event,
		api.ArgValue: value,
	})
}

// callMap calls a method that answers with a map.
func (c *Client) callMap(ctx context.Context, channel, method string, arguments map[string]any) (map[string]any, error) {
	result, err := c.Call(ctx, channel, method, arguments)
	if err != nil {
		return nil, err
	}

	fields, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s/%s: %T: %w", channel, method, result, errUnexpectedResult)
	}

	return fields, nil
}

// callAck calls a method that answers with true.
func (c *Client) callAck(ctx context.Context, channel, method string, arguments map[string]any) error {
	result, err := c.Call(ctx, channel, method, arguments)
	if err != nil {
		return err
	}

	if ok, isBool := result.(bool); !isBool || !ok {
		return fmt.Errorf("%s/%s: %v: %w", channel, method, result, errUnexpectedResult)
	}

	return nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

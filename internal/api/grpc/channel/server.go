package channel

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/radio-bridge/internal/domain/optimization"
	"github.com/oshokin/radio-bridge/internal/domain/stability"
	"github.com/oshokin/radio-bridge/internal/logger"
)

// Metadata keys identifying the caller.
const (
	MetadataHostname = "x-radio-bridge-hostname"
	MetadataUsername = "x-radio-bridge-username"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	RadioInfo(ctx context.Context) (map[string]any, error)
	OpenTestingMenu(ctx context.Context) (string, error)
	PerformanceData(ctx context.Context) (map[string]any, error)
	ApplyOptimization(ctx context.Context, setting optimization.Setting, enabled bool) error
	OptimizeAll(ctx context.Context) error
	ResetOptimizations(ctx context.Context) error
	Optimizations(ctx context.Context) optimization.Settings
	StabilityMetrics(ctx context.Context) stability.Summary
	EnableStabilityMode(ctx context.Context)
	DisableStabilityMode(ctx context.Context)
	RecordEvent(ctx context.Context, kind stability.EventKind, value float64) error
}

// handler runs one method and returns a value convertible by structpb.NewValue.
type handler func(ctx context.Context, request *Request) (any, error)

// Server implements the MethodChannel gRPC API.
type Server struct {
	// service provides the business logic.
	service Service
	// routes maps channel and method names to handlers.
	routes map[string]map[string]handler
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	s := &Server{
		service: service,
	}

	s.routes = map[string]map[string]handler{
		ChannelRadioInfo: {
			MethodGetRadioInfo:    s.getRadioInfo,
			MethodOpenTestingMenu: s.openTestingMenu,
		},
		ChannelPerformance: {
			MethodGetPerformanceData: s.getPerformanceData,
		},
		ChannelOptimization: {
			MethodApplyOptimization:  s.applyOptimization,
			MethodOptimizeAll:        s.optimizeAll,
			MethodResetOptimizations: s.resetOptimizations,
			MethodGetOptimizations:   s.getOptimizations,
		},
		ChannelStability: {
			MethodGetStabilityMetrics:  s.getStabilityMetrics,
			MethodEnableStabilityMode:  s.enableStabilityMode,
			MethodDisableStabilityMode: s.disableStabilityMode,
			MethodRecordEvent:          s.recordEvent,
		},
	}

	return s
}

// Invoke dispatches one call to its channel and method.
func (s *Server) Invoke(ctx context.Context, in *structpb.Struct) (*structpb.Value, error) {
	request, err := ParseRequest(in)
	if err != nil {
		return nil, toStatus(err)
	}

	ctx = logger.WithKV(ctx, "channel", request.Channel, "method", request.Method)
	ctx = withCaller(ctx)

	run, ok := s.routes[request.Channel][request.Method]
	if !ok {
		logger.Warn(ctx, "Method not implemented")

		return nil, notImplemented(request)
	}

	result, err := run(ctx, request)
	if err != nil {
		return nil, toStatus(err)
	}

	value, err := structpb.NewValue(result)
	if err != nil {
		return nil, toStatus(fmt.Errorf("encode result: %w", err))
	}

	return value, nil
}

// withCaller adds the caller identity from the incoming metadata to the context logger.
func withCaller(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}

	hostname := md.Get(MetadataHostname)
	username := md.Get(MetadataUsername)

	if len(hostname) == 0 || len(username) == 0 {
		return ctx
	}

	return logger.WithFields(ctx,
		zap.String("caller_username", username[0]),
		zap.String("caller_hostname", hostname[0]))
}

func (s *Server) getRadioInfo(ctx context.Context, _ *Request) (any, error) {
	return s.service.RadioInfo(ctx)
}

func (s *Server) openTestingMenu(ctx context.Context, _ *Request) (any, error) {
	if _, err := s.service.OpenTestingMenu(ctx); err != nil {
		return nil, err
	}

	return true, nil
}

func (s *Server) getPerformanceData(ctx context.Context, _ *Request) (any, error) {
	return s.service.PerformanceData(ctx)
}

func (s *Server) applyOptimization(ctx context.Context, request *Request) (any, error) {
	name, err := request.StringArg(ArgSetting)
	if err != nil {
		return nil, err
	}

	setting, err := optimization.Parse(name)
	if err != nil {
		return nil, err
	}

	enabled, err := request.BoolArg(ArgValue)
	if err != nil {
		return nil, err
	}

	if err = s.service.ApplyOptimization(ctx, setting, enabled); err != nil {
		return nil, err
	}

	return true, nil
}

func (s *Server) optimizeAll(ctx context.Context, _ *Request) (any, error) {
	if err := s.service.OptimizeAll(ctx); err != nil {
		return nil, err
	}

	return true, nil
}

func (s *Server) resetOptimizations(ctx context.Context, _ *Request) (any, error) {
	if err := s.service.ResetOptimizations(ctx); err != nil {
		return nil, err
	}

	return true, nil
}

func (s *Server) getOptimizations(ctx context.Context, _ *Request) (any, error) {
	return s.service.Optimizations(ctx).Fields(), nil
}

func (s *Server) getStabilityMetrics(ctx context.Context, _ *Request) (any, error) {
	return s.service.StabilityMetrics(ctx).Fields(), nil
}

func (s *Server) enableStabilityMode(ctx context.Context, _ *Request) (any, error) {
	s.service.EnableStabilityMode(ctx)

	return true, nil
}

func (s *Server) disableStabilityMode(ctx context.Context, _ *Request) (any, error) {
	s.service.DisableStabilityMode(ctx)

	return true, nil
}

func (s *Server) recordEvent(ctx context.Context, request *Request) (any, error) {
	kind, err := request.StringArg(ArgEvent)
	if err != nil {
		return nil, err
	}

	value, err := request.OptionalNumberArg(ArgValue)
	if err != nil {
		return nil, err
	}

	if err = s.service.RecordEvent(ctx, stability.EventKind(kind), value); err != nil {
		return nil, err
	}

	return true, nil
}

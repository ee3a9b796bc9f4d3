package channel

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Channel names.
const (
	ChannelRadioInfo    = "radio_info"
	ChannelPerformance  = "performance"
	ChannelOptimization = "optimization"
	ChannelStability    = "stability"
)

// Method names.
const (
	MethodGetRadioInfo         = "getRadioInfo"
	MethodOpenTestingMenu      = "openTestingMenu"
	MethodGetPerformanceData   = "getPerformanceData"
	MethodApplyOptimization    = "applyOptimization"
	MethodOptimizeAll          = "optimizeAll"
	MethodResetOptimizations   = "resetOptimizations"
	MethodGetOptimizations     = "getOptimizations"
	MethodGetStabilityMetrics  = "getStabilityMetrics"
	MethodEnableStabilityMode  = "enableStabilityMode"
	MethodDisableStabilityMode = "disableStabilityMode"
	MethodRecordEvent          = "recordEvent"
)

// Request field names.
const (
	fieldChannel   = "channel"
	fieldMethod    = "method"
	fieldArguments = "arguments"
)

// Argument names.
const (
	ArgSetting = "setting"
	ArgValue   = "value"
	ArgEvent   = "event"
)

// ErrInvalidArgument is returned for malformed requests and arguments.
var ErrInvalidArgument = errors.New("invalid argument")

// Request is a decoded method channel call.
type Request struct {
	// Channel groups related methods, e.g. "radio_info".
	Channel string
	// Method is the operation within the channel.
	Method string
	// Arguments holds the call arguments; never nil after ParseRequest.
	Arguments *structpb.Struct
}

// NewRequest encodes a call. arguments may be nil.
func NewRequest(channel, method string, arguments map[string]any) (*structpb.Struct, error) {
	args, err := structpb.NewStruct(arguments)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldChannel:   structpb.NewStringValue(channel),
			fieldMethod:    structpb.NewStringValue(method),
			fieldArguments: structpb.NewStructValue(args),
		},
	}, nil
}

// ParseRequest decodes a call.
func ParseRequest(in *structpb.Struct) (*Request, error) {
	fields := in.GetFields()

	channel := fields[fieldChannel].GetStringValue()
	if channel == "" {
		return nil, fmt.Errorf("%s is required: %w", fieldChannel, ErrInvalidArgument)
	}

	method := fields[fieldMethod].GetStringValue()
	if method == "" {
		return nil, fmt.Errorf("%s is required: %w", fieldMethod, ErrInvalidArgument)
	}

	request := &Request{
		Channel:   channel,
		Method:    method,
		Arguments: new(structpb.Struct),
	}

	raw, ok := fields[fieldArguments]
	if !ok {
		return request, nil
	}

	switch kind := raw.GetKind().(type) {
	case *structpb.Value_StructValue:
		request.Arguments = kind.StructValue
	case *structpb.Value_NullValue:
	default:
		return nil, fmt.Errorf("%s must be an object: %w", fieldArguments, ErrInvalidArgument)
	}

	return request, nil
}

// StringArg returns the argument name as a string.
func (r *Request) StringArg(name string) (string, error) {
	value, ok := r.Arguments.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("argument %q is required: %w", name, ErrInvalidArgument)
	}

	s, ok := value.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string: %w", name, ErrInvalidArgument)
	}

	return s.StringValue, nil
}

// BoolArg returns the argument name as a boolean.
func (r *Request) BoolArg(name string) (bool, error) {
	value, ok := r.Arguments.GetFields()[name]
	if !ok {
		return false, fmt.Errorf("argument %q is required: %w", name, ErrInvalidArgument)
	}

	b, ok := value.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("argument %q must be a boolean: %w", name, ErrInvalidArgument)
	}

	return b.BoolValue, nil
}

// OptionalNumberArg returns the argument name as a number, or zero when absent.
func (r *Request) OptionalNumberArg(name string) (float64, error) {
	value, ok := r.Arguments.GetFields()[name]
	if !ok {
		return 0, nil
	}

	n, ok := value.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("argument %q must be a number: %w", name, ErrInvalidArgument)
	}

	return n.NumberValue, nil
}

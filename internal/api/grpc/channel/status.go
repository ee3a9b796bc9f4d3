package channel

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/radio-bridge/internal/device/adb"
	"github.com/oshokin/radio-bridge/internal/domain/fallback"
	"github.com/oshokin/radio-bridge/internal/domain/optimization"
	"github.com/oshokin/radio-bridge/internal/domain/stability"
)

// Keys of the failure trail attached to FailedPrecondition statuses.
const (
	detailFailures  = "failures"
	detailCandidate = "candidate"
	detailReason    = "reason"
)

// notImplemented reports an unknown channel or method.
func notImplemented(request *Request) error {
	return status.Errorf(codes.Unimplemented, "method %s/%s is not implemented", request.Channel, request.Method)
}

// toStatus maps service errors to gRPC statuses.
func toStatus(err error) error {
	var exhausted *fallback.ExhaustedError

	switch {
	case errors.As(err, &exhausted):
		return exhaustedStatus(exhausted)
	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, optimization.ErrUnknownSetting),
		errors.Is(err, stability.ErrUnknownEvent),
		errors.Is(err, stability.ErrInvalidSample):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, adb.ErrDevice):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// exhaustedStatus builds a FailedPrecondition status carrying the ordered failure trail.
func exhaustedStatus(exhausted *fallback.ExhaustedError) error {
	st := status.New(codes.FailedPrecondition, exhausted.Error())

	detail, err := FailureTrail(exhausted.Failures)
	if err != nil {
		return st.Err()
	}

	withDetails, err := st.WithDetails(detail)
	if err != nil {
		return st.Err()
	}

	return withDetails.Err()
}

// FailureTrail encodes failures as {"failures": [{"candidate", "reason"}, ...]}.
func FailureTrail(failures []fallback.Failure) (*structpb.Struct, error) {
	list := make([]any, 0, len(failures))

	for _, failure := range failures {
		list = append(list, map[string]any{
			detailCandidate: failure.Candidate,
			detailReason:    failure.Reason.Error(),
		})
	}

	detail, err := structpb.NewStruct(map[string]any{detailFailures: list})
	if err != nil {
		return nil, fmt.Errorf("encode failure trail: %w", err)
	}

	return detail, nil
}

// FailuresFromStatus decodes the failure trail attached to err, if any.
func FailuresFromStatus(err error) []fallback.Failure {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}

	var failures []fallback.Failure

	for _, detail := range st.Details() {
		trail, ok := detail.(*structpb.Struct)
		if !ok {
			continue
		}

		for _, item := range trail.GetFields()[detailFailures].GetListValue().GetValues() {
			fields := item.GetStructValue().GetFields()

			failures = append(failures, fallback.Failure{
				Candidate: fields[detailCandidate].GetStringValue(),
				Reason:    errors.New(fields[detailReason].GetStringValue()),
			})
		}
	}

	return failures
}

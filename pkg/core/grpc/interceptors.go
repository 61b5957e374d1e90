package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/msto63/termcore/pkg/core/logging"
)

type contextKey string

const (
	RequestIDKey    contextKey = "request_id"
	RequestIDHeader string     = "x-request-id"
)

// RecoveryInterceptor turns a handler panic into codes.Internal
func RecoveryInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer recoverInto(logger, info.FullMethod, &err)
		return handler(ctx, req)
	}
}

// StreamRecoveryInterceptor is RecoveryInterceptor for streams
func StreamRecoveryInterceptor(logger *logging.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer recoverInto(logger, info.FullMethod, &err)
		return handler(srv, ss)
	}
}

func recoverInto(logger *logging.Logger, method string, err *error) {
	if r := recover(); r != nil {
		logger.Error("gRPC panic recovered", "method", method, "panic", r, "stack", string(debug.Stack()))
		*err = status.Errorf(codes.Internal, "internal server error")
	}
}

// LoggingInterceptor logs each call with its outcome and duration
func LoggingInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(logger, ctx, info.FullMethod, start, err)
		return resp, err
	}
}

// StreamLoggingInterceptor is LoggingInterceptor for streams
func StreamLoggingInterceptor(logger *logging.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		logCall(logger, ss.Context(), info.FullMethod, start, err)
		return err
	}
}

// logCall logs server-side failures at warn, everything else at debug
func logCall(logger *logging.Logger, ctx context.Context, method string, start time.Time, err error) {
	code := status.Code(err)
	kv := []interface{}{
		"request_id", GetRequestID(ctx),
		"method", method,
		"status", code.String(),
		"duration", time.Since(start),
	}
	switch code {
	case codes.Internal, codes.Unavailable, codes.DataLoss, codes.Unknown:
		logger.Warn("gRPC call failed", append(kv, "error", err.Error())...)
	default:
		logger.Debug("gRPC call", kv...)
	}
}

// RequestIDInterceptor stores the caller's x-request-id, or a fresh one,
// in the handler context
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		return handler(withRequestID(ctx), req)
	}
}

// StreamRequestIDInterceptor is RequestIDInterceptor for streams
func StreamRequestIDInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return handler(srv, &requestIDStream{ServerStream: ss, ctx: withRequestID(ss.Context())})
	}
}

type requestIDStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *requestIDStream) Context() context.Context { return s.ctx }

func withRequestID(ctx context.Context) context.Context {
	id := incomingRequestID(ctx)
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, RequestIDKey, id)
}

// ClientRequestIDInterceptor forwards the context's request ID, or a fresh
// one, as outgoing metadata
func ClientRequestIDInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		id := GetRequestID(ctx)
		if id == "" {
			id = uuid.New().String()
		}
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, id)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// GetRequestID returns the request ID from ctx or its incoming metadata
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return incomingRequestID(ctx)
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(RequestIDHeader); len(values) > 0 {
		return values[0]
	}
	return ""
}

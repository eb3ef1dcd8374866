package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/qtrinova/eactranslator/internal/message"
	"github.com/qtrinova/eactranslator/internal/transport"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "eactranslator.v1.Translator"

// Full method names.
const (
	TranslateMethod = "/" + ServiceName + "/Translate"
	DispatchMethod  = "/" + ServiceName + "/Dispatch"
)

// TranslateRequest is the Translate input.
type TranslateRequest struct {
	Text      string `json:"text"`
	Direction string `json:"direction"`
	Tone      string `json:"tone,omitempty"`
}

// TranslateResponse is the Translate output.
type TranslateResponse struct {
	Output           string `json:"output"`
	Translation      string `json:"translation,omitempty"`
	Warning          string `json:"warning,omitempty"`
	DetectedLanguage string `json:"detected_language,omitempty"`
	Intermediate     string `json:"intermediate,omitempty"`
}

// TranslatorServer is the server side of the service.
type TranslatorServer interface {
	Translate(context.Context, *TranslateRequest) (*TranslateResponse, error)
	Dispatch(context.Context, *message.Message) (*message.DispatchResult, error)
}

// ServiceDesc describes the service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TranslatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Translate", Handler: translateHandler},
		{MethodName: "Dispatch", Handler: dispatchHandler},
	},
	Metadata: "eactranslator/v1/translator",
}

func translateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TranslateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TranslatorServer).Translate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TranslateMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(TranslatorServer).Translate(ctx, req.(*TranslateRequest))
	})
}

func dispatchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.Message)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TranslatorServer).Dispatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DispatchMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(TranslatorServer).Dispatch(ctx, req.(*message.Message))
	})
}

// Register adds the service, backed by handler, to s.
func Register(s *grpc.Server, handler transport.Handler) {
	s.RegisterService(&ServiceDesc, &service{handler: handler})
}

// service adapts a transport.Handler to TranslatorServer.
type service struct {
	handler transport.Handler
}

func (s *service) Translate(ctx context.Context, req *TranslateRequest) (*TranslateResponse, error) {
	msg := message.New("grpc", req.Text, req.Direction, req.Tone)
	msg.ResponseMode = message.ResponseModeText

	res, err := s.handler(ctx, msg)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TranslateResponse{
		Output:           res.Output,
		Translation:      res.Translation,
		Warning:          res.Warning,
		DetectedLanguage: res.DetectedLanguage,
		Intermediate:     res.Intermediate,
	}, nil
}

func (s *service) Dispatch(ctx context.Context, msg *message.Message) (*message.DispatchResult, error) {
	if msg.Source == "" {
		msg.Source = "grpc"
	}
	res, err := s.handler(ctx, msg)
	if err != nil {
		return nil, toStatus(err)
	}
	return res, nil
}

func toStatus(err error) error {
	if transport.IsInvalid(err) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

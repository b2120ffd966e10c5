package service

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"github.com/ilhambagus/pos-android-sdk/flow/appmessage"
	"github.com/ilhambagus/pos-android-sdk/internal/channel"
)

// RequestHandler processes one request payload arriving on a channel. The
// stage names which part of a flow is being processed. The handler must end
// the exchange through the communicator; if it returns without doing so, or
// fails, the hosting service synthesizes a failure on its behalf.
type RequestHandler func(ctx context.Context, comm *ClientCommunicator, payload string, stage string) error

// Service is the hosting layer for a flow or payment service: it owns the
// channel server, performs version checks and acknowledgement, and guarantees
// every channel sees exactly one terminal message even when the handler
// faults.
type Service struct {
	Addr string

	logger       *slog.Logger
	name         string
	internalData *appmessage.InternalData
	handler      RequestHandler
	server       *channel.Server
}

func New(logger *slog.Logger, name, addr string, handler RequestHandler) *Service {
	s := &Service{
		logger:       logger.With(slog.String("service", name)),
		name:         name,
		internalData: appmessage.NewInternalData(),
		handler:      handler,
	}
	s.server = channel.NewServer(s.logger, addr, s.handleRequest)
	return s
}

func (s *Service) Start() error {
	if err := s.server.Start(); err != nil {
		return fmt.Errorf("starting service %s: %w", s.name, err)
	}
	s.Addr = s.server.Addr
	return nil
}

func (s *Service) Close() error {
	return s.server.Close()
}

func (s *Service) handleRequest(ctx context.Context, ch *channel.Conn, request appmessage.AppMessage) {
	comm := newClientCommunicator(s.logger, ch, s.internalData)

	if !s.internalData.CompatibleWith(request.InternalData) {
		peer := "unknown"
		if request.InternalData != nil {
			peer = request.InternalData.APIVersion
		}
		s.logger.Error("rejecting incompatible peer", slog.String("peerVersion", peer))
		if err := comm.SendFailureAndEnd(appmessage.ErrorCodeVersionMismatch,
			fmt.Sprintf("peer version %s is not compatible with %s", peer, appmessage.APIVersion)); err != nil {
			s.logger.Error("sending version mismatch failure", "err", err)
		}
		return
	}

	if err := comm.SendAck(); err != nil {
		s.logger.Error("sending ack", "err", err)
		return
	}

	stage := request.InternalData.Flag(appmessage.FlagFlowStage)

	// The channel must see a terminal message on every exit path. A handler
	// fault is turned into a synthesized failure before teardown.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panicked", slog.Any("panic", r))
			if !comm.Terminated() {
				if err := comm.SendFailureAndEnd(appmessage.ErrorCodeUnexpectedError, fmt.Sprintf("internal fault: %v", r)); err != nil {
					s.logger.Error("sending fault failure", "err", err)
				}
			}
		}
	}()

	if err := s.handler(ctx, comm, request.Data(), stage); err != nil {
		s.logger.Error("handler failed", slog.String("stage", stage), "err", err)
		if !comm.Terminated() {
			if sendErr := comm.SendFailureAndEnd(appmessage.ErrorCodeUnexpectedError, err.Error()); sendErr != nil {
				s.logger.Error("sending handler failure", "err", sendErr)
			}
		}
		return
	}

	if !comm.Terminated() {
		s.logger.Error("handler returned without terminating the exchange", slog.String("stage", stage))
		if err := comm.SendFailureAndEnd(appmessage.ErrorCodeNoResponse, "service did not produce a response"); err != nil {
			s.logger.Error("sending no-response failure", "err", err)
		}
	}
}

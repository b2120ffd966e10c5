package channel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"golang.org/x/exp/slog"

	"github.com/ilhambagus/pos-android-sdk/flow/appmessage"
)

// Handler processes one incoming request message on its own channel. The
// channel is closed by the server when the handler returns.
type Handler func(ctx context.Context, ch *Conn, request appmessage.AppMessage)

// Server accepts one channel per incoming client connection and dispatches
// the opening request message to a handler.
type Server struct {
	Addr string

	logger  *slog.Logger
	addr    string
	handler Handler
	ln      net.Listener
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

func NewServer(logger *slog.Logger, addr string, handler Handler) *Server {
	return &Server{
		logger:  logger.With(slog.String("component", "channel-server")),
		addr:    addr,
		handler: handler,
	}
}

// Start begins accepting connections. The effective address, useful when
// binding to port 0, is published on s.Addr.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.ln = ln
	s.Addr = ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				if !errors.Is(err, net.ErrClosed) {
					s.logger.Error("accepting channel connection", "err", err)
				}
				return
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.serveConn(ctx, conn)
			}()
		}
	}()

	s.logger.Info("channel server started", slog.String("addr", s.Addr))
	return nil
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	ch := newConn(conn)
	defer ch.Close()

	request, err := ch.Receive()
	if err != nil {
		s.logger.Error("reading opening message", "err", err)
		return
	}
	if request.MessageType != appmessage.TypeRequest {
		s.logger.Error("unexpected opening message type", slog.String("type", request.MessageType))
		return
	}
	s.handler(ctx, ch, request)
}

// Close stops accepting connections and waits for in-flight channels.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	s.wg.Wait()
	return err
}

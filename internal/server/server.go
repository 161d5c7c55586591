package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/hmngo/wordchain/internal/protocol"
)

// Server owns the TCP listener and one read goroutine per connection.
type Server struct {
	addr       string
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// New creates a server that will bind addr when Serve is called.
func New(addr string, dispatcher *Dispatcher, logger *slog.Logger) *Server {
	return &Server{
		addr:       addr,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Addr returns the bound listen address. Valid once Serve has started;
// useful with an ":0" configured address.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled, then closes the
// listener and waits for the per-connection goroutines to drain.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("server listening", slog.String("addr", listener.Addr().String()))

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.logger.Warn("accept failed", slog.String("error", err.Error()))
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}

	s.wg.Wait()
	s.logger.Info("server stopped")
	return nil
}

// handleConn runs one connection's read loop. A clean close or read
// error ends the loop and triggers the disconnect cascade.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	cl := NewClient(conn)
	defer func() {
		s.dispatcher.Disconnect(ctx, cl)
		cl.Close()
	}()

	s.logger.Debug("connection accepted", slog.String("remote", cl.RemoteAddr()))

	for {
		msg, err := protocol.ReadFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				s.logger.Warn("read failed",
					slog.String("remote", cl.RemoteAddr()),
					slog.String("error", err.Error()),
				)
			}
			return
		}

		s.dispatcher.Handle(ctx, cl, msg)
	}
}

package bookstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
)

const listenerReadyTimeout = time.Second * 10

// Server is a running bookstore service.
type Server struct {
	server   *http.Server
	listener net.Listener
	done     chan error
}

// Start listens on addr, such as "127.0.0.1:7081" or ":0" for any free port, and serves the
// handler. It returns once the server is answering requests.
func Start(addr string, handler http.Handler, loggers ldlog.Loggers) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not listen on %s: %w", addr, err)
	}
	s := &Server{
		server: &http.Server{
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodHead && r.URL.Path == "/" {
					w.WriteHeader(200)
					return
				}
				handler.ServeHTTP(w, r)
			}),
			ReadHeaderTimeout: time.Second * 10,
		},
		listener: listener,
		done:     make(chan error, 1),
	}
	go func() {
		err := s.server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()

	if err := s.awaitListener(); err != nil {
		_ = s.server.Close()
		return nil, err
	}
	loggers.Infof("Bookstore listening at %s", s.URL())
	return s, nil
}

// awaitListener waits until the server is definitely accepting requests.
func (s *Server) awaitListener() error {
	client := &http.Client{Timeout: time.Second}
	deadline := time.NewTimer(listenerReadyTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Millisecond * 10)
	defer ticker.Stop()
	for {
		select {
		case <-deadline.C:
			return fmt.Errorf("could not detect own listener at %s", s.URL())
		case err := <-s.done:
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		case <-ticker.C:
			resp, err := client.Head(s.URL())
			if err == nil {
				_ = resp.Body.Close()
				if resp.StatusCode == 200 {
					return nil
				}
			}
		}
	}
}

// URL returns the base URL of the server, such as "http://127.0.0.1:7081".
func (s *Server) URL() string {
	return "http://" + s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for active requests to finish, or for ctx to
// be done.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return <-s.done
}

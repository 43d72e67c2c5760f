package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/uniteach/monitoria/api/handlers"
)

type (
	Options struct {
		Address        string
		Debug          bool
		DisableReqLogs bool
		Services       handlers.Services
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}, 1),
	}
	s.app.Debug = opts.Debug
	s.app.HideBanner = true
	handlers.API(s.app, opts.Services, opts.DisableReqLogs, s.signalShutdown)
	return s
}

// signalShutdown requests a graceful stop; safe to call more than once.
func (s *server) signalShutdown() {
	select {
	case s.shutdown <- struct{}{}:
	default:
	}
}

func (s *server) Start() error {
	errc := make(chan error, 1)
	go func() { errc <- s.app.Start(s.opts.Address) }()

	select {
	case err := <-errc:
		return err
	case <-s.shutdown:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.app.Shutdown(ctx)
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

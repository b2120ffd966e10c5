package fps

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	"github.com/ilhambagus/pos-android-sdk/discovery"
	"github.com/ilhambagus/pos-android-sdk/internal/middleware"
)

// App is the main application, it contains all the components of the flow
// processing service and is responsible for starting and stopping them.
type App struct {
	srv      *http.Server
	wg       *sync.WaitGroup
	Addr     string
	logger   *slog.Logger
	config   *Config
	registry *discovery.Registry
	fps      *Service
}

func NewApp(logger *slog.Logger, config *Config) *App {
	logger = logger.With(slog.String("app", "fps"))

	if config == nil {
		config = DefaultConfig()
	}

	return &App{
		wg:       &sync.WaitGroup{},
		logger:   logger,
		config:   config,
		registry: discovery.NewRegistry(logger),
	}
}

// Registry exposes the service registry so participating services can be
// registered before or after Start.
func (a *App) Registry() *discovery.Registry {
	return a.registry
}

// FPS exposes the orchestrator for callers embedding the app in-process.
func (a *App) FPS() *Service {
	return a.fps
}

func (a *App) Start() error {
	a.logger.Info("starting app...")

	flows, err := DefaultFlowConfigs()
	if err != nil {
		return fmt.Errorf("loading flow configs: %w", err)
	}

	a.fps = NewService(a.logger, a.registry, flows, a.config)

	router := chi.NewRouter()
	router.Use(middleware.NewStructuredLogger(a.logger))

	api := NewAPI(a.fps, a.registry)
	api.AppendRoutes(router)

	router.Get("/-/live", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	router.Get("/-/ready", func(w http.ResponseWriter, r *http.Request) {
		if len(a.registry.PaymentServices().All()) == 0 {
			http.Error(w, "no payment service registered", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	l, err := net.Listen("tcp", a.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening tcp port: %w", err)
	}

	a.Addr = l.Addr().String()

	a.srv = &http.Server{
		Handler: router,
	}

	a.wg.Add(1)
	go func() {
		a.logger.Info("http server started", slog.String("addr", a.Addr))

		if err := a.srv.Serve(l); err != nil {
			if err != http.ErrServerClosed {
				a.logger.Error("starting http server", "err", err)
			}

			a.logger.Info("http server stopped")
		}

		a.wg.Done()
	}()

	return nil
}

func (a *App) Shutdown() {
	a.logger.Info("shutting down app...")

	a.srv.Shutdown(context.Background())

	a.wg.Wait()

	a.logger.Info("app stopped")
}

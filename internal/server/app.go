// Package server wires the relay together: storage, services, the HTTP
// surface, the gRPC health listener and the metrics listener. It also owns
// signal handling and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/mailrelay/internal/logging"
	"github.com/dmitrijs2005/mailrelay/internal/mailtm"
	"github.com/dmitrijs2005/mailrelay/internal/server/config"
	"github.com/dmitrijs2005/mailrelay/internal/server/httpapi"
	"github.com/dmitrijs2005/mailrelay/internal/server/metrics"
	"github.com/dmitrijs2005/mailrelay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mailrelay/internal/server/services"

	gs "github.com/dmitrijs2005/mailrelay/internal/server/grpc"
)

// ShutdownTimeout bounds how long in-flight HTTP requests may run after a
// stop signal.
const ShutdownTimeout = 30 * time.Second

type App struct {
	config       *config.Config
	logger       logging.Logger
	repomanager  repomanager.RepositoryManager
	metrics      *metrics.Metrics
	userService  *services.UserService
	relayService *services.RelayService
}

// NewApp opens storage and builds the services. An empty DatabaseDSN selects
// the in-memory user store.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	var (
		rm  repomanager.RepositoryManager
		err error
	)
	if c.DatabaseDSN != "" {
		rm, err = repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
	} else {
		logger.Warn(ctx, "no database DSN configured, users are kept in memory")
		rm = repomanager.NewInMemoryRepositoryManager()
	}

	m := metrics.New()

	us := services.NewUserService(rm, c)
	rs := services.NewRelayService(
		services.NewCredentialResolver(rm),
		mailtm.NewFactory(c.ProviderBaseURL, c.ProviderTimeout),
		m,
		logger,
	)

	return &App{
		config:       c,
		logger:       logger,
		repomanager:  rm,
		metrics:      m,
		userService:  us,
		relayService: rs,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := httpapi.NewHandler(app.userService, app.relayService, app.config.Folders, app.metrics, app.logger)
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, h.Routes(), app.logger)

	if err := s.Run(ctx, ShutdownTimeout); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := metrics.NewServer(app.config.MetricsAddr, app.metrics, app.logger)

	if err := s.Run(ctx, ShutdownTimeout); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// listeners returns the start functions of the enabled listeners. An empty
// gRPC or metrics address disables that listener.
func (app *App) listeners() []func(context.Context, context.CancelFunc) {
	starts := []func(context.Context, context.CancelFunc){app.startHTTPServer}

	if app.config.EndpointAddrGRPC != "" {
		starts = append(starts, app.startGRPCServer)
	} else {
		app.logger.Info(context.Background(), "gRPC health listener disabled")
	}

	if app.config.MetricsAddr != "" {
		starts = append(starts, app.startMetricsServer)
	} else {
		app.logger.Info(context.Background(), "metrics listener disabled")
	}

	return starts
}

// Run blocks until a stop signal arrives or a listener fails, then waits
// for every listener to finish and closes storage.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	for _, start := range app.listeners() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(context.Background(), "closing storage", "error", err)
	}

	app.logger.Info(context.Background(), "App stopped")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger         *zap.Logger
	config         *Config
	server         *http.Server
	cleanups       []func()
	queueConsumers []func(context.Context) error
}

// storage gathers the collection backing the catalogue with what must
// run beside it and be released once the app stops.
type storage struct {
	collection Collection
	cleanups   []func()
	consumers  []func(context.Context) error
}

// NewApp provides an instance of App.
func NewApp(config *Config) (AppProvider, error) {
	var app *App
	// ensure the logs folder exists and Setup the logging module.
	err := os.MkdirAll(config.LogFolder, 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	clock := NewClock(config.IsProduction)
	logWriter := NewRSyncWriter(config, clock)
	logger, flusher := SetupLogging(config, logWriter, NewTickClock(clock))
	closer := func() {
		if err := flusher(); err != nil {
			fmt.Println("error during flushing of logs: ", err)
		}
		if cerr := logWriter.Close(); cerr != nil {
			fmt.Println("error during closing of log file: ", cerr)
		}
	}

	store, err := setupStorage(logger, &config.Storage)
	if err != nil {
		closer()
		return app, fmt.Errorf("failed to setup %s storage: %s", config.Storage.Backend, err)
	}

	library := NewLibrary(logger, &config.Catalog, store.collection)
	if err = autoload(logger, library, config.Catalog.Autoload); err != nil {
		for _, f := range store.cleanups {
			f()
		}
		closer()
		return app, err
	}

	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			backend:   config.Storage.Backend,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		NewIDsHandler(),
		library,
	)

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	// Build the map of middlewares stacks.
	middlewaresPublic, middlewaresOps := apiService.MiddlewaresStacks()

	// Configure the endpoints with their handlers and middlewares.
	router := apiService.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public: middlewaresPublic.Chain,
			ops:    middlewaresOps.Chain,
		},
	)
	// Wrap the router with the default http timeout handler. It fires a bit
	// after the request context deadline so handlers can answer first.
	routerWithTimeout := http.TimeoutHandler(
		router,
		config.Server.RequestTimeout+time.Second,
		"Timeout. Processing taking too long. Please reach out to support.")

	// Build the api server definition.
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        routerWithTimeout,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
		ConnContext:    SaveConnInContext,
	}

	return &App{
		logger:         logger,
		config:         config,
		server:         srv,
		cleanups:       append(store.cleanups, closer),
		queueConsumers: store.consumers,
	}, nil
}

// setupStorage builds the collection of the configured backend. With the
// redis backend and the mirror enabled, every change is also queued and
// replayed into a boltdb file by a consumer.
func setupStorage(logger *zap.Logger, config *StorageConfig) (*storage, error) {
	store := &storage{}
	switch config.Backend {
	case BackendMemory:
		store.collection = NewMemoryCollection(logger)

	case BackendBolt:
		boltDBClient, err := GetBoltDBClient(&config.BoltDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to boltDB server: %s", err)
		}
		store.collection = NewBoltCollection(logger, &config.BoltDB, boltDBClient)
		store.cleanups = append(store.cleanups, func() { _ = boltDBClient.Close() })

	case BackendRedis:
		redisClient, err := GetRedisClient(&config.Redis)
		if err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("failed to connect to redis server: %s", err)
		}
		store.cleanups = append(store.cleanups, func() { _ = redisClient.Close() })
		store.collection = NewRedisCollection(logger, redisClient, config.Redis.KeyPrefix)
		if !config.Mirror.Enable {
			break
		}

		boltDBClient, err := GetBoltDBClient(&config.BoltDB)
		if err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("failed to connect to boltDB mirror: %s", err)
		}
		store.cleanups = append(store.cleanups, func() { _ = boltDBClient.Close() })
		mirror := NewBoltCollection(logger, &config.BoltDB, boltDBClient)

		// Start the mirror from the current redis content.
		books, err := store.collection.List(context.Background())
		if err == nil {
			err = mirror.Reset(context.Background(), books)
		}
		if err != nil {
			_ = redisClient.Close()
			_ = boltDBClient.Close()
			return nil, fmt.Errorf("failed to sync boltDB mirror: %s", err)
		}

		queue := NewRedisQueue(redisClient, config.Mirror.Queue)
		store.collection = NewPublishingCollection(logger, store.collection, queue)
		store.consumers = append(store.consumers, NewMirrorConsumer(logger, queue, mirror).Consume)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, config.Backend)
	}
	return store, nil
}

// autoload fills the catalogue from the configured file if any. A missing
// file is not an error, the catalogue simply starts from the backend content.
func autoload(logger *zap.Logger, library LibraryProvider, name string) error {
	if name == "" {
		return nil
	}
	n, err := library.Load(context.Background(), name)
	if errors.Is(err, ErrFileNotFound) {
		logger.Warn("catalogue autoload file not found", zap.String("catalog.file", name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to autoload the catalogue from %s: %w", name, err)
	}
	logger.Info("catalogue autoloaded", zap.String("catalog.file", name), zap.Int("catalog.books", n))
	return nil
}

// Run starts the api web server and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.ConsumeQueues(gCtx, g))
	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		f()
	}
}

// Serve starts the api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
			zap.String("app.backend", app.config.Storage.Backend),
		)
		err := app.server.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. We explicitly return `nil` to
// allow the errorgroup catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("api server stopping. reason: requested to stop")
		} else {
			app.logger.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch err {
		case nil, http.ErrServerClosed:
			app.logger.Info("api server graceful shutdown succeeded")
		case context.DeadlineExceeded:
			app.logger.Info("api server graceful shutdown timed out")
		default:
			app.logger.Info("api server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && err != http.ErrServerClosed {
			app.logger.Info("api server going to force shutdown", zap.Error(app.server.Close()))
		}
		return nil
	}
}

// ConsumeQueues runs all queue consumers into separate controlled goroutines.
func (app *App) ConsumeQueues(gCtx context.Context, g *errgroup.Group) func() error {
	return func() error {
		for _, consume := range app.queueConsumers {
			f := func() error {
				return consume(gCtx)
			}
			g.Go(f)
		}
		return nil
	}
}

package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/campuscare/campuscare/internal/engine/config"
	"github.com/campuscare/campuscare/internal/engine/router"
	"github.com/campuscare/campuscare/internal/engine/service"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/metrics"
)

type App struct {
	HttpApp       *fiber.App
	MetricsServer *metrics.Server
	Services      *service.Services
	Logger        *log.Logger
	AppConf       *config.AppConfig
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string) (*App, func(), error)

func NewApp(
	rt *router.Router,
	logger *log.Logger,
	metricsServer *metrics.Server,
	services *service.Services,
	appConf *config.AppConfig,
) (*App, func(), error) {
	app := &App{
		HttpApp:       rt.Router(),
		MetricsServer: metricsServer,
		Services:      services,
		Logger:        logger,
		AppConf:       appConf,
	}

	config.OnChange(func(next config.AppConfig) {
		if next.Log.Level != appConf.Log.Level {
			logger.Log.Warnw("log level changes take effect after restart",
				"current", appConf.Log.Level,
				"configured", next.Log.Level,
			)
		}
	})

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Stop(ctx); err != nil {
			logger.Log.Errorw("metrics server shutdown failed", "error", err)
		}
		_ = log.Sync()
	}

	return app, cleanup, nil
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	// Wire build App (所有依赖都由 wire 自动注入)
	app, cleanup, err := initApp(configFile)
	if err != nil {
		return nil, nil, err
	}

	if seed := app.AppConf.Seed; seed.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Services.Auth.EnsureAdmin(ctx, seed); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	return app, cleanup, nil
}

// Run start app and wait for exit signal, then gracefully shutdown
func Run(app *App, cleanup func()) {
	logger := app.Logger.Log
	httpConf := app.AppConf.Http

	if err := app.MetricsServer.Start(); err != nil {
		logger.Errorw("metrics server failed to start", "error", err)
	}

	// set signal listener (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// start HTTP server (async)
	go func() {
		glog := logger.Desugar().WithOptions(zap.AddCallerSkip(-1)).Sugar()
		addr := httpConf.Addr()
		glog.Infow("HTTP listener started",
			"address", addr,
			"tls", httpConf.TLS.CertFile != "",
		)

		var err error
		if httpConf.TLS.CertFile != "" {
			err = app.HttpApp.ListenTLS(addr, httpConf.TLS.CertFile, httpConf.TLS.KeyFile)
		} else {
			err = app.HttpApp.Listen(addr)
		}
		if err != nil {
			glog.Errorw("HTTP listener failed",
				"address", addr,
				zap.Error(err),
			)
			quit <- syscall.SIGTERM
		}
	}()

	// wait for exit signal
	sig := <-quit
	logger.Infof("Received signal: %v, shutting down gracefully...", sig)

	// close HTTP server first so websocket clients are disconnected before the relay stops
	timeout := time.Duration(httpConf.ShutdownTimeout) * time.Second
	if err := app.HttpApp.ShutdownWithTimeout(timeout); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	} else {
		logger.Info("HTTP server shut down gracefully")
	}

	cleanup()

	logger.Info("Server shutdown complete")
}

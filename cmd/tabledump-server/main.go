package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tabledump/internal/handler"
	"tabledump/internal/middleware"
	"tabledump/internal/service"
	"tabledump/pkg/config"
	"tabledump/pkg/etcd"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	configPath = flag.String("config", "", "path to an ini config file")
	dbPath     = flag.String("db", "", "database file path (overrides config)")
	driver     = flag.String("driver", "", "database engine: sqlite or duckdb (overrides config)")
	port       = flag.String("port", "", "server port (overrides config)")
	debug      = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()

	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if env := os.Getenv("TABLEDUMP_DB"); env != "" {
		cfg.Database.Path = env
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *driver != "" {
		cfg.Database.Driver = *driver
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid config: %v", err)
	}

	logrus.Info("===========================================")
	logrus.Info("  tabledump inspection server")
	logrus.Info("===========================================")
	logrus.Infof("Database: %s (driver: %s)", cfg.Database.Path, cfg.Database.Driver)
	logrus.Infof("Port: %s", cfg.Server.Port)
	logrus.Infof("Cache Size: %.2f MB, TTL: %v", float64(cfg.Cache.MaxBytes)/(1024*1024), cfg.Cache.CacheTTL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dumper := service.NewDumper(service.Options{
		Driver:        cfg.Database.Driver,
		Path:          cfg.Database.Path,
		Tables:        cfg.Database.Tables,
		IncludeViews:  cfg.Database.IncludeViews,
		IncludeSystem: cfg.Database.IncludeSystem,
		MaxOpen:       cfg.Database.MaxOpen,
		MaxIdle:       cfg.Database.MaxIdle,
	})
	if err := dumper.Connect(ctx); err != nil {
		logrus.Fatalf("Failed to open database: %v", err)
	}
	defer dumper.Release()
	logrus.Info("Database connected")

	tableService := service.NewTableService(dumper, service.CacheOptions{
		MaxBytes: cfg.Cache.MaxBytes,
		TTL:      cfg.Cache.CacheTTL(),
	}, cfg.Server.MaxLimit)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.DefaultQPS, cfg.RateLimit.DefaultBurst)
	limiter.SetLimit(middleware.GroupTables, cfg.RateLimit.TablesQPS, cfg.RateLimit.TablesBurst)

	breaker := middleware.NewCircuitBreaker(cfg.Breaker.FailureThreshold, cfg.Breaker.OpenTimeout())

	router := handler.NewRouter(handler.NewTableHandler(tableService), limiter, breaker)
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// 配置了etcd时注册服务
	if endpoints := etcd.ParseEndpoints(cfg.Etcd.Endpoints); len(endpoints) > 0 {
		registrar, err := etcd.NewRegistrar(endpoints, cfg.Etcd.Prefix)
		if err != nil {
			logrus.Errorf("Failed to connect to etcd: %v", err)
		} else {
			defer registrar.Close()
			serviceAddr := cfg.Server.ServiceAddr
			if serviceAddr == "" {
				serviceAddr = "127.0.0.1:" + cfg.Server.Port
			}
			if err := registrar.Register(ctx, cfg.Server.ServiceName, serviceAddr, cfg.Etcd.TTL); err != nil {
				logrus.Errorf("Failed to register service: %v", err)
			} else {
				defer func() {
					deregCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := registrar.Deregister(deregCtx); err != nil {
						logrus.Warnf("Failed to deregister service: %v", err)
					}
				}()
			}
		}
	}

	go func() {
		logrus.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server shutdown error: %v", err)
	}

	logrus.Info("Server stopped")
}

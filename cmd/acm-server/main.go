// Package main provides the ACM standard registry server entry point.
// It hosts the editor, admin, and reporting API over one embedded or
// external database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang/glog"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/condmon/acm-registry/pkg/standard"
)

func main() {
	var (
		listenAddr string
		configPath string
		dbType     string
		dbDSN      string
	)

	flag.StringVar(&listenAddr, "listen", ":8080", "Address to listen on")
	flag.StringVar(&configPath, "config", "", "Path to optional YAML config file")
	flag.StringVar(&dbType, "db-type", "sqlite", "Database type (sqlite, postgres, or mysql)")
	flag.StringVar(&dbDSN, "db-dsn", "", "Database connection string (default acm.db for sqlite)")
	flag.Parse()

	// Initialize glog for startup fatals
	_ = flag.Set("logtostderr", "true")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Config file values fill in anything the flags left at defaults.
	if configPath != "" {
		v := viper.New()
		v.SetConfigFile(configPath)
		v.SetDefault("listen", listenAddr)
		v.SetDefault("database.type", dbType)
		v.SetDefault("database.dsn", dbDSN)
		if err := v.ReadInConfig(); err != nil {
			glog.Fatalf("Failed to read config file %s: %v", configPath, err)
		}
		listenAddr = v.GetString("listen")
		dbType = v.GetString("database.type")
		dbDSN = v.GetString("database.dsn")
		logger.Info("loaded config file", "path", configPath)
	}

	logger.Info("starting acm registry server",
		"listen", listenAddr,
		"dbType", dbType,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	gormDB, err := setupDatabase(dbType, dbDSN)
	if err != nil {
		glog.Fatalf("Failed to connect to database: %v", err)
	}

	store := standard.NewConfigStore(gormDB)
	if err := store.AutoMigrate(); err != nil {
		glog.Fatalf("Failed to migrate schema: %v", err)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-Principal", "X-User-Role"},
	}))
	router.Mount("/api/acm/v1", standard.NewRouter(store))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	logger.Info("acm registry server ready", "listen", listenAddr)

	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: router,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("acm registry server stopped")
}

func setupDatabase(dbType, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{}

	switch dbType {
	case "sqlite", "":
		if dsn == "" {
			dsn = "acm.db"
		}
		return gorm.Open(sqlite.Open(dsn), cfg)
	case "postgres":
		if dsn == "" {
			dsn = os.Getenv("DATABASE_DSN")
		}
		if dsn == "" {
			return nil, fmt.Errorf("database DSN is required for postgres (use -db-dsn or DATABASE_DSN)")
		}
		return gorm.Open(postgres.Open(dsn), cfg)
	case "mysql":
		if dsn == "" {
			dsn = os.Getenv("DATABASE_DSN")
		}
		if dsn == "" {
			return nil, fmt.Errorf("database DSN is required for mysql (use -db-dsn or DATABASE_DSN)")
		}
		return gorm.Open(mysql.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported database type %q (expected sqlite, postgres, or mysql)", dbType)
	}
}

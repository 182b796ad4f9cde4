package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"deepseek-gql/internal/config"
	"deepseek-gql/internal/deepseek"
	"deepseek-gql/internal/graphql"
	"deepseek-gql/internal/logging"
	"deepseek-gql/internal/metrics"
	"deepseek-gql/internal/redact"
	"deepseek-gql/internal/server"
)

func main() {
	configPath := flag.String("config", "", "YAML config path")
	listen := flag.String("listen", "", "Listen address (overrides server.listen)")
	envFile := flag.String("env-file", "", "Optional dotenv file to load before startup")
	logFormat := flag.String("log-format", "", "Log output format: auto, text, json")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	versionFlag := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *versionFlag {
		showVersion()
		return
	}

	logging.Setup(*logFormat, *logLevel, nil)

	if *envFile != "" {
		if err := loadEnvFile(*envFile); err != nil {
			slog.Error("env file error", "error", err)
			os.Exit(1)
		}
	}

	if err := run(*configPath, *listen, *logFormat, *logLevel); err != nil {
		slog.Error("deepseek-gql failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, listen, logFormat, logLevel string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}
	if logFormat == "" {
		logFormat = cfg.Logging.Format
	}
	if logLevel == "" {
		logLevel = cfg.Logging.Level
	}

	redactor := redact.New(cfg.Secrets()...)
	logger := logging.Setup(logFormat, logLevel, redactor)

	collector := metrics.NewCollector()
	client := deepseek.NewClient(cfg.Upstream, collector)
	exec, err := graphql.NewExecutor(graphql.ResolverFunc(client.Ask))
	if err != nil {
		return fmt.Errorf("build executor: %w", err)
	}
	handler := server.NewHandler(exec, server.Options{
		Logger:          logger,
		Metrics:         collector,
		Redactor:        redactor,
		MaxRequestBytes: cfg.Server.MaxRequestBytes,
	})

	servers := []*http.Server{{
		Addr:              cfg.Server.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		servers = append(servers, &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	logger.Info("deepseek-gql starting",
		"version", Version,
		"listen", cfg.Server.Listen,
		"metrics", cfg.Metrics.Listen,
		"upstream", cfg.Upstream.BaseURL,
		"model", cfg.Upstream.Model)

	serveErr := make(chan error, len(servers))
	for _, srv := range servers {
		go func(s *http.Server) {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("listen %s: %w", s.Addr, err)
			}
		}(srv)
	}

	return shutdownOnSignal(servers, serveErr)
}

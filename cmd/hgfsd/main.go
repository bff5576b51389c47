package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/invopop/jsonschema"

	"github.com/hgfsd/hgfsd/internal/dispatch"
	"github.com/hgfsd/hgfsd/internal/hostfs"
	"github.com/hgfsd/hgfsd/internal/logger"
	"github.com/hgfsd/hgfsd/internal/nameresolve"
	"github.com/hgfsd/hgfsd/internal/server"
	"github.com/hgfsd/hgfsd/internal/session"
	"github.com/hgfsd/hgfsd/internal/shareregistry"
	"github.com/hgfsd/hgfsd/internal/telemetry"
	"github.com/hgfsd/hgfsd/internal/transport"
	adminapi "github.com/hgfsd/hgfsd/pkg/adminapi"
	"github.com/hgfsd/hgfsd/pkg/config"
	"github.com/hgfsd/hgfsd/pkg/metrics"

	// Registers the Prometheus implementations of dispatch.Metrics and
	// server.Metrics with pkg/metrics at init time.
	_ "github.com/hgfsd/hgfsd/pkg/metrics/prometheus"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = `hgfsd - Host-Guest File System protocol server

Usage:
  hgfsd <command> [flags]

Commands:
  init     Write a sample configuration file
  start    Start the server
  schema   Print the configuration file's JSON schema
  version  Show version information

Flags:
  --config string    Path to config file (default: $XDG_CONFIG_HOME/hgfsd/config.yaml)
  --force            Force overwrite existing config file (init command only)

Environment Variables:
  All configuration options can be overridden using environment variables.
  Format: HGFSD_<SECTION>_<KEY> (use underscores for nested keys)

  Example:
    HGFSD_LOGGING_LEVEL=DEBUG hgfsd start
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit()
	case "start":
		runStart()
	case "schema":
		runSchema()
	case "help", "--help", "-h":
		fmt.Print(usage)
	case "version", "--version", "-v":
		fmt.Printf("hgfsd %s (commit: %s, built: %s)\n", version, commit, date)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runInit() {
	initFlags := flag.NewFlagSet("init", flag.ExitOnError)
	configFile := initFlags.String("config", "", "Path to config file")
	force := initFlags.Bool("force", false, "Force overwrite existing config file")
	if err := initFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	var (
		configPath string
		err        error
	)
	if *configFile != "" {
		err = config.InitConfigToPath(*configFile, *force)
		configPath = *configFile
	} else {
		configPath, err = config.InitConfig(*force)
	}
	if err != nil {
		log.Fatalf("failed to initialize config: %v", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("Edit it, then start the server with: hgfsd start")
}

// runSchema prints a JSON Schema for config.Config, for editor
// autocompletion and external validation of the YAML config file.
func runSchema() {
	schemaFlags := flag.NewFlagSet("schema", flag.ExitOnError)
	out := schemaFlags.String("output", "", "Output file (default: stdout)")
	if err := schemaFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&config.Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "hgfsd Configuration"
	schema.Description = "Configuration schema for the hgfsd server"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("failed to generate schema: %v", err)
	}

	if *out != "" {
		if err := os.WriteFile(*out, data, 0644); err != nil {
			log.Fatalf("failed to write schema file: %v", err)
		}
		fmt.Printf("JSON schema written to %s\n", *out)
		return
	}
	fmt.Println(string(data))
}

func runStart() {
	startFlags := flag.NewFlagSet("start", flag.ExitOnError)
	configFile := startFlags.String("config", "", "Path to config file")
	if err := startFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := config.MustLoad(*configFile)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "hgfsd",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Profiling.Enabled,
		ServiceName:    "hgfsd",
		ServiceVersion: version,
		Endpoint:       cfg.Profiling.Endpoint,
		ProfileTypes:   cfg.Profiling.ProfileTypes,
	})
	if err != nil {
		log.Fatalf("failed to initialize profiling: %v", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	logger.Info("hgfsd starting", "version", version, "commit", commit)
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("metrics disabled")
	}

	shares := make([]shareregistry.ShareInfo, 0, len(cfg.Shares))
	for _, s := range cfg.Shares {
		shares = append(shares, shareregistry.ShareInfo{
			Name:           s.Name,
			RootPath:       s.Root,
			ReadAllowed:    s.ReadAllowed,
			WriteAllowed:   s.WriteAllowed,
			CaseSensitive:  s.CaseSensitive,
			FollowSymlinks: s.FollowSymlinks,
		})
		logger.Info("share configured", "name", s.Name, "root", s.Root,
			"read", s.ReadAllowed, "write", s.WriteAllowed)
	}
	shareRegistry, err := shareregistry.New(shares)
	if err != nil {
		log.Fatalf("failed to build share registry: %v", err)
	}

	fs := hostfs.NewOSFS()
	resolver := nameresolve.New(shareRegistry, fs)
	dispatcher := dispatch.New(shareRegistry, resolver, fs, dispatch.Config{
		MaxFileNodesPerSession: cfg.Handles.MaxFileNodesPerSession,
		MaxCachedOpenNodes:     cfg.Handles.MaxCachedOpenNodes,
		MaxSearchesPerSession:  cfg.Handles.MaxSearchesPerSession,
		AlwaysUseHostTime:      cfg.Handles.AlwaysUseHostTime,
	})
	dispatcher.SetMetrics(metrics.NewDispatchMetrics())

	sessions := session.NewManager(cfg.Handles.MaxFileNodesPerSession, cfg.Handles.MaxCachedOpenNodes)

	t, closeTransport, err := newTransport(cfg.Transport)
	if err != nil {
		log.Fatalf("failed to start transport: %v", err)
	}
	defer closeTransport()

	srv := server.New(t, dispatcher, sessions, server.Config{})
	srv.SetMetrics(metrics.NewServerMetrics())

	if cfg.AdminAPI.Enabled {
		adminSrv := adminapi.NewServer(adminapi.APIConfig{
			Port:         cfg.AdminAPI.Port,
			ReadTimeout:  cfg.AdminAPI.ReadTimeout,
			WriteTimeout: cfg.AdminAPI.WriteTimeout,
			IdleTimeout:  cfg.AdminAPI.IdleTimeout,
		}, shareRegistry, fs, sessions, metrics.Handler())
		go func() {
			if err := adminSrv.Start(ctx); err != nil {
				logger.Error("admin API stopped", "error", err)
			}
		}()
		logger.Info("admin API enabled", "port", cfg.AdminAPI.Port)
	}

	serveErr := make(chan error, 1)
	go func() {
		if runner, ok := t.(interface{ Serve() error }); ok {
			serveErr <- runner.Serve()
		}
	}()

	runDone := make(chan error, 1)
	go func() { runDone <- srv.Run(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("hgfsd running", "transport", cfg.Transport.Kind, "address", cfg.Transport.Address)
	select {
	case <-sigCh:
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.Error("transport accept loop stopped", "error", err)
		}
	}

	cancel()
	<-runDone
	logger.Info("hgfsd stopped")
}

// newTransport builds the configured Transport and returns the function
// that tears it down. vsock is accepted by Config validation (spec §6) but
// has no implementation in this build; it fails fast with a clear error
// rather than silently falling back to another kind.
func newTransport(cfg config.TransportConfig) (transport.Transport, func(), error) {
	switch cfg.Kind {
	case "tcp":
		t, err := transport.NewTCPServer(cfg.Address)
		if err != nil {
			return nil, nil, err
		}
		return t, func() { _ = t.Close() }, nil
	case "unix":
		t, err := transport.NewUnixServer(cfg.Address)
		if err != nil {
			return nil, nil, err
		}
		return t, func() { _ = t.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("transport kind %q is not implemented in this build", cfg.Kind)
	}
}

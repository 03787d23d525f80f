// GenAI Studio is a prototype text-to-image web demo: a prompt form in
// front of a generation pipeline with validation, a content-addressed
// local image cache, and in-memory plus optional sqlite history.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"genai_studio/core"
	"genai_studio/core/validation"
	"genai_studio/db"
	"genai_studio/imagecache"
	"genai_studio/imagegen"
	"genai_studio/logging"
	"genai_studio/metrics"
	"genai_studio/webui"
)

func main() {
	// Service management commands (install/uninstall/...) are handled
	// before anything else; they print their own output.
	if HandleServiceCommand(os.Args) {
		return
	}

	// When launched by the Windows service manager, RunAsService blocks
	// until the service is stopped.
	ranAsService, err := RunAsService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "service error: %v\n", err)
		os.Exit(core.ExitCodeError)
	}
	if ranAsService {
		return
	}

	os.Exit(runApp(context.Background()))
}

// runApp wires the application together and serves until ctx is
// cancelled or a termination signal arrives. It returns the process
// exit code.
func runApp(ctx context.Context) int {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"

	cfg, err := core.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return core.ExitCodeError
	}

	logger, err := logging.NewLogger(isDevelopment, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Run startup validation before heavy operations.
	result := validation.NewSuite().WithShowProgress(true).Validate(cfg)
	if !result.Success {
		logger.Error("Startup validation failed",
			zap.Int("passed", result.Passed),
			zap.Int("failed", result.Failed),
			zap.Duration("duration", result.Duration),
		)
		for _, err := range result.Errors() {
			logger.Error("Validation check failed", zap.Error(err))
		}
		return core.ExitCodeError
	}
	logger.Info("Startup validation passed",
		zap.Int("checks_passed", result.Passed),
		zap.Duration("duration", result.Duration),
	)

	logger.Info("Configuration loaded",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("image_api", cfg.ImageAPIURL),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.String("cache_dir", cfg.CacheDir),
		zap.Bool("openai_provider", cfg.UseOpenAI()),
		zap.Bool("persistence", cfg.DBPath != ""),
		zap.Bool("dev_mode", isDevelopment),
	)

	// Style table (built-in unless overridden by file).
	styles, err := imagegen.LoadStyleTableOrDefault(cfg.StylesFile)
	if err != nil {
		logger.Error("Failed to load style table", zap.Error(err), zap.String("path", cfg.StylesFile))
		return core.ExitCodeError
	}

	// Image cache.
	store, err := imagecache.NewStore(cfg.CacheDir)
	if err != nil {
		logger.Error("Failed to initialize image cache", zap.Error(err))
		return core.ExitCodeError
	}

	// Generation provider.
	provider, err := buildProvider(cfg)
	if err != nil {
		logger.Error("Failed to initialize provider", zap.Error(err))
		return core.ExitCodeError
	}
	logger.Info("Provider ready", zap.String("provider", provider.Name()))

	// Metrics and optional durable history.
	recorder := metrics.NewRecorder()

	var sink imagegen.OutcomeSink
	var archive webui.HistoryArchive
	if cfg.DBPath != "" {
		repo, closeDB, err := openHistory(cfg)
		if err != nil {
			logger.Error("Failed to initialize history database", zap.Error(err))
			return core.ExitCodeError
		}
		defer closeDB()
		sink = repo
		archive = repo
		logger.Info("History persistence enabled", zap.String("db_path", cfg.DBPath))
	}

	generator, err := imagegen.NewGenerator(provider, store, recorder, sink, logger, imagegen.GeneratorConfig{
		Styles:         styles,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		logger.Error("Failed to initialize generator", zap.Error(err))
		return core.ExitCodeError
	}

	// Web server.
	api := webui.NewStudioAPI(generator, recorder, store, archive,
		webui.NewRotatingTips(webui.TipsConfig{}), logger, webui.StudioAPIConfig{})

	serverConfig := webui.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server, err := webui.NewServer(serverConfig, api, logger)
	if err != nil {
		logger.Error("Failed to initialize web server", zap.Error(err))
		return core.ExitCodeError
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	exitCode := core.ExitCodeSuccess
	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
			exitCode = core.ExitCodeError
		}
	case sig := <-sigChan:
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		if sig == syscall.SIGTERM {
			exitCode = core.ExitCodeSIGTERM
		} else {
			exitCode = core.ExitCodeSIGINT
		}
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Shutdown failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("Shutdown failed", zap.Error(err))
		}
	}

	logger.Info("Goodbye!", zap.String("exit", core.ExitCodeName(exitCode)))
	return exitCode
}

// buildProvider selects the generation backend from the configuration.
// An OpenAI key switches to DALL-E; otherwise the GET endpoint is used.
func buildProvider(cfg *core.Config) (imagegen.Provider, error) {
	if cfg.UseOpenAI() {
		return imagegen.NewOpenAIProvider(imagegen.OpenAIProviderConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIImageModel,
		}, imagegen.NewDownloader(nil))
	}
	return imagegen.NewPollinationsProvider(imagegen.PollinationsConfig{
		BaseURL: cfg.ImageAPIURL,
		Timeout: cfg.RequestTimeout,
	})
}

// openHistory applies migrations and opens the sqlite-backed repository.
// The returned func closes the connection.
func openHistory(cfg *core.Config) (*db.GenerationRepository, func(), error) {
	if err := db.MigrateUpFromPath(cfg.DBPath, cfg.MigrationsPath); err != nil {
		return nil, nil, fmt.Errorf("migrations failed: %w", err)
	}

	conn, err := db.OpenWithDefaults(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	repo, err := db.NewGenerationRepository(conn)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return repo, func() { conn.Close() }, nil
}

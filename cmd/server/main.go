package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/vinodismyname/merchstats/config"
	"github.com/vinodismyname/merchstats/internal/registry"
	"github.com/vinodismyname/merchstats/internal/runtime"
	"github.com/vinodismyname/merchstats/internal/security"
	"github.com/vinodismyname/merchstats/internal/store"
	"github.com/vinodismyname/merchstats/internal/telemetry"
	"github.com/vinodismyname/merchstats/pkg/version"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		useStdio        bool
		configDir       string
		shutdownTimeout time.Duration
	)

	flag.BoolVar(&useStdio, "stdio", false, "Run server over stdio transport")
	flag.StringVar(&configDir, "config-dir", "", "Directory containing merchstats.yaml (defaults to the working directory)")
	flag.DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "Graceful shutdown timeout")
	flag.Parse()

	logger := zlog.With().Str("service", "merchstats-server").Logger()

	settings, err := config.Load(configDir)
	if err != nil {
		logger.Error().Err(err).Msg("config: failed to load settings")
		fmt.Fprintln(os.Stderr, "invalid configuration; check merchstats.yaml and MERCHSTATS_* variables")
		os.Exit(1)
	}

	// Security: an empty allow-list is valid and disables the file-loading
	// tools; records can still arrive via ingest_records.
	secMgr, err := security.NewManager(settings.AllowedDirs, nil)
	if err != nil {
		logger.Error().Err(err).Msg("security: invalid allow-list configuration")
		fmt.Fprintln(os.Stderr, "invalid security configuration; check MERCHSTATS_ALLOWED_DIRS")
		os.Exit(1)
	}
	if secMgr.Enabled() {
		logger.Info().Strs("allowed_dirs", secMgr.AllowedDirectories()).Msg("security allow-list configured")
	} else {
		logger.Info().Msg("no allowed directories configured; file-loading tools disabled")
	}

	limits := runtime.FromSettings(settings)
	runtimeController := runtime.NewController(limits)
	runtimeMW := runtime.NewMiddleware(runtimeController)

	datasets := store.New(settings.DatasetIdleTTL, settings.DatasetCleanupPeriod, runtimeController, nil)
	datasets.Start()

	toolRegistry := registry.New()
	loaderFilter := registry.NewLoaderToolFilter(secMgr.Enabled())

	srv := server.NewMCPServer(
		"Merchant Metrics Analysis Server",
		version.Version(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(buildHooks(logger)),
		server.WithToolHandlerMiddleware(runtimeMW.ToolMiddleware),
		server.WithToolFilter(func(ctx context.Context, tools []mcp.Tool) []mcp.Tool { return loaderFilter.FilterTools(ctx, tools) }),
	)

	registry.RegisterDatasetTools(srv, toolRegistry, limits, datasets)
	registry.RegisterLoaderTools(srv, toolRegistry, limits, datasets, secMgr)
	registry.RegisterAnalyticsTools(srv, toolRegistry, limits, datasets)

	logger.Info().
		Str("version", version.Version()).
		Int("max_concurrent_requests", limits.MaxConcurrentRequests).
		Int("max_open_datasets", limits.MaxOpenDatasets).
		Int("max_rows_per_batch", limits.MaxRowsPerBatch).
		Bool("file_access", secMgr.Enabled()).
		Bool("stdio", useStdio).
		Msg("server bootstrap configured")

	if useStdio {
		serveErr := server.ServeStdio(srv)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := datasets.Close(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("dataset store shutdown incomplete")
		}

		if serveErr != nil {
			// Use stderr for transport errors so clients don't misinterpret output
			fmt.Fprintf(os.Stderr, "Server error: %v\n", serveErr)
			os.Exit(1)
		}
		return
	}

	// If no transport flags provided, print usage and exit non-zero
	fmt.Fprintln(os.Stderr, "no transport selected; use --stdio to run over stdio")
	os.Exit(2)
}

// buildHooks constructs mcp-go server hooks for basic telemetry.
func buildHooks(logger zerolog.Logger) *server.Hooks {
	hooks := &server.Hooks{}
	tele := telemetry.NewHooks(logger)

	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		tele.OnSessionStart(session.SessionID())
	})

	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		tele.OnSessionEnd(session.SessionID())
	})

	hooks.AddAfterListTools(func(ctx context.Context, id any, req *mcp.ListToolsRequest, res *mcp.ListToolsResult) {
		// Keep it light: tool count only
		logger.Info().Int("tools", len(res.Tools)).Msg("list_tools served")
	})

	hooks.AddAfterCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest, res *mcp.CallToolResult) {
		logger.Info().Str("tool", req.Params.Name).Msg("tool call served")
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		logger.Error().Str("method", string(method)).Err(err).Msg("request error")
	})

	return hooks
}

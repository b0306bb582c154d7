package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/lamim/storyforge/internal/api"
	"github.com/lamim/storyforge/internal/assets"
	"github.com/lamim/storyforge/internal/config"
	"github.com/lamim/storyforge/internal/metrics"
	"github.com/lamim/storyforge/internal/orchestrator"
	"github.com/lamim/storyforge/internal/store"
	"github.com/lamim/storyforge/internal/writer"
	"github.com/lamim/storyforge/pkg/models"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath  string
	envFile     string
	verbose     bool
	prompt      string
	storyID     string
	saveStory   bool
	jsonOutput  bool
	metricsAddr string
	listLimit   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "storyforge",
		Short: "StoryForge - judged children's story generator",
		Long: `StoryForge turns a short story request into an illustrated, narrated
children's story. Every draft is scored by a panel of LLM judges and revised
until the panel is satisfied or the round cap is reached.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to environment file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a story from a request",
		Long: `Run the complete pipeline:
1. Sanitize the request
2. Brainstorm ideas and refine them with the brainstorm judges
3. Plan and write the first draft
4. Judge and revise the story until it passes or runs out of rounds
5. Optional: narrate and illustrate the final story`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}
	generateCmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Story request")
	generateCmd.Flags().StringVar(&storyID, "story-id", "", "Story ID (default: random UUID)")
	generateCmd.Flags().BoolVar(&saveStory, "save", false, "Persist the finished story to the database")
	generateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full result as JSON")
	generateCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	_ = generateCmd.MarkFlagRequired("prompt")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(storiesCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// loadConfig reads the env file (if any) and then the config
func loadConfig() (*config.Config, *config.Secrets, error) {
	if envFile != "" {
		if err := loadEnvFile(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "Warning: failed to load env file: %v\n", err)
			}
		} else if verbose {
			fmt.Fprintf(os.Stderr, "Loaded env file: %s\n", envFile)
		}
	}

	cfg, secrets, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, secrets, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, secrets, err := loadConfig()
	if err != nil {
		return err
	}

	if storyID == "" {
		storyID = uuid.NewString()
	}

	ws, err := writer.NewWorkspace(cfg.Assets.OutputDir, storyID, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	logger, logFile, err := writer.SetupLogger(ws, logLevel())
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer func() {
		_ = logFile.Sync()
		_ = logFile.Close()
	}()

	logger.Info("StoryForge starting",
		"version", Version,
		"config", configPath,
		"story_id", storyID,
		"workspace", ws.Dir())

	if err := ws.BackupConfig(configPath); err != nil {
		logger.Warn("Config backup failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector(logger)
	if metricsAddr != "" {
		shutdown := serveMetrics(metricsAddr, logger)
		defer shutdown()
	}

	mainModel := cfg.Models["main"]
	judgeModel := cfg.JudgeModel()
	mainKey := secrets.GetAPIKey(mainModel.BaseURL)

	client, judgeClient := newClients(cfg, logger, collector)

	writerCaller := api.NewModelCaller(client, mainModel, mainKey)
	judgeCaller := api.NewModelCaller(judgeClient, judgeModel, secrets.GetAPIKey(judgeModel.BaseURL))

	sink, err := newSink(ctx, cfg, secrets)
	if err != nil {
		return fmt.Errorf("failed to create asset sink: %w", err)
	}

	trace, err := writer.NewRoundWriter(ws, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := trace.Close(); err != nil {
			logger.Error("Failed to close round trace", "error", err)
		}
	}()

	gen := orchestrator.New(cfg, writerCaller, judgeCaller, logger)
	gen.SetMetrics(collector)
	gen.SetRecorder(trace)
	gen.SetAssets(
		assets.NewNarrator(client, mainModel, mainKey, cfg.Assets, sink, logger),
		assets.NewIllustrator(writerCaller, client, mainModel, mainKey, cfg.Assets, cfg.PromptTemplates, sink, logger),
	)

	res, err := gen.Generate(ctx, storyID, prompt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("generation interrupted")
		}
		if jsonOutput {
			_ = printJSON(res)
		}
		return fmt.Errorf("generation failed: %w", err)
	}

	if saveStory {
		if err := saveResult(ctx, cfg, res, logger); err != nil {
			return err
		}
	}

	if jsonOutput {
		return printJSON(res)
	}

	fmt.Printf("\n%s\n\n%s\n", res.Title, res.Body)
	if res.AudioPath != "" {
		fmt.Printf("\nAudio: %s\n", res.AudioPath)
	}
	for i, p := range res.ImagePaths {
		fmt.Printf("Image %d: %s\n", i+1, p)
	}

	logger.Info("All done!", "rounds_recorded", trace.Count(), "duration", res.Duration)
	return nil
}

// newClients builds the writer client and the judge client. Each uses its
// own model's http_timeout_seconds; both share one limiter pool.
func newClients(cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) (*api.Client, *api.Client) {
	client := api.NewClient(logger, modelTimeout(cfg.Models["main"]))
	client.SetMetrics(collector)
	return client, client.WithTimeout(modelTimeout(cfg.JudgeModel()))
}

func modelTimeout(mc config.ModelConfig) time.Duration {
	return time.Duration(mc.HTTPTimeoutSeconds) * time.Second
}

// newSink stores assets in S3 when a bucket is configured, otherwise on disk
func newSink(ctx context.Context, cfg *config.Config, secrets *config.Secrets) (assets.Sink, error) {
	if cfg.Storage.S3Bucket != "" {
		return assets.NewS3Sink(ctx, cfg.Storage, secrets)
	}
	return assets.NewLocalSink(cfg.Assets.OutputDir), nil
}

func saveResult(ctx context.Context, cfg *config.Config, res *models.StoryResult, logger *slog.Logger) error {
	st, err := store.Open(ctx, cfg.Storage.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.Create(ctx, models.NewStoryRecord(res)); err != nil {
		return err
	}
	logger.Info("Saved story", "story_id", res.StoryID, "database", cfg.Storage.DatabasePath)
	return nil
}

// serveMetrics exposes /metrics until the returned func is called
func serveMetrics(addr string, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	logger.Info("Serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/tripmind/tripmind/pkg/catalog"
	"github.com/tripmind/tripmind/pkg/config"
	"github.com/tripmind/tripmind/pkg/consensus"
	"github.com/tripmind/tripmind/pkg/embedding"
	"github.com/tripmind/tripmind/pkg/recommender"
	"github.com/tripmind/tripmind/pkg/store"
	"github.com/tripmind/tripmind/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" description:"config file path"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`
	DSN    string `long:"dsn" env:"DSN" description:"database connection string, overrides config"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug)

	log.Printf("[INFO] starting tripmind version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	if err := run(ctx, opts); err != nil {
		log.Printf("[ERROR] %v", err)
		cancel()
		os.Exit(1)
	}
	cancel()

	log.Print("[INFO] shutdown complete")
}

func run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dataStore, err := store.New(store.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := dataStore.Close(); closeErr != nil {
			log.Printf("[WARN] failed to close store: %v", closeErr)
		}
	}()

	var embedder recommender.Embedder
	if cfg.Embedding.Enabled() {
		embedder = embedding.NewService(cfg.GetEmbeddingConfig())
		log.Printf("[INFO] embedding backend enabled, model %s", cfg.Embedding.Model)
	} else {
		log.Print("[INFO] no embedding backend configured, semantic filter uses stored vectors only")
	}

	engine := recommender.New(dataStore, embedder, recommender.Config{
		Weights: recommender.Weights{
			Collaborative: cfg.Scoring.WeightCollaborative,
			Content:       cfg.Scoring.WeightContent,
			Semantic:      cfg.Scoring.WeightSemantic,
		},
		MinSimilarity:            cfg.Scoring.MinSimilarity,
		SemanticTimeout:          cfg.Embedding.Timeout,
		HighConfidencePercentile: cfg.Scoring.HighConfidencePercentile,
	})

	gate := consensus.NewGate(dataStore, consensus.Thresholds{
		MinLikes: cfg.Consensus.MinLikes,
		MinRatio: cfg.Consensus.MinRatio,
	})
	group := consensus.NewEngine(dataStore, gate, cfg.Consensus.GroupLevel)

	var importer server.Importer
	if cfg.Catalog.Enabled {
		importer = catalog.NewImporter(dataStore, cfg.GetCatalogConfig())
		log.Printf("[INFO] catalog import fallback enabled, source %s", cfg.Catalog.SourceURL)
	}

	srv := server.New(cfg, engine, gate, group, dataStore, importer, revision, opts.Debug)
	return srv.Run(ctx)
}

// loadConfig reads the config file if given, otherwise uses defaults, and
// applies CLI overrides
func loadConfig(opts Opts) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if opts.DSN != "" {
		cfg.Database.DSN = opts.DSN
	}
	return cfg, nil
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}

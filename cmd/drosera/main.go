package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/CTAG07/Drosera/pkg/modelstore"
	"github.com/CTAG07/Drosera/pkg/seqtag"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

type cliOpts struct {
	configPath   string
	patternsPath string
	trainPath    string
	labelPath    string
	modelPath    string
	dbPath       string
	name         string
}

func main() {
	var opts cliOpts
	flag.StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	flag.StringVar(&opts.patternsPath, "patterns", "", "path to a feature template file")
	flag.StringVar(&opts.trainPath, "train", "", "path to labeled training data, blank-line separated sequences")
	flag.StringVar(&opts.labelPath, "label", "", "path to input data to annotate")
	flag.StringVar(&opts.modelPath, "model", "", "path of the model snapshot file")
	flag.StringVar(&opts.dbPath, "db", "", "data source of a model registry database, used instead of -model")
	flag.StringVar(&opts.name, "name", "default", "model name inside the registry")
	logLevel := flag.String("loglevel", "info", "log level: debug, info, warn, error")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("drosera %s (%s, built %s)\n", Version, Commit, BuildDate)
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("drosera failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts cliOpts, logger *slog.Logger) error {
	cfg := seqtag.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := seqtag.LoadConfig(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	switch {
	case opts.trainPath != "":
		return train(ctx, opts, cfg, logger)
	case opts.labelPath != "":
		return label(ctx, opts, cfg, logger)
	}
	return errors.New("nothing to do: supply -train or -label")
}

func train(ctx context.Context, opts cliOpts, cfg *seqtag.Config, logger *slog.Logger) error {
	var patterns string
	if opts.patternsPath != "" {
		data, err := os.ReadFile(opts.patternsPath)
		if err != nil {
			return fmt.Errorf("could not read patterns: %w", err)
		}
		patterns = string(data)
	}

	m, err := seqtag.New(cfg, patterns, seqtag.WithSinks(seqtag.SlogSinks(logger)))
	if err != nil {
		return err
	}
	m.SetLogger(logger)
	defer m.Close()

	data, err := os.ReadFile(opts.trainPath)
	if err != nil {
		return fmt.Errorf("could not read training data: %w", err)
	}
	for _, block := range splitSequences(string(data)) {
		if err := m.AddTrainSequence(block); err != nil {
			return err
		}
	}
	logger.Info("Corpus assembled",
		slog.Int("sequences", m.CorpusLen()),
		slog.Int("max_len", m.CorpusMaxLen()),
	)

	if err := m.Train(ctx); err != nil {
		return err
	}

	if opts.dbPath != "" {
		store, closeDB, err := openStore(opts.dbPath, logger)
		if err != nil {
			return err
		}
		defer closeDB()
		return store.Save(ctx, opts.name, m)
	}
	if opts.modelPath == "" {
		return errors.New("no destination: supply -model or -db")
	}
	return m.SaveFile(opts.modelPath)
}

func label(ctx context.Context, opts cliOpts, cfg *seqtag.Config, logger *slog.Logger) error {
	var m *seqtag.Model
	var err error
	switch {
	case opts.dbPath != "":
		store, closeDB, err := openStore(opts.dbPath, logger)
		if err != nil {
			return err
		}
		defer closeDB()
		m, err = store.Load(ctx, opts.name, cfg, seqtag.WithSinks(seqtag.SlogSinks(logger)))
		if err != nil {
			return err
		}
	case opts.modelPath != "":
		m, err = seqtag.Load(opts.modelPath, cfg, seqtag.WithSinks(seqtag.SlogSinks(logger)))
		if err != nil {
			return err
		}
	default:
		return errors.New("no model source: supply -model or -db")
	}
	m.SetLogger(logger)
	defer m.Close()

	data, err := os.ReadFile(opts.labelPath)
	if err != nil {
		return fmt.Errorf("could not read input data: %w", err)
	}
	for _, block := range splitSequences(string(data)) {
		out, err := m.Label(block)
		if err != nil {
			return err
		}
		fmt.Print(out)
		fmt.Println()
	}
	return nil
}

// openStore opens the registry database, making sure the schema exists.
func openStore(dataSource string, logger *slog.Logger) (*modelstore.Store, func(), error) {
	db, err := initDB(dataSource)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open registry database: %w", err)
	}
	if err := modelstore.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	store, err := modelstore.New(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	store.SetLogger(logger)
	return store, func() {
		store.Close()
		_ = db.Close()
	}, nil
}

// splitSequences splits raw text into blank-line separated blocks.
func splitSequences(text string) []string {
	var seqs []string
	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) != "" {
			seqs = append(seqs, block)
		}
	}
	return seqs
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

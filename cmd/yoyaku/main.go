// Package main is the Yoyaku CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/hyperjump/yoyaku/internal/cli"
	"github.com/hyperjump/yoyaku/internal/config"
	"github.com/hyperjump/yoyaku/internal/engine"
	"github.com/hyperjump/yoyaku/internal/extract"
	"github.com/hyperjump/yoyaku/internal/metrics"
	"github.com/hyperjump/yoyaku/internal/models"
	"github.com/hyperjump/yoyaku/internal/server"
	"github.com/hyperjump/yoyaku/internal/storage"
	"github.com/hyperjump/yoyaku/internal/watcher"
	"github.com/hyperjump/yoyaku/pkg/utils"
)

var version = "dev"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// A missing default config yields the built-in defaults.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == config.DefaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches a command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}
	command, rest := args[0], args[1:]
	switch command {
	case "summarize":
		return runSummarize(rest, stdin, stdout, stderr)
	case "server":
		return runServer(rest, stderr)
	case "init":
		return runInit(rest, stdout, stderr)
	case "list":
		return runList(rest, stdout, stderr)
	case "show":
		return runShow(rest, stdout, stderr)
	case "delete":
		return runDelete(rest, stdout, stderr)
	case "status":
		return runStatus(rest, stdout, stderr)
	case "strategies":
		return runStrategies(rest, stdout, stderr)
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "yoyaku version %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: yoyaku <command> [flags]

Commands:
  summarize [flags] <file>...   Summarize files (use - or no file for stdin)
  server [flags]                Run the HTTP API and the inbox watcher
  init [flags]                  Write a config file with the default settings
  list [flags]                  List stored summaries
  show [flags] <id>             Show a stored summary
  delete [flags] <id>           Delete a stored summary
  status [flags]                Show storage totals
  strategies [flags]            List ranking strategies
  version                       Print the version

Most commands accept --config, and --server to talk to a running server
instead of opening the database directly.
`)
}

// argsReorder moves flags (and their values) to the front so that
// fs.Parse sees them, keeping positional arguments in their original order.
// Go's flag package stops at the first non-flag argument, so
// "yoyaku summarize a.txt --limit 3" would otherwise leave --limit unparsed.
// fs tells which flags take a value; "--" ends flag parsing.
func argsReorder(fs *flag.FlagSet, args []string) []string {
	flags := make([]string, 0, len(args))
	var positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			return append(append(flags, "--"), positional...)
		}
		if len(a) < 2 || a[0] != '-' {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		if strings.Contains(a, "=") {
			continue
		}
		if f := fs.Lookup(strings.TrimLeft(a, "-")); f != nil && !isBoolFlag(f) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return append(flags, positional...)
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// commonFlags registers --config, --server and --output on fs.
type commonFlags struct {
	config string
	server string
	output string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.config, "config", config.DefaultConfigPath, "config file path")
	fs.StringVar(&c.server, "server", "", "server URL (empty = open the database directly)")
	fs.StringVar(&c.output, "output", "text", "output format: text, compact or json")
	return c
}

// open returns the backend selected by the flags.
func (c *commonFlags) open() (backend, error) {
	if c.server != "" {
		return newHTTPBackend(c.server), nil
	}
	cfg, _, err := loadConfig(c.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	components, err := initializeComponents(cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	return &localBackend{components: components}, nil
}

func runSummarize(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	strategy := fs.String("strategy", "", "ranking strategy: lede, textrank, lexrank, centroid or dems (default from config)")
	limit := fs.Int("limit", 0, "maximum number of sentences (0 = config default)")
	maxWords := fs.Int("max-words", 0, "word budget for the summary (0 = no budget)")
	order := fs.String("order", models.OrderScore, "sentence order: score or document")
	save := fs.Bool("save", false, "store the summary")
	title := fs.String("title", "", "title for a stored summary (default: file names)")
	if err := fs.Parse(argsReorder(fs, args)); err != nil {
		return 2
	}
	format, err := cli.ParseOutputFormat(common.output)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	documents, names, err := readDocuments(fs.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to read input: %v\n", err)
		return 1
	}
	req := &models.SummarizeRequest{
		Documents: documents,
		Strategy:  *strategy,
		Limit:     *limit,
		MaxWords:  *maxWords,
		Order:     *order,
		Persist:   *save,
		Title:     *title,
	}
	if req.Persist && req.Title == "" {
		req.Title = strings.Join(names, ", ")
	}

	b, err := common.open()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer b.Close()
	resp, err := b.Summarize(context.Background(), req)
	if err != nil {
		fmt.Fprintf(stderr, "Summarize failed: %v\n", err)
		return 1
	}
	if err := cli.WriteSummary(stdout, resp, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

// readDocuments extracts the text of each path; "-" or no paths reads stdin.
func readDocuments(paths []string, stdin io.Reader) (docs, names []string, err error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	ext := extract.NewExtractor()
	for _, p := range paths {
		if p == "-" {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, nil, err
			}
			text, err := ext.ExtractBytes(data, ".txt")
			if err != nil {
				return nil, nil, err
			}
			docs = append(docs, text)
			names = append(names, "stdin")
			continue
		}
		text, err := ext.Extract(p)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", p, err)
		}
		docs = append(docs, text)
		names = append(names, filepath.Base(p))
	}
	return docs, names, nil
}

func runList(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	offset := fs.Int("offset", 0, "number of summaries to skip")
	limit := fs.Int("limit", 20, "number of summaries to show")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format, err := cli.ParseOutputFormat(common.output)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	b, err := common.open()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer b.Close()
	list, err := b.List(context.Background(), *offset, *limit)
	if err != nil {
		fmt.Fprintf(stderr, "List failed: %v\n", err)
		return 1
	}
	if err := cli.WriteSummaryList(stdout, list, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

func runShow(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	if err := fs.Parse(argsReorder(fs, args)); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: yoyaku show [flags] <id>")
		return 1
	}
	format, err := cli.ParseOutputFormat(common.output)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	b, err := common.open()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer b.Close()
	rec, err := b.Get(context.Background(), fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Show failed: %v\n", err)
		return 1
	}
	if err := cli.WriteSummaryRecord(stdout, rec, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

func runDelete(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	if err := fs.Parse(argsReorder(fs, args)); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: yoyaku delete [flags] <id>")
		return 1
	}
	b, err := common.open()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer b.Close()
	id := fs.Arg(0)
	if err := b.Delete(context.Background(), id); err != nil {
		fmt.Fprintf(stderr, "Deletion failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Summary deleted: %s\n", id)
	return 0
}

func runStatus(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format, err := cli.ParseOutputFormat(common.output)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	b, err := common.open()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer b.Close()
	status, err := b.Status(context.Background())
	if err != nil {
		fmt.Fprintf(stderr, "Status failed: %v\n", err)
		return 1
	}
	if err := cli.WriteStatus(stdout, status, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

func runStrategies(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("strategies", flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.String("output", "text", "output format: text, compact or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := cli.WriteStrategies(stdout, engine.Strategies(), format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

func runInit(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultConfigPath, "config file path to create")
	force := fs.Bool("force", false, "overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if _, err := os.Stat(*configPath); err == nil && !*force {
		fmt.Fprintf(stderr, "Config already exists: %s (use --force to overwrite)\n", *configPath)
		return 1
	}
	if err := os.MkdirAll(filepath.Dir(*configPath), 0755); err != nil {
		fmt.Fprintf(stderr, "Failed to create config directory: %v\n", err)
		return 1
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	if err := config.Save(*configPath, cfg); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "Config written: %s\n", *configPath)
	return 0
}

func runServer(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (requests, file events, rankings)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics()
	if err := m.Register(reg); err != nil {
		logger.Error("Failed to register metrics", zap.Error(err))
		return 1
	}

	components, err := initializeComponents(cfg, logger, m)
	if err != nil {
		logger.Error("Failed to initialize components", zap.Error(err))
		return 1
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var watchSvc server.WatchService
	if len(cfg.Watch.Directories) > 0 {
		inbox := watcher.NewInbox(ctx, components.Engine, m, logger)
		w := inbox.Watch(cfg.Watch.Directories, cfg.Watch.Extensions, cfg.Watch.RecursiveOrDefault(),
			watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond))
		if err := w.Start(ctx); err != nil {
			logger.Error("Failed to start watcher", zap.Error(err))
			return 1
		}
		defer w.Stop()
		go w.SyncExistingFiles()
		watchSvc = w
	}

	srv := server.NewServer(components.Engine, components.Storage, &cfg.Server, logger, watchSvc, reg)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		logger.Error("Server failed", zap.Error(err))
		return 1
	}

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	return 0
}

// Components holds initialized services.
type Components struct {
	Storage storage.Storage
	Engine  *engine.Engine
	Logger  *zap.Logger
}

// Close releases the storage and flushes the logger.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	opts := []engine.Option{engine.WithLogger(logger)}
	if m != nil {
		opts = append(opts, engine.WithMetrics(m))
	}
	return &Components{
		Storage: store,
		Engine:  engine.NewEngine(store, cfg, opts...),
		Logger:  logger,
	}, nil
}

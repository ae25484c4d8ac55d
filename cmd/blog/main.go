package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/forner/blog"
	"github.com/forner/blog/importer"
	"github.com/forner/blog/logger"
	"github.com/forner/blog/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// a missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(optionalArg(2))
	case "import":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: blog import <dir> [config]")
			os.Exit(1)
		}
		err = runImport(os.Args[2], optionalArg(3))
	case "version":
		fmt.Printf("blog %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func optionalArg(i int) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return os.Getenv("BLOG_CONFIG")
}

func setup(configPath string) (blog.SiteConfig, *zap.Logger, error) {
	cfg, err := blog.LoadConfig(configPath)
	if err != nil {
		return blog.SiteConfig{}, nil, err
	}
	return cfg, logger.Init(cfg.Log.Mode, cfg.Log.Options()), nil
}

func runServe(configPath string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	app := blog.New(cfg, views.Default(), blog.WithLogger(log))
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func runImport(dir, configPath string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := blog.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := importer.New(store, log).ImportDir(context.Background(), dir)
	fmt.Printf("created %d, updated %d, failed %d\n", res.Created, res.Updated, res.Failed)
	if err != nil {
		return fmt.Errorf("import %s: %w", dir, err)
	}
	return nil
}

func printUsage() {
	fmt.Println(`blog - a date-addressed blog engine built with Go, Echo, and templ

Usage:
  blog <command> [arguments]

Commands:
  serve [config]         Start the web server
  import <dir> [config]  Import markdown files with front matter
  version                Print the blog version
  help                   Show this help message

The config file may be YAML, TOML or JSON. BLOG_* environment variables
(and a .env file in the working directory) override it, e.g.
BLOG_ADDR=:8080 or BLOG_LOG_MODE=debug.

Examples:
  blog import ./posts blog.yaml
  blog serve blog.yaml`)
}

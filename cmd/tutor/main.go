package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/MrSnakeDoc/tutor/internal/app"
	"github.com/MrSnakeDoc/tutor/internal/config"
	"github.com/MrSnakeDoc/tutor/internal/logger"
	"github.com/MrSnakeDoc/tutor/internal/version"
)

// CLI flags override the matching TUTOR_* environment variables.
type CLI struct {
	Content string `help:"Directory holding the tutorial Markdown files" type:"path" placeholder:"DIR"`
	Index   string `help:"Markdown file rendered as the entry page" type:"path" placeholder:"FILE"`
	Static  string `help:"Static assets directory" type:"path" placeholder:"DIR"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Serve the tutorial site over HTTP"`
	Build   BuildCmd   `cmd:"" help:"Write the tutorial site as static files"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

type ServeCmd struct {
	Listen string `help:"Listen address, e.g. :8080"`
}

func (c *ServeCmd) Run(root *CLI) error {
	cfg, log, err := root.setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if c.Listen != "" {
		cfg.ListenPort = c.Listen
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	return a.Serve()
}

type BuildCmd struct {
	Out   string `short:"o" help:"Output directory" type:"path"`
	Watch bool   `short:"w" help:"Rebuild when sources change"`
}

func (c *BuildCmd) Run(root *CLI) error {
	cfg, log, err := root.setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if c.Out != "" {
		cfg.OutputDir = c.Out
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Build(ctx, c.Watch)
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(version.String())
	return nil
}

// setup loads the environment configuration, applies the global flags and
// creates the logger.
func (c *CLI) setup() (*config.Config, logger.Logger, error) {
	cfg := config.Load()
	if c.Content != "" {
		cfg.ContentDir = c.Content
	}
	if c.Index != "" {
		cfg.IndexFile = c.Index
	}
	if c.Static != "" {
		cfg.StaticDir = c.Static
	}
	if c.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.LogLevel, cfg.PrettyLog), nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("tutor"),
		kong.Description("Render a Markdown tutorial collection as a website."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli); err != nil {
		log.Fatalf("❌ tutor failed: %v", err)
	}
}
